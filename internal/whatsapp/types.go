// Package whatsapp handles the WhatsApp Cloud API surface: webhook payload
// decoding, the verification handshake, and outbound text delivery.
package whatsapp

import "time"

// Payload is the Meta webhook envelope.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one account-level webhook entry.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change is one change notification inside an entry.
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value carries the messages and the receiving phone-number metadata.
type Value struct {
	Metadata Metadata  `json:"metadata"`
	Messages []Message `json:"messages"`
}

// Metadata identifies the tenant-routing phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Message is one inbound message event.
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *Text  `json:"text,omitempty"`
}

// Text is the text body of a message.
type Text struct {
	Body string `json:"body"`
}

// MessageTypeText is the only message type the pipeline processes.
const MessageTypeText = "text"

// Inbound is one normalized message handed to the processor.
type Inbound struct {
	RoutingKey   string
	ConversantID string
	MessageID    string
	Type         string
	Text         string
	ReceivedAt   time.Time
}
