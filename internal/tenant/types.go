// Package tenant resolves inbound routing keys to static capability configuration.
package tenant

// Field identifies one collectable lead field.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldNeed  Field = "need"
)

// String returns the field as a plain string.
func (f Field) String() string {
	return string(f)
}

// CollectionOrder is the fixed order fields are processed in during a turn,
// independent of the order a tenant declares them.
var CollectionOrder = []Field{FieldName, FieldEmail, FieldNeed}

// HandoffConfig routes conversants to a human when a keyword matches.
type HandoffConfig struct {
	Enabled  bool     `json:"enabled"`
	Keywords []string `json:"keywords,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// FAQItem pairs a match phrase with its canned answer.
type FAQItem struct {
	Q string `json:"q" validate:"required"`
	A string `json:"a" validate:"required"`
}

// FAQConfig answers messages that contain a configured phrase.
type FAQConfig struct {
	Enabled bool      `json:"enabled"`
	Items   []FAQItem `json:"items,omitempty" validate:"dive"`
}

// LeadCaptureConfig drives the multi-turn field-collection dialogue.
type LeadCaptureConfig struct {
	Enabled        bool             `json:"enabled"`
	Fields         []Field          `json:"fields,omitempty" validate:"dive,oneof=name email need"`
	ConfirmMessage string           `json:"confirmMessage,omitempty"`
	Prompts        map[Field]string `json:"prompts,omitempty" validate:"dive,keys,oneof=name email need,endkeys,required"`
}

// Prompt returns the configured prompt for a field, falling back to the
// built-in default.
func (c LeadCaptureConfig) Prompt(field Field) string {
	if p, ok := c.Prompts[field]; ok && p != "" {
		return p
	}
	return defaultPrompts[field]
}

// Capabilities is the set of optional behaviors a tenant may enable.
type Capabilities struct {
	Handoff     HandoffConfig     `json:"handoff"`
	FAQ         FAQConfig         `json:"faq"`
	LeadCapture LeadCaptureConfig `json:"leadCapture"`
}

// Config is one tenant's immutable configuration.
type Config struct {
	ID           string       `json:"id" validate:"required"`
	SystemPrompt string       `json:"systemPrompt,omitempty"`
	Model        string       `json:"model,omitempty"`
	Temperature  float64      `json:"temperature,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

const (
	defaultTenantID     = "default"
	defaultSystemPrompt = "Eres un asistente útil. Responde breve y en español."
	defaultModel        = "gpt-4o-mini"
	defaultTemperature  = 0.4

	defaultHandoffMessage = "Te paso con una persona."
	defaultConfirmMessage = "¡Gracias! Lo tengo."
)

var defaultPrompts = map[Field]string{
	FieldName:  "¿Cómo te llamas?",
	FieldEmail: "¿Cuál es tu email?",
	FieldNeed:  "Cuéntame brevemente qué necesitas.",
}

// DefaultConfig is returned for routing keys absent from the registry:
// a generic assistant with no capabilities enabled.
func DefaultConfig() Config {
	return Config{
		ID:           defaultTenantID,
		SystemPrompt: defaultSystemPrompt,
		Model:        defaultModel,
		Temperature:  defaultTemperature,
	}
}
