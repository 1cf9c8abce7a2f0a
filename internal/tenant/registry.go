package tenant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Registry maps routing keys (platform-assigned channel ids) to tenant
// configuration. It is immutable after load.
type Registry struct {
	tenants map[string]Config
}

// NewRegistry validates and normalizes the given tenant map.
func NewRegistry(tenants map[string]Config) (*Registry, error) {
	validate := validator.New()
	normalized := make(map[string]Config, len(tenants))
	for key, cfg := range tenants {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("tenant %q: empty routing key", cfg.ID)
		}
		cfg = applyDefaults(cfg)
		if err := validate.Struct(cfg); err != nil {
			return nil, fmt.Errorf("tenant %q: %w", cfg.ID, err)
		}
		if err := checkCapabilities(cfg.Capabilities); err != nil {
			return nil, fmt.Errorf("tenant %q: %w", cfg.ID, err)
		}
		normalized[key] = cfg
	}
	return &Registry{tenants: normalized}, nil
}

// LoadRegistry reads a JSON tenant file keyed by routing key. Unknown keys
// anywhere in the document are rejected so malformed capability shapes fail
// at startup rather than at first use.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tenants file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var tenants map[string]Config
	if err := dec.Decode(&tenants); err != nil {
		return nil, fmt.Errorf("parse tenants file %s: %w", path, err)
	}

	reg, err := NewRegistry(tenants)
	if err != nil {
		return nil, fmt.Errorf("tenants file %s: %w", path, err)
	}
	return reg, nil
}

// Resolve returns the configuration for the given routing key, or the
// documented default when the key is unknown.
func (r *Registry) Resolve(routingKey string) Config {
	if cfg, ok := r.tenants[routingKey]; ok {
		return cfg
	}
	return DefaultConfig()
}

// Len reports how many tenants are registered.
func (r *Registry) Len() int {
	return len(r.tenants)
}

func applyDefaults(cfg Config) Config {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.Capabilities.Handoff.Enabled && cfg.Capabilities.Handoff.Message == "" {
		cfg.Capabilities.Handoff.Message = defaultHandoffMessage
	}
	if cfg.Capabilities.LeadCapture.Enabled && cfg.Capabilities.LeadCapture.ConfirmMessage == "" {
		cfg.Capabilities.LeadCapture.ConfirmMessage = defaultConfirmMessage
	}
	return cfg
}

func checkCapabilities(caps Capabilities) error {
	if caps.Handoff.Enabled && len(caps.Handoff.Keywords) == 0 {
		return fmt.Errorf("handoff enabled without keywords")
	}
	for _, kw := range caps.Handoff.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("handoff keyword is empty")
		}
	}
	if caps.FAQ.Enabled && len(caps.FAQ.Items) == 0 {
		return fmt.Errorf("faq enabled without items")
	}
	seen := make(map[Field]struct{}, len(caps.LeadCapture.Fields))
	for _, f := range caps.LeadCapture.Fields {
		if _, dup := seen[f]; dup {
			return fmt.Errorf("leadCapture field declared twice: %s", f)
		}
		seen[f] = struct{}{}
	}
	return nil
}
