package tenant_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadbothq/leadbot/internal/tenant"
)

func TestResolve_UnknownKeyReturnsDefault(t *testing.T) {
	reg, err := tenant.NewRegistry(nil)
	require.NoError(t, err)

	cfg := reg.Resolve("does-not-exist")
	assert.Equal(t, "default", cfg.ID)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.InDelta(t, 0.4, cfg.Temperature, 1e-9)
	assert.False(t, cfg.Capabilities.Handoff.Enabled)
	assert.False(t, cfg.Capabilities.FAQ.Enabled)
	assert.False(t, cfg.Capabilities.LeadCapture.Enabled)
}

func TestResolve_KnownKey(t *testing.T) {
	reg, err := tenant.NewRegistry(map[string]tenant.Config{
		"100200300": {
			ID:           "acme",
			SystemPrompt: "Eres el asistente de Acme.",
			Capabilities: tenant.Capabilities{
				Handoff: tenant.HandoffConfig{Enabled: true, Keywords: []string{"humano"}},
			},
		},
	})
	require.NoError(t, err)

	cfg := reg.Resolve("100200300")
	assert.Equal(t, "acme", cfg.ID)
	assert.Equal(t, "gpt-4o-mini", cfg.Model, "missing model falls back to default")
	assert.Equal(t, "Te paso con una persona.", cfg.Capabilities.Handoff.Message,
		"enabled handoff without message gets the default")
}

func TestNewRegistry_RejectsMalformed(t *testing.T) {
	cases := []struct {
		name    string
		tenants map[string]tenant.Config
	}{
		{
			name: "missing id",
			tenants: map[string]tenant.Config{
				"1": {},
			},
		},
		{
			name: "handoff without keywords",
			tenants: map[string]tenant.Config{
				"1": {ID: "t", Capabilities: tenant.Capabilities{
					Handoff: tenant.HandoffConfig{Enabled: true},
				}},
			},
		},
		{
			name: "faq without items",
			tenants: map[string]tenant.Config{
				"1": {ID: "t", Capabilities: tenant.Capabilities{
					FAQ: tenant.FAQConfig{Enabled: true},
				}},
			},
		},
		{
			name: "unknown lead field",
			tenants: map[string]tenant.Config{
				"1": {ID: "t", Capabilities: tenant.Capabilities{
					LeadCapture: tenant.LeadCaptureConfig{Enabled: true, Fields: []tenant.Field{"phone"}},
				}},
			},
		},
		{
			name: "duplicate lead field",
			tenants: map[string]tenant.Config{
				"1": {ID: "t", Capabilities: tenant.Capabilities{
					LeadCapture: tenant.LeadCaptureConfig{Enabled: true, Fields: []tenant.Field{"name", "name"}},
				}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tenant.NewRegistry(tc.tenants)
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.json")
	doc := `{
		"111222333": {
			"id": "acme",
			"systemPrompt": "Eres el asistente de Acme.",
			"model": "gpt-4o-mini",
			"temperature": 0.2,
			"capabilities": {
				"handoff": {"enabled": true, "keywords": ["humano", "persona"], "message": "Te conecto con el equipo."},
				"faq": {"enabled": true, "items": [{"q": "horario", "a": "Abrimos de 9 a 18."}]},
				"leadCapture": {"enabled": true, "fields": ["name", "email"], "confirmMessage": "¡Listo!"}
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	reg, err := tenant.LoadRegistry(path)
	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())

	cfg := reg.Resolve("111222333")
	assert.Equal(t, "acme", cfg.ID)
	assert.Equal(t, []tenant.Field{"name", "email"}, cfg.Capabilities.LeadCapture.Fields)
	assert.Equal(t, "¡Listo!", cfg.Capabilities.LeadCapture.ConfirmMessage)
}

func TestLoadRegistry_RejectsUnknownCapabilityKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.json")
	doc := `{
		"1": {
			"id": "t",
			"capabilities": {"voicemail": {"enabled": true}}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	_, err := tenant.LoadRegistry(path)
	assert.Error(t, err)
}

func TestPrompt_Defaults(t *testing.T) {
	cfg := tenant.LeadCaptureConfig{}
	assert.Equal(t, "¿Cómo te llamas?", cfg.Prompt(tenant.FieldName))
	assert.Equal(t, "¿Cuál es tu email?", cfg.Prompt(tenant.FieldEmail))
	assert.Equal(t, "Cuéntame brevemente qué necesitas.", cfg.Prompt(tenant.FieldNeed))

	custom := tenant.LeadCaptureConfig{Prompts: map[tenant.Field]string{tenant.FieldName: "¿Tu nombre?"}}
	assert.Equal(t, "¿Tu nombre?", custom.Prompt(tenant.FieldName))
	assert.Equal(t, "¿Cuál es tu email?", custom.Prompt(tenant.FieldEmail))
}
