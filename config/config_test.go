package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "16", cfg.TaxRate().String())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("QUOTE_TAX_RATE_PCT", "8.5")
	t.Setenv("QUOTE_VALIDITY_DAYS", "15")
	t.Setenv("QUOTE_CODE_PREFIX", "EVT")
	t.Setenv("QUOTE_CODE_MAX_ATTEMPTS", "3")
	t.Setenv("QUOTE_BLOCK_EXPIRED_TRANSITIONS", "true")
	t.Setenv("QUOTE_COMPANY_NAME", "Fiestas SA")
	t.Setenv("QUOTE_COMPANY_EMAIL", "hola@fiestas.mx")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8.5", cfg.TaxRate().String())
	assert.Equal(t, 15, cfg.ValidityDays)
	assert.True(t, cfg.BlockExpiredTransitions)

	opts := cfg.CodeOptions()
	assert.Equal(t, "EVT", opts.Prefix)
	assert.Equal(t, 3, opts.MaxAttempts)

	issuer := cfg.Issuer()
	assert.Equal(t, "Fiestas SA", issuer.Name)
	assert.Equal(t, "hola@fiestas.mx", issuer.Email)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative tax", "QUOTE_TAX_RATE_PCT", "-1"},
		{"tax not a number", "QUOTE_TAX_RATE_PCT", "dieciséis"},
		{"zero validity", "QUOTE_VALIDITY_DAYS", "0"},
		{"negative validity", "QUOTE_VALIDITY_DAYS", "-30"},
		{"prefix with dash", "QUOTE_CODE_PREFIX", "CO-T"},
		{"prefix with accent", "QUOTE_CODE_PREFIX", "COTÍ"},
		{"zero attempts", "QUOTE_CODE_MAX_ATTEMPTS", "0"},
		{"bad email", "QUOTE_COMPANY_EMAIL", "not-an-email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
