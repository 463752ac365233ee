// Package config loads runtime settings for the quoting engine from the
// environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"

	"eventquotes/services"
)

// Config holds every tunable of the quoting engine.
type Config struct {
	TaxRatePct              float64 `env:"QUOTE_TAX_RATE_PCT"              envDefault:"16"`
	ValidityDays            int     `env:"QUOTE_VALIDITY_DAYS"             envDefault:"30"`
	CodePrefix              string  `env:"QUOTE_CODE_PREFIX"               envDefault:"COT"`
	CodeMaxAttempts         int     `env:"QUOTE_CODE_MAX_ATTEMPTS"         envDefault:"5"`
	BlockExpiredTransitions bool    `env:"QUOTE_BLOCK_EXPIRED_TRANSITIONS" envDefault:"false"`
	CompanyName             string  `env:"QUOTE_COMPANY_NAME"              envDefault:"Eventos"`
	CompanyEmail            string  `env:"QUOTE_COMPANY_EMAIL"`
	StaticDir               string  `env:"QUOTE_STATIC_DIR"                envDefault:"./static"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		TaxRatePct:      16,
		ValidityDays:    services.DefaultValidityDays,
		CodePrefix:      services.DefaultQuoteCodePrefix,
		CodeMaxAttempts: services.DefaultCodeAttempts,
		CompanyName:     "Eventos",
		StaticDir:       "./static",
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TaxRatePct, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&c.ValidityDays, validation.Required, validation.Min(1)),
		validation.Field(&c.CodePrefix, validation.Required, validation.Length(1, 8), is.Alphanumeric),
		validation.Field(&c.CodeMaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.CompanyEmail, is.EmailFormat),
	)
}

// TaxRate returns the tax rate as a decimal percentage.
func (c Config) TaxRate() decimal.Decimal {
	return decimal.NewFromFloat(c.TaxRatePct)
}

// CodeOptions returns quote number settings for services.CreateQuoteWithCode.
func (c Config) CodeOptions() services.CodeOptions {
	return services.CodeOptions{
		Prefix:      c.CodePrefix,
		MaxAttempts: c.CodeMaxAttempts,
	}
}

// Issuer returns the company printed on exported quotes.
func (c Config) Issuer() services.Issuer {
	return services.Issuer{Name: c.CompanyName, Email: c.CompanyEmail}
}
