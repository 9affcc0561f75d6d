package scheduling

import (
	"context"
	"fmt"
	"time"

	"vltava/config"
	"vltava/models"
)

// Provider is the capability contract every scheduling backend implements.
// Implementations translate their own wire formats into the normalized
// models; callers never see provider-specific fields.
type Provider interface {
	Name() string
	CheckAvailability(ctx context.Context, tourID, date string) (models.AvailabilityResult, error)
	CreateBooking(ctx context.Context, idempotencyKey string, req models.BookingRequest) (models.BookingResult, error)
}

// Config selects and parameterizes the active provider variant.
type Config struct {
	Variant string // "slotwise" or "tourdesk"

	SlotwiseBaseURL      string
	SlotwiseAPIKey       string
	SlotwiseMaxGroupSize int

	TourdeskBaseURL string
	TourdeskAPIKey  string

	Timeout time.Duration
}

// ConfigFromApp builds the provider config from the loaded app configuration.
func ConfigFromApp() Config {
	return Config{
		Variant:              config.AppConfig.ProviderVariant,
		SlotwiseBaseURL:      config.AppConfig.SlotwiseBaseURL,
		SlotwiseAPIKey:       config.AppConfig.SlotwiseAPIKey,
		SlotwiseMaxGroupSize: config.AppConfig.SlotwiseMaxGroupSize,
		TourdeskBaseURL:      config.AppConfig.TourdeskBaseURL,
		TourdeskAPIKey:       config.AppConfig.TourdeskAPIKey,
		Timeout:              time.Duration(config.AppConfig.ProviderTimeoutSec) * time.Second,
	}
}

// NewProvider returns the variant named by the configuration. Selection is a
// single dispatch here; the rest of the service only sees the interface.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	switch cfg.Variant {
	case "slotwise":
		return newSlotwiseProvider(cfg), nil
	case "tourdesk":
		return newTourdeskProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown scheduling provider variant %q", cfg.Variant)
	}
}
