package provider

import (
	"fmt"

	"github.com/wekeepgrowing/uxpilot-billing/internal/config"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	"github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/provider/dodo"
	"go.uber.org/zap"
)

// Factory creates payment providers based on the provider type
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// GetProvider returns a payment provider based on the provider type
func (f *Factory) GetProvider(providerType provider.ProviderType) (provider.PaymentProvider, error) {
	switch providerType {
	case provider.ProviderTypeDodo:
		return f.createDodoProvider()
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// GetProviderFromString returns a payment provider from a string type
func (f *Factory) GetProviderFromString(providerStr string) (provider.PaymentProvider, error) {
	if providerStr == "" {
		providerStr = string(provider.ProviderTypeDodo)
	}
	return f.GetProvider(provider.ProviderType(providerStr))
}

// createDodoProvider creates a new DodoPayments provider instance
func (f *Factory) createDodoProvider() (provider.PaymentProvider, error) {
	if f.config.Dodo.APIKey == "" {
		if f.config.IsProduction() {
			return nil, fmt.Errorf("DodoPayments API key not configured")
		}
		f.logger.Warn("DodoPayments API key not configured, provider calls will be rejected")
	}

	return dodo.NewDodoProvider(
		f.config.Dodo.APIKey,
		f.config.Dodo.BaseURL,
		f.logger,
	), nil
}
