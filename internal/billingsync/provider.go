package billingsync

import (
	"context"
	"fmt"

	"github.com/vora-labs/gogo-admin/pkg/billing"
	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/paddle"
	"github.com/vora-labs/gogo-admin/pkg/stripe"
)

// NewProvider builds the billing provider selected by configuration. It
// returns nil with no error when syncing is disabled.
func NewProvider(ctx context.Context, cfg *config.Config, logg *logger.Logger) (billing.Provider, error) {
	switch cfg.BillingSync.ProviderName() {
	case config.BillingProviderNone:
		logg.Warn(ctx, "billing provider disabled; products will not be synced")
		return nil, nil
	case config.BillingProviderStripe:
		client, err := stripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			return nil, fmt.Errorf("stripe client: %w", err)
		}
		provider, err := stripe.NewCatalogProvider(client)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		client, err := paddle.NewClient(ctx, cfg.Paddle, logg)
		if err != nil {
			return nil, fmt.Errorf("paddle client: %w", err)
		}
		provider, err := paddle.NewProvider(client)
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
}
