package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/logger"
)

// Mode is the Stripe account mode catalog objects are written to.
type Mode string

const (
	ModeTest Mode = "test"
	ModeLive Mode = "live"
)

// keyPrefixes lists the secret and restricted key prefixes each mode accepts.
var keyPrefixes = map[Mode][]string{
	ModeTest: {"sk_test_", "rk_test_"},
	ModeLive: {"sk_live_", "rk_live_"},
}

var errAPIKeyRequired = errors.New("GOGO_STRIPE_API_KEY is required for the stripe billing provider")

// Client is the Stripe API handle the catalog provider writes through.
type Client struct {
	api  *stripe.Client
	mode Mode
}

// NewClient checks that the configured key belongs to the configured mode,
// so a live key can never be used from a test deployment and vice versa.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	mode := Mode(cfg.Environment())
	prefixes, ok := keyPrefixes[mode]
	if !ok {
		return nil, fmt.Errorf("GOGO_STRIPE_ENV must be %q or %q, got %q", ModeTest, ModeLive, mode)
	}

	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	if !hasAnyPrefix(key, prefixes) {
		return nil, fmt.Errorf("stripe %s mode needs a key starting with %s", mode, strings.Join(prefixes, " or "))
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "stripe_mode", string(mode)), "stripe catalog client ready")
	}
	return &Client{api: stripe.NewClient(key), mode: mode}, nil
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// API returns the underlying stripe-go client, or nil for a nil Client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

func (c *Client) Mode() Mode {
	if c == nil {
		return ""
	}
	return c.mode
}
