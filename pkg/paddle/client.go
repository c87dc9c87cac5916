package paddle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	paddlesdk "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errAPIKeyRequired   = errors.New("paddle api key is required")
	errInvalidPaddleEnv = fmt.Errorf("paddle environment must be %q or %q", sandboxEnv, productionEnv)
)

// Client wraps the Paddle SDK plus env-specific metadata.
type Client struct {
	sdk         *paddlesdk.SDK
	environment string
}

// NewClient initializes the Paddle SDK for the configured environment.
func NewClient(ctx context.Context, cfg config.PaddleConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	baseURL := paddlesdk.SandboxBaseURL
	if env == productionEnv {
		baseURL = paddlesdk.ProductionBaseURL
	}
	sdk, err := paddlesdk.New(apiKey, paddlesdk.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("init paddle sdk: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("paddle client initialized (%s)", env))
	}

	return &Client{sdk: sdk, environment: env}, nil
}

// SDK returns the underlying Paddle SDK.
func (c *Client) SDK() *paddlesdk.SDK {
	if c == nil {
		return nil
	}
	return c.sdk
}

// Environment reports the normalized Paddle environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidPaddleEnv
	}
}
