package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/luciaherrero/famcenter-backend/pkg/config"
	"github.com/luciaherrero/famcenter-backend/pkg/logger"
)

var (
	errAPIKeyRequired = errors.New("stripe api key is required")
	errSecretRequired = errors.New("stripe webhook secret is required")
)

// Client carries the verified webhook signing secret. Constructing it also
// installs the secret key for the package-level session API, which is the
// only Stripe surface this service calls.
type Client struct {
	environment   string
	signingSecret string
}

// NewClient checks the configured Stripe credentials against the declared
// environment and installs the secret key.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env := cfg.Environment()
	if env != "test" && env != "live" {
		return nil, fmt.Errorf("stripe environment must be %q or %q", "test", "live")
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if !strings.HasPrefix(apiKey, "sk_"+env) && !strings.HasPrefix(apiKey, "rk_"+env) {
		return nil, fmt.Errorf("stripe environment %q requires an sk_%s or rk_%s key", env, env, env)
	}

	signingSecret := strings.TrimSpace(cfg.Secret)
	if signingSecret == "" {
		return nil, errSecretRequired
	}

	stripe.Key = apiKey

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{
		environment:   env,
		signingSecret: signingSecret,
	}, nil
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}
