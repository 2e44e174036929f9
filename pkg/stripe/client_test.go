package stripe

import (
	"context"
	"testing"

	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/luciaherrero/famcenter-backend/pkg/config"
)

func TestNewClientValidatesKeyAgainstEnv(t *testing.T) {
	ctx := context.Background()

	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_live_123", Secret: "whsec", Env: "test"}, nil); err == nil {
		t.Fatalf("expected live key in test env to be rejected")
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_123", Secret: "whsec", Env: "live"}, nil); err == nil {
		t.Fatalf("expected test key in live env to be rejected")
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_123", Secret: "whsec", Env: "staging"}, nil); err == nil {
		t.Fatalf("expected unknown env to be rejected")
	}
}

func TestNewClientRequiresSecrets(t *testing.T) {
	ctx := context.Background()

	if _, err := NewClient(ctx, config.StripeConfig{Secret: "whsec"}, nil); err != errAPIKeyRequired {
		t.Fatalf("expected missing api key error, got %v", err)
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_123"}, nil); err != errSecretRequired {
		t.Fatalf("expected missing webhook secret error, got %v", err)
	}
}

func TestNewClientInstallsKey(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_123", Secret: "whsec_abc"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.SigningSecret() != "whsec_abc" {
		t.Fatalf("unexpected signing secret %q", client.SigningSecret())
	}
	if stripeapi.Key != "sk_test_123" {
		t.Fatalf("expected package key to be installed, got %q", stripeapi.Key)
	}
}
