package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/luciaherrero/famcenter-backend/pkg/errors"
)

func TestResolve_MetadataPath(t *testing.T) {
	child, activity, payer := uuid.New(), uuid.New(), uuid.New()
	descriptor := fmt.Sprintf(
		`[{"child_id":%q,"activity_id":%q,"payer_id":%q,"amount_cents":12345}]`,
		child, activity, payer,
	)
	session := &stripe.CheckoutSession{
		ID:       "cs_meta",
		Metadata: map[string]string{MetadataCartKey: descriptor},
	}
	fetcher := &fakeSessionClient{}
	resolver := mustResolver(t, fetcher)

	res, err := resolver.Resolve(context.Background(), session)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != sourceMetadata {
		t.Fatalf("expected metadata source, got %s", res.Source)
	}
	if len(res.Lines) != 1 || res.Skipped != 0 {
		t.Fatalf("expected one line, zero skipped, got %d/%d", len(res.Lines), res.Skipped)
	}
	line := res.Lines[0]
	if line.ChildID != child || line.ActivityID != activity || line.PayerID != payer {
		t.Fatalf("identifiers not preserved: %+v", line)
	}
	if line.UnitPriceCents != 12345 {
		t.Fatalf("expected 12345 cents, got %d", line.UnitPriceCents)
	}
	if fetcher.calls != 0 {
		t.Fatalf("metadata path should not re-fetch the session")
	}
}

func TestResolve_FallbackSkipsIncompleteLines(t *testing.T) {
	// Three well-formed expanded line items plus one missing child_id: the
	// resolver must yield exactly three lines and report one skipped.
	items := []*stripe.LineItem{
		expandedLine(uuid.New(), uuid.New(), uuid.New(), 1000),
		expandedLine(uuid.New(), uuid.New(), uuid.New(), 2000),
		expandedLine(uuid.New(), uuid.New(), uuid.New(), 3000),
	}
	broken := expandedLine(uuid.New(), uuid.New(), uuid.New(), 4000)
	delete(broken.Price.Product.Metadata, "child_id")
	items = append(items, broken)

	fetcher := &fakeSessionClient{
		session: &stripe.CheckoutSession{
			ID:        "cs_fallback",
			LineItems: &stripe.LineItemList{Data: items},
		},
	}
	resolver := mustResolver(t, fetcher)

	res, err := resolver.Resolve(context.Background(), &stripe.CheckoutSession{ID: "cs_fallback"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != sourceExpansion {
		t.Fatalf("expected expansion source, got %s", res.Source)
	}
	if len(res.Lines) != 3 {
		t.Fatalf("expected 3 usable lines, got %d", len(res.Lines))
	}
	if res.Skipped != 1 {
		t.Fatalf("expected 1 skipped line, got %d", res.Skipped)
	}
}

func TestResolve_UnparsableMetadataFallsThrough(t *testing.T) {
	fetcher := &fakeSessionClient{
		session: &stripe.CheckoutSession{
			ID: "cs_bad_meta",
			LineItems: &stripe.LineItemList{
				Data: []*stripe.LineItem{expandedLine(uuid.New(), uuid.New(), uuid.New(), 500)},
			},
		},
	}
	resolver := mustResolver(t, fetcher)

	session := &stripe.CheckoutSession{
		ID:       "cs_bad_meta",
		Metadata: map[string]string{MetadataCartKey: "{not json"},
	}
	res, err := resolver.Resolve(context.Background(), session)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != sourceExpansion {
		t.Fatalf("expected fall-through to expansion, got %s", res.Source)
	}
	if fetcher.calls == 0 {
		t.Fatalf("expected session re-fetch")
	}
}

func TestResolve_BothPathsEmptyIsUnresolvable(t *testing.T) {
	fetcher := &fakeSessionClient{session: &stripe.CheckoutSession{ID: "cs_empty"}}
	resolver := mustResolver(t, fetcher)

	_, err := resolver.Resolve(context.Background(), &stripe.CheckoutSession{ID: "cs_empty"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolve_FetchFailureIsTransient(t *testing.T) {
	fetcher := &fakeSessionClient{err: errors.New("stripe unavailable")}
	resolver := mustResolver(t, fetcher)

	_, err := resolver.Resolve(context.Background(), &stripe.CheckoutSession{ID: "cs_down"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if fetcher.calls < 2 {
		t.Fatalf("expected the fetch to be retried, got %d calls", fetcher.calls)
	}
}

func mustResolver(t *testing.T, fetcher SessionClient) *Resolver {
	t.Helper()
	resolver, err := NewResolver(fetcher, nil)
	if err != nil {
		t.Fatalf("setup resolver: %v", err)
	}
	return resolver
}

func expandedLine(child, activity, payer uuid.UUID, amount int64) *stripe.LineItem {
	return &stripe.LineItem{
		AmountTotal: amount,
		Price: &stripe.Price{
			Product: &stripe.Product{
				Metadata: map[string]string{
					"child_id":    child.String(),
					"activity_id": activity.String(),
					"payer_id":    payer.String(),
				},
			},
		},
	}
}

type fakeSessionClient struct {
	session *stripe.CheckoutSession
	err     error
	calls   int
}

func (f *fakeSessionClient) GetSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}
