package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/luciaherrero/famcenter-backend/pkg/errors"
	"github.com/luciaherrero/famcenter-backend/pkg/logger"
)

// MetadataCartKey is the checkout session metadata key the platform writes a
// structured cart descriptor under when it creates the session.
const MetadataCartKey = "cart"

// LineItem is one reconstructed purchase line: one child's enrollment in one
// activity, paid for by one payer. Derived transiently from a checkout
// session; never persisted.
type LineItem struct {
	ChildID        uuid.UUID
	ActivityID     uuid.UUID
	PayerID        uuid.UUID
	UnitPriceCents int64
}

// Resolution carries the usable line items plus how many raw lines had to be
// skipped for missing identifiers.
type Resolution struct {
	Lines   []LineItem
	Skipped int
	Source  string
}

const (
	sourceMetadata  = "metadata"
	sourceExpansion = "expansion"
)

// SessionClient exposes the single Stripe call the fallback path needs.
type SessionClient interface {
	GetSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
}

// Resolver reconstructs cart line items from a settled checkout session. It
// tries the structured metadata descriptor first and falls back to
// re-fetching the session with line items and product metadata expanded.
type Resolver struct {
	sessions SessionClient
	logg     *logger.Logger
}

func NewResolver(sessions SessionClient, logg *logger.Logger) (*Resolver, error) {
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session client required")
	}
	return &Resolver{sessions: sessions, logg: logg}, nil
}

// Resolve returns the ordered line items the session paid for. It fails with
// a validation error only when both paths produce zero usable lines; a
// partially usable result is returned with its skipped count.
func (r *Resolver) Resolve(ctx context.Context, session *stripe.CheckoutSession) (*Resolution, error) {
	if session == nil || session.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session required")
	}

	if res := r.resolveFromMetadata(ctx, session); res != nil {
		return res, nil
	}

	res, err := r.resolveFromExpansion(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if len(res.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no resolvable cart line items").
			WithDetails(map[string]any{"session_id": session.ID, "skipped": res.Skipped})
	}
	if res.Skipped > 0 && r.logg != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{"session_id": session.ID, "skipped": res.Skipped})
		r.logg.Warn(ctx, "cart.resolve.skipped_line_items")
	}
	return res, nil
}

type metadataLine struct {
	ChildID     string `json:"child_id"`
	ActivityID  string `json:"activity_id"`
	PayerID     string `json:"payer_id"`
	AmountCents int64  `json:"amount_cents"`
}

// resolveFromMetadata parses the structured descriptor; it returns nil when
// the descriptor is absent, unparsable, or empty so the caller falls through
// to the expansion path.
func (r *Resolver) resolveFromMetadata(ctx context.Context, session *stripe.CheckoutSession) *Resolution {
	raw, ok := session.Metadata[MetadataCartKey]
	if !ok || raw == "" {
		return nil
	}

	var entries []metadataLine
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		if r.logg != nil {
			ctx = r.logg.WithField(ctx, "session_id", session.ID)
			r.logg.Warn(ctx, "cart.resolve.metadata_unparsable")
		}
		return nil
	}

	res := &Resolution{Source: sourceMetadata}
	for _, entry := range entries {
		line, err := lineFromIdentifiers(entry.ChildID, entry.ActivityID, entry.PayerID, entry.AmountCents)
		if err != nil {
			res.Skipped++
			continue
		}
		res.Lines = append(res.Lines, line)
	}
	if len(res.Lines) == 0 {
		return nil
	}
	return res
}

func (r *Resolver) resolveFromExpansion(ctx context.Context, sessionID string) (*Resolution, error) {
	var fetched *stripe.CheckoutSession
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		session, err := r.sessions.GetSession(ctx, sessionID)
		if err != nil {
			return retry.RetryableError(err)
		}
		fetched = session
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-fetch checkout session")
	}

	res := &Resolution{Source: sourceExpansion}
	if fetched == nil || fetched.LineItems == nil {
		return res, nil
	}
	for _, item := range fetched.LineItems.Data {
		if item == nil || item.Price == nil || item.Price.Product == nil {
			res.Skipped++
			continue
		}
		meta := item.Price.Product.Metadata
		line, err := lineFromIdentifiers(meta["child_id"], meta["activity_id"], meta["payer_id"], item.AmountTotal)
		if err != nil {
			res.Skipped++
			continue
		}
		res.Lines = append(res.Lines, line)
	}
	return res, nil
}

func lineFromIdentifiers(childID, activityID, payerID string, amountCents int64) (LineItem, error) {
	child, err := uuid.Parse(childID)
	if err != nil {
		return LineItem{}, fmt.Errorf("parse child id: %w", err)
	}
	activity, err := uuid.Parse(activityID)
	if err != nil {
		return LineItem{}, fmt.Errorf("parse activity id: %w", err)
	}
	payer, err := uuid.Parse(payerID)
	if err != nil {
		return LineItem{}, fmt.Errorf("parse payer id: %w", err)
	}
	if amountCents < 0 {
		return LineItem{}, fmt.Errorf("negative amount %d", amountCents)
	}
	return LineItem{
		ChildID:        child,
		ActivityID:     activity,
		PayerID:        payer,
		UnitPriceCents: amountCents,
	}, nil
}
