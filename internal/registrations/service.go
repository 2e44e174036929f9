package registrations

import (
	"context"

	"go.uber.org/multierr"

	pkgerrors "github.com/luciaherrero/famcenter-backend/pkg/errors"
	"github.com/luciaherrero/famcenter-backend/pkg/logger"
	"github.com/luciaherrero/famcenter-backend/pkg/money"
	"github.com/luciaherrero/famcenter-backend/pkg/types"
)

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the registration reconciler.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "registrations repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// ReconcileCheckout marks each resolved line paid. Every line is attempted
// even when earlier ones fail, so a redelivery only has the remainder left to
// do. A line with no matching row is reported in the summary, not treated as
// a fault; a store error is a transient fault and aggregates into the
// returned error.
func (s *service) ReconcileCheckout(ctx context.Context, input CheckoutInput) (*types.ReconcileSummary, error) {
	summary := &types.ReconcileSummary{Skipped: input.SkippedLines}
	var faults error

	for _, line := range input.Lines {
		key := LineKey{
			ChildID:           line.ChildID,
			ActivityID:        line.ActivityID,
			PayerID:           line.PayerID,
			CheckoutSessionID: input.SessionID,
		}
		amount := money.FromMinorUnits(line.UnitPriceCents, money.DefaultExponent)

		affected, err := s.repo.MarkLinePaid(ctx, key, amount, input.PaymentReference)
		if err != nil {
			faults = multierr.Append(faults, err)
			continue
		}
		if affected > 0 {
			summary.Updated++
			continue
		}

		count, err := s.repo.CountLine(ctx, key)
		if err != nil {
			faults = multierr.Append(faults, err)
			continue
		}
		if count > 0 {
			summary.AlreadyPaid++
			continue
		}
		summary.NotFound++
		if s.logg != nil {
			lctx := s.logg.WithFields(ctx, map[string]any{
				"session_id":  input.SessionID,
				"child_id":    line.ChildID.String(),
				"activity_id": line.ActivityID.String(),
				"payer_id":    line.PayerID.String(),
			})
			s.logg.Warn(lctx, "registrations.reconcile.line_not_found")
		}
	}

	if faults != nil {
		return summary, pkgerrors.Wrap(pkgerrors.CodeDependency, faults, "persist registration updates").
			WithDetails(map[string]any{"session_id": input.SessionID})
	}
	return summary, nil
}
