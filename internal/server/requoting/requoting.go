// Package requoting decides whether a new quote at a previously seen risk
// should reuse a prior price, and whether an in-force agreement already
// covers the risk. Both decisions are best-effort optimizations: any failure
// while gathering candidates falls back to the safe default (fresh price,
// no block) instead of failing the quoting path.
package requoting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/quotecore/internal/logging"
	"github.com/dmitrijs2005/quotecore/internal/server/collaborators"
	"github.com/dmitrijs2005/quotecore/internal/server/compare"
	"github.com/dmitrijs2005/quotecore/internal/server/metrics"
	"github.com/dmitrijs2005/quotecore/internal/server/models"
	"github.com/dmitrijs2005/quotecore/internal/server/repositories/quotes"
)

// priceStabilityWindow is how long a reused price keeps shielding a customer
// from a fresh one while they are actively shopping.
const priceStabilityWindow = 30 * 24 * time.Hour

// Engine implements agreement blocking and the temporal price-reuse
// heuristic over the address fingerprint index.
type Engine struct {
	repo       quotes.Repository
	agreements collaborators.AgreementStatus
	denylist   Denylist
	logger     logging.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewEngine(repo quotes.Repository, agreements collaborators.AgreementStatus, denylist Denylist, logger logging.Logger, m *metrics.Metrics, now func() time.Time) *Engine {
	return &Engine{
		repo:       repo,
		agreements: agreements,
		denylist:   denylist,
		logger:     logger,
		metrics:    m,
		now:        now,
	}
}

// Decision is the outcome of the price-reuse heuristic. When Reused is true,
// Price and LineItems come from the prior revision and PriceFrom points at
// the revision that originally computed the amount.
type Decision struct {
	Price     models.Price
	PriceFrom *uuid.UUID
	LineItems []models.LineItem
	Reused    bool
}

// bestEffort runs f and returns its value, or the default with a logged
// warning when f fails. Requoting inputs are gathered this way so a broken
// index or collaborator degrades the heuristic instead of the quote.
func bestEffort[T any](ctx context.Context, logger logging.Logger, op string, def T, f func() (T, error)) T {
	v, err := f()
	if err != nil {
		logger.Warn(ctx, "requoting input unavailable, using default", "op", op, "error", err)
		return def
	}
	return v
}

// matchingPriorQuotes returns the latest revision of every other master
// quote at the same address fingerprint whose person matches null-tolerantly
// on SSN and birth date. Quotes without any identifying fingerprint match
// nothing.
func (e *Engine) matchingPriorQuotes(ctx context.Context, rev *models.QuoteRevision) ([]*models.QuoteRevision, error) {
	data := rev.Data

	hasPerson := data.SSN() != nil || data.BirthDate() != nil
	street, zip, hasAddress := data.Address()
	if !hasPerson && !hasAddress {
		return nil, nil
	}
	if !hasAddress {
		// the candidate index is keyed by address
		return nil, nil
	}

	masterIDs, err := e.repo.FindByAddressFingerprint(ctx, street, zip, data.Variant)
	if err != nil {
		return nil, err
	}
	candidates, err := e.repo.LatestRevisions(ctx, masterIDs)
	if err != nil {
		return nil, err
	}

	var matches []*models.QuoteRevision
	for _, cand := range candidates {
		if cand.MasterID == rev.MasterID {
			continue
		}
		if !compare.SamePerson(data, cand.Data) {
			continue
		}
		matches = append(matches, cand)
	}
	return matches, nil
}

// BlockDueToExistingAgreement reports whether some matching prior quote is
// signed into an agreement that still covers the risk. Any gathering or
// status failure means "don't block".
func (e *Engine) BlockDueToExistingAgreement(ctx context.Context, channel models.Channel, rev *models.QuoteRevision) bool {
	if !channel.CustomerFacing() {
		return false
	}
	if e.denylist.Contains(rev.Data) {
		return false
	}

	matches := bestEffort(ctx, e.logger, "gather matches for blocking", nil, func() ([]*models.QuoteRevision, error) {
		return e.matchingPriorQuotes(ctx, rev)
	})

	for _, m := range matches {
		if !m.Signed() {
			continue
		}
		state := bestEffort(ctx, e.logger, "agreement status", collaborators.AgreementState(""), func() (collaborators.AgreementState, error) {
			return e.agreements.Status(ctx, *m.AgreementID)
		})
		if state.InForce() {
			e.metrics.AgreementBlocksTotal.Inc()
			return true
		}
	}
	return false
}

// UseOldOrNewPrice applies the price-reuse heuristic: the first matching
// branch wins. The fresh price is the safe default throughout.
func (e *Engine) UseOldOrNewPrice(ctx context.Context, channel models.Channel, rev *models.QuoteRevision, newPrice models.Price, newLineItems []models.LineItem) Decision {
	fresh := Decision{Price: newPrice, LineItems: newLineItems}

	if !channel.CustomerFacing() {
		return e.record(fresh)
	}
	if rev.PriceOverridden {
		return e.record(fresh)
	}
	if e.denylist.Contains(rev.Data) {
		return e.record(fresh)
	}

	matches := bestEffort(ctx, e.logger, "gather matches for price reuse", nil, func() ([]*models.QuoteRevision, error) {
		return e.matchingPriorQuotes(ctx, rev)
	})

	var priced []*models.QuoteRevision
	for _, m := range matches {
		if m.Price != nil {
			priced = append(priced, m)
		}
	}
	if len(priced) == 0 {
		return e.record(fresh)
	}

	last := priced[0]
	for _, m := range priced[1:] {
		if m.CreatedAt.After(last.CreatedAt) {
			last = m
		}
	}

	if last.Price.Equal(newPrice) {
		// amount unchanged, take the fresh computation so line items refresh
		return e.record(fresh)
	}
	if len(last.LineItems) == 0 && len(newLineItems) > 0 {
		// one-time escape hatch for quotes priced before line items existed
		return e.record(fresh)
	}

	cutoff := e.now().Add(-priceStabilityWindow)
	if !anyOlderThan(priced, cutoff) {
		return e.record(e.reuse(last))
	}
	if amountChangedSince(priced, cutoff) {
		return e.record(e.reuse(last))
	}
	return e.record(fresh)
}

func (e *Engine) reuse(last *models.QuoteRevision) Decision {
	priceFrom := last.PriceFrom
	if priceFrom == nil {
		id := last.ID
		priceFrom = &id
	}
	return Decision{
		Price:     *last.Price,
		PriceFrom: priceFrom,
		LineItems: last.LineItems,
		Reused:    true,
	}
}

func (e *Engine) record(d Decision) Decision {
	decision := metrics.DecisionAdopted
	if d.Reused {
		decision = metrics.DecisionReused
	}
	e.metrics.RequoteDecisionsTotal.WithLabelValues(decision).Inc()
	return d
}

func anyOlderThan(revs []*models.QuoteRevision, cutoff time.Time) bool {
	for _, r := range revs {
		if r.CreatedAt.Before(cutoff) {
			return true
		}
	}
	return false
}

// amountChangedSince reports whether the priced amount moved within the
// stability window: some match inside the window differs from the most
// recent match before it.
func amountChangedSince(revs []*models.QuoteRevision, cutoff time.Time) bool {
	var baseline *models.QuoteRevision
	for _, r := range revs {
		if !r.CreatedAt.Before(cutoff) {
			continue
		}
		if baseline == nil || r.CreatedAt.After(baseline.CreatedAt) {
			baseline = r
		}
	}
	if baseline == nil {
		return false
	}
	for _, r := range revs {
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		if !r.Price.Equal(*baseline.Price) {
			return true
		}
	}
	return false
}
