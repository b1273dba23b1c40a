// Package services orchestrates the quoting pipeline: guideline evaluation,
// pricing, requoting and the append-only revision store.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/quotecore/internal/common"
	"github.com/dmitrijs2005/quotecore/internal/dbx"
	"github.com/dmitrijs2005/quotecore/internal/logging"
	"github.com/dmitrijs2005/quotecore/internal/server/archive"
	"github.com/dmitrijs2005/quotecore/internal/server/collaborators"
	"github.com/dmitrijs2005/quotecore/internal/server/guidelines"
	"github.com/dmitrijs2005/quotecore/internal/server/metrics"
	"github.com/dmitrijs2005/quotecore/internal/server/models"
	"github.com/dmitrijs2005/quotecore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/quotecore/internal/server/requoting"
	"github.com/dmitrijs2005/quotecore/internal/subjecthash"
)

// CreateQuoteRequest starts a new master quote.
type CreateQuoteRequest struct {
	MemberID        string
	Channel         models.Channel
	Data            models.ProductData
	PriceOverridden bool
}

// UpdateQuoteRequest is a partial edit: nil fields keep the latest
// revision's value.
type UpdateQuoteRequest struct {
	Data            *models.ProductData
	PriceOverridden *bool
}

// UnderwritingService runs every quote operation through the same pipeline:
// evaluate guidelines, price, apply the requoting heuristic, append a
// revision. Breaches are returned inside the revision, not as errors.
type UnderwritingService struct {
	db         *sql.DB
	manager    repomanager.RepositoryManager
	guidelines *guidelines.Registry
	pricing    collaborators.Pricing
	requoter   *requoting.Engine
	archiver   archive.Archiver
	logger     logging.Logger
	metrics    *metrics.Metrics
	pepper     []byte
	validity   time.Duration
	now        func() time.Time
}

func NewUnderwritingService(
	manager repomanager.RepositoryManager,
	registry *guidelines.Registry,
	pricing collaborators.Pricing,
	requoter *requoting.Engine,
	archiver archive.Archiver,
	logger logging.Logger,
	m *metrics.Metrics,
	pepper []byte,
	validity time.Duration,
) *UnderwritingService {
	return &UnderwritingService{
		db:         manager.Conn(),
		manager:    manager,
		guidelines: registry,
		pricing:    pricing,
		requoter:   requoter,
		archiver:   archiver,
		logger:     logger,
		metrics:    m,
		pepper:     pepper,
		validity:   validity,
		now:        time.Now,
	}
}

// CreateQuote evaluates a new quote and stores its first revision. A breached
// quote is stored INCOMPLETE with its breach codes and no price; a clean one
// is priced, run through the requoting heuristic and stored QUOTED.
func (s *UnderwritingService) CreateQuote(ctx context.Context, req CreateQuoteRequest) (*models.QuoteRevision, error) {
	req.Data.MustValidate()
	now := s.now()

	master := &models.MasterQuote{
		ID:            uuid.New(),
		CreatedAt:     now,
		InitiatedFrom: req.Channel,
	}
	rev := &models.QuoteRevision{
		ID:              uuid.New(),
		MasterID:        master.ID,
		Sequence:        1,
		CreatedAt:       now,
		MemberID:        req.MemberID,
		Data:            req.Data,
		PriceOverridden: req.PriceOverridden,
		ValidTo:         now.Add(s.validity),
	}

	if err := s.evaluateAndPrice(ctx, req.Channel, rev); err != nil {
		return nil, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.manager.Quotes(tx)
		if err := repo.InsertMaster(ctx, master); err != nil {
			return err
		}
		return repo.AppendRevision(ctx, rev)
	})
	if err != nil {
		return nil, fmt.Errorf("storing quote: %w", err)
	}

	s.metrics.QuotesCreatedTotal.WithLabelValues(string(req.Channel)).Inc()
	s.logger.Info(ctx, "quote created",
		"master_id", master.ID, "channel", req.Channel,
		"variant", req.Data.Variant, "breached", rev.Breached())
	return rev, nil
}

// UpdateQuote merges a partial edit onto the latest revision and reruns the
// full pipeline. Stale breach codes from a prior attempt never survive the
// rerun. A concurrent update of the same master surfaces as
// common.ErrVersionConflict.
func (s *UnderwritingService) UpdateQuote(ctx context.Context, masterID uuid.UUID, req UpdateQuoteRequest) (*models.QuoteRevision, error) {
	repo := s.manager.Quotes(s.db)

	latest, err := repo.Latest(ctx, masterID)
	if err != nil {
		return nil, err
	}
	if latest.Signed() {
		return nil, common.ErrQuoteSigned
	}
	master, err := repo.Master(ctx, masterID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next := latest.Clone()
	next.ID = uuid.New()
	next.Sequence = latest.Sequence + 1
	next.CreatedAt = now
	next.ValidTo = now.Add(s.validity)
	next.BreachedGuidelines = nil
	next.Price = nil
	next.PriceFrom = nil
	next.LineItems = nil
	next.AgreementID = nil

	if req.Data != nil {
		req.Data.MustValidate()
		next.Data = *req.Data
	}
	if req.PriceOverridden != nil {
		next.PriceOverridden = *req.PriceOverridden
	}

	if err := s.evaluateAndPrice(ctx, master.InitiatedFrom, next); err != nil {
		return nil, err
	}

	if err := repo.AppendRevision(ctx, next); err != nil {
		return nil, err
	}

	s.metrics.QuotesUpdatedTotal.Inc()
	s.logger.Info(ctx, "quote updated",
		"master_id", masterID, "sequence", next.Sequence, "breached", next.Breached())
	return next, nil
}

// evaluateAndPrice fills in the guideline and pricing outcome of a revision:
// breach codes and INCOMPLETE state, or a requote-decided price and QUOTED
// state. Pricing and debt-check failures propagate.
func (s *UnderwritingService) evaluateAndPrice(ctx context.Context, channel models.Channel, rev *models.QuoteRevision) error {
	breaches, err := s.guidelines.Evaluate(ctx, rev.Data)
	if err != nil {
		return fmt.Errorf("evaluating guidelines: %w", err)
	}
	for _, code := range breaches {
		s.metrics.GuidelineBreachesTotal.WithLabelValues(string(code)).Inc()
	}

	if len(breaches) > 0 {
		rev.State = models.StateIncomplete
		rev.BreachedGuidelines = breaches
		return nil
	}

	price, lineItems, err := s.pricing.Price(ctx, rev.Data)
	if err != nil {
		return fmt.Errorf("pricing quote: %w", err)
	}

	decision := s.requoter.UseOldOrNewPrice(ctx, channel, rev, price, lineItems)
	rev.State = models.StateQuoted
	rev.Price = &decision.Price
	rev.PriceFrom = decision.PriceFrom
	rev.LineItems = decision.LineItems
	rev.BreachedGuidelines = []models.BreachCode{}
	return nil
}

// GetQuote returns the latest revision of a master quote.
func (s *UnderwritingService) GetQuote(ctx context.Context, masterID uuid.UUID) (*models.QuoteRevision, error) {
	return s.manager.Quotes(s.db).Latest(ctx, masterID)
}

// GetQuoteByMember returns the member's most recent revision.
func (s *UnderwritingService) GetQuoteByMember(ctx context.Context, memberID string) (*models.QuoteRevision, error) {
	return s.manager.Quotes(s.db).LatestByMember(ctx, memberID)
}

// GetQuoteByContractID returns the most recent revision carrying the
// external contract id.
func (s *UnderwritingService) GetQuoteByContractID(ctx context.Context, contractID string) (*models.QuoteRevision, error) {
	return s.manager.Quotes(s.db).LatestByContractID(ctx, contractID)
}

// BlockDueToExistingAgreement reports whether signing the quote should be
// refused because an in-force agreement already covers the risk.
func (s *UnderwritingService) BlockDueToExistingAgreement(ctx context.Context, masterID uuid.UUID) (bool, error) {
	repo := s.manager.Quotes(s.db)
	latest, err := repo.Latest(ctx, masterID)
	if err != nil {
		return false, err
	}
	master, err := repo.Master(ctx, masterID)
	if err != nil {
		return false, err
	}
	return s.requoter.BlockDueToExistingAgreement(ctx, master.InitiatedFrom, latest), nil
}

// SignQuote appends a SIGNED revision carrying the external agreement and
// contract ids. Breached, already-signed and agreement-blocked quotes are
// refused.
func (s *UnderwritingService) SignQuote(ctx context.Context, masterID uuid.UUID, agreementID, contractID string) (*models.QuoteRevision, error) {
	repo := s.manager.Quotes(s.db)

	latest, err := repo.Latest(ctx, masterID)
	if err != nil {
		return nil, err
	}
	if latest.Signed() {
		return nil, common.ErrQuoteSigned
	}
	if latest.Breached() {
		return nil, fmt.Errorf("quote %s has unresolved guideline breaches: %w", masterID, common.ErrorInternal)
	}
	master, err := repo.Master(ctx, masterID)
	if err != nil {
		return nil, err
	}
	if s.requoter.BlockDueToExistingAgreement(ctx, master.InitiatedFrom, latest) {
		return nil, common.ErrBlockedByExistingAgreement
	}

	now := s.now()
	next := latest.Clone()
	next.ID = uuid.New()
	next.Sequence = latest.Sequence + 1
	next.CreatedAt = now
	next.State = models.StateSigned
	next.AgreementID = &agreementID
	next.ContractID = &contractID

	if err := repo.AppendRevision(ctx, next); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "quote signed", "master_id", masterID, "agreement_id", agreementID)
	return next, nil
}

// ExpireQuote appends an EXPIRED revision. Signed quotes cannot expire.
func (s *UnderwritingService) ExpireQuote(ctx context.Context, masterID uuid.UUID) (*models.QuoteRevision, error) {
	repo := s.manager.Quotes(s.db)

	latest, err := repo.Latest(ctx, masterID)
	if err != nil {
		return nil, err
	}
	if latest.Signed() {
		return nil, common.ErrQuoteSigned
	}

	next := latest.Clone()
	next.ID = uuid.New()
	next.Sequence = latest.Sequence + 1
	next.CreatedAt = s.now()
	next.State = models.StateExpired

	if err := repo.AppendRevision(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// ExportAndPurge archives an anonymized snapshot of every revision, then
// deletes the master and its revisions, leaving only a tombstone keyed by an
// irreversible subject hash. Quotes signed into an agreement are refused. A
// failed archive aborts the purge; tombstone and deletion commit together.
func (s *UnderwritingService) ExportAndPurge(ctx context.Context, masterID uuid.UUID) (*models.DeletedQuote, error) {
	repo := s.manager.Quotes(s.db)

	revs, err := repo.AllRevisions(ctx, masterID)
	if err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, common.ErrorNotFound
	}
	for _, rev := range revs {
		if rev.Signed() {
			return nil, fmt.Errorf("quote %s is signed: %w", masterID, common.ErrQuoteSigned)
		}
	}

	latest := revs[len(revs)-1]
	subject := latest.MemberID
	if ssn := latest.Data.SSN(); ssn != nil {
		subject = *ssn
	}
	hashed := subjecthash.Hash(subject, s.pepper)

	for _, rev := range revs {
		rev.Data = rev.Data.Anonymized()
	}
	snapshot, err := json.Marshal(revs)
	if err != nil {
		return nil, fmt.Errorf("serializing snapshot: %w", err)
	}

	key := fmt.Sprintf("purged/%s/%s.json", hashed, masterID)
	if err := s.archiver.Archive(ctx, key, snapshot); err != nil {
		return nil, fmt.Errorf("archiving snapshot: %w", err)
	}

	tombstone := &models.DeletedQuote{
		ID:              uuid.New(),
		HashedSubjectID: hashed,
		QuoteType:       string(latest.Data.Variant),
		Snapshot:        snapshot,
		DeletedAt:       s.now(),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.manager.Deleted(tx).Insert(ctx, tombstone); err != nil {
			return err
		}
		return s.manager.Quotes(tx).Purge(ctx, masterID)
	})
	if err != nil {
		return nil, fmt.Errorf("purging quote: %w", err)
	}

	s.metrics.QuotesPurgedTotal.Inc()
	s.logger.Info(ctx, "quote purged", "master_id", masterID, "quote_type", tombstone.QuoteType)
	return tombstone, nil
}
