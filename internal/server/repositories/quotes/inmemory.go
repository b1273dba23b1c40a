package quotes

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/quotecore/internal/common"
	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// InMemoryRepository keeps masters and revisions in process memory, guarded
// by one RWMutex. Used by tests and local development; the lock makes
// appends to one master linearizable the same way the Postgres unique
// constraint does.
type InMemoryRepository struct {
	mu        sync.RWMutex
	masters   map[uuid.UUID]*models.MasterQuote
	revisions map[uuid.UUID][]*models.QuoteRevision // ascending sequence
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		masters:   make(map[uuid.UUID]*models.MasterQuote),
		revisions: make(map[uuid.UUID][]*models.QuoteRevision),
	}
}

// normalizeFingerprint canonicalizes address components so lookups are not
// sensitive to case or stray whitespace.
func normalizeFingerprint(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (r *InMemoryRepository) InsertMaster(ctx context.Context, m *models.MasterQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.masters[m.ID] = &cp
	return nil
}

func (r *InMemoryRepository) Master(ctx context.Context, masterID uuid.UUID) (*models.MasterQuote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.masters[masterID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *InMemoryRepository) AppendRevision(ctx context.Context, rev *models.QuoteRevision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.masters[rev.MasterID]; !ok {
		return common.ErrorNotFound
	}
	for _, existing := range r.revisions[rev.MasterID] {
		if existing.Sequence == rev.Sequence {
			return common.ErrVersionConflict
		}
	}
	r.revisions[rev.MasterID] = append(r.revisions[rev.MasterID], rev.Clone())
	sort.Slice(r.revisions[rev.MasterID], func(i, j int) bool {
		return r.revisions[rev.MasterID][i].Sequence < r.revisions[rev.MasterID][j].Sequence
	})
	return nil
}

func (r *InMemoryRepository) Latest(ctx context.Context, masterID uuid.UUID) (*models.QuoteRevision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	revs := r.revisions[masterID]
	if len(revs) == 0 {
		return nil, common.ErrorNotFound
	}
	return revs[len(revs)-1].Clone(), nil
}

func (r *InMemoryRepository) AllRevisions(ctx context.Context, masterID uuid.UUID) ([]*models.QuoteRevision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	revs := r.revisions[masterID]
	out := make([]*models.QuoteRevision, 0, len(revs))
	for _, rev := range revs {
		out = append(out, rev.Clone())
	}
	return out, nil
}

func (r *InMemoryRepository) LatestByMember(ctx context.Context, memberID string) (*models.QuoteRevision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *models.QuoteRevision
	for _, revs := range r.revisions {
		for _, rev := range revs {
			if rev.MemberID != memberID {
				continue
			}
			if best == nil || rev.CreatedAt.After(best.CreatedAt) ||
				(rev.CreatedAt.Equal(best.CreatedAt) && rev.Sequence > best.Sequence) {
				best = rev
			}
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return best.Clone(), nil
}

func (r *InMemoryRepository) AllByMember(ctx context.Context, memberID string) ([]*models.QuoteRevision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.QuoteRevision
	for _, revs := range r.revisions {
		for _, rev := range revs {
			if rev.MemberID == memberID {
				out = append(out, rev.Clone())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

func (r *InMemoryRepository) LatestByContractID(ctx context.Context, contractID string) (*models.QuoteRevision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *models.QuoteRevision
	for _, revs := range r.revisions {
		for _, rev := range revs {
			if rev.ContractID == nil || *rev.ContractID != contractID {
				continue
			}
			if best == nil || rev.Sequence > best.Sequence {
				best = rev
			}
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return best.Clone(), nil
}

func (r *InMemoryRepository) FindByAddressFingerprint(ctx context.Context, street, zipCode string, variant models.ProductVariant) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	street = normalizeFingerprint(street)
	zipCode = normalizeFingerprint(zipCode)

	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for masterID, revs := range r.revisions {
		for _, rev := range revs {
			if rev.Data.Variant != variant {
				continue
			}
			s, z, ok := rev.Data.Address()
			if !ok {
				continue
			}
			if normalizeFingerprint(s) != street || normalizeFingerprint(z) != zipCode {
				continue
			}
			if _, dup := seen[masterID]; !dup {
				seen[masterID] = struct{}{}
				out = append(out, masterID)
			}
			break
		}
	}
	return out, nil
}

func (r *InMemoryRepository) LatestRevisions(ctx context.Context, masterIDs []uuid.UUID) ([]*models.QuoteRevision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.QuoteRevision
	for _, id := range masterIDs {
		revs := r.revisions[id]
		if len(revs) == 0 {
			continue
		}
		out = append(out, revs[len(revs)-1].Clone())
	}
	return out, nil
}

func (r *InMemoryRepository) Purge(ctx context.Context, masterID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.masters[masterID]; !ok {
		return common.ErrorNotFound
	}
	delete(r.masters, masterID)
	delete(r.revisions, masterID)
	return nil
}
