package deleted

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// InMemoryRepository keeps tombstones in process memory for tests and local
// development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []*models.DeletedQuote
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Insert(ctx context.Context, d *models.DeletedQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	cp.Snapshot = append([]byte(nil), d.Snapshot...)
	r.records = append(r.records, &cp)
	return nil
}

func (r *InMemoryRepository) ByHashedSubject(ctx context.Context, hashedSubjectID string) ([]*models.DeletedQuote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.DeletedQuote
	for _, d := range r.records {
		if d.HashedSubjectID != hashedSubjectID {
			continue
		}
		cp := *d
		cp.Snapshot = append([]byte(nil), d.Snapshot...)
		out = append(out, &cp)
	}
	return out, nil
}
