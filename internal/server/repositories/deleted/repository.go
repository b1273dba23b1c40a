// Package deleted stores the tombstone records left behind when quotes are
// purged. Tombstones are written in the same transaction that deletes the
// live rows, so a purge is either fully recorded or not done at all.
package deleted

import (
	"context"

	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// Repository persists purge tombstones.
type Repository interface {
	Insert(ctx context.Context, d *models.DeletedQuote) error
	ByHashedSubject(ctx context.Context, hashedSubjectID string) ([]*models.DeletedQuote, error)
}
