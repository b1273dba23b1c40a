// Package quotes provides the append-only quote revision store: a master
// identity plus an ordered list of immutable revision snapshots, with the
// secondary lookups the requoting engine needs.
package quotes

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// Repository is the quote store contract. Revisions are only ever inserted;
// nothing is updated in place. Within one master id, a returned append is
// observed by every subsequent Latest call (linearizable per master);
// cross-master ordering is not guaranteed and not needed.
type Repository interface {
	// InsertMaster stores a new master identity.
	InsertMaster(ctx context.Context, m *models.MasterQuote) error

	// Master returns the master identity, or common.ErrorNotFound.
	Master(ctx context.Context, masterID uuid.UUID) (*models.MasterQuote, error)

	// AppendRevision adds one revision. The caller sets Sequence to
	// latest+1; a concurrent append to the same slot fails with
	// common.ErrVersionConflict and should be retried after re-reading.
	AppendRevision(ctx context.Context, r *models.QuoteRevision) error

	// Latest returns the revision with the highest sequence number for the
	// master, or common.ErrorNotFound.
	Latest(ctx context.Context, masterID uuid.UUID) (*models.QuoteRevision, error)

	// AllRevisions returns every revision of the master in ascending
	// sequence order.
	AllRevisions(ctx context.Context, masterID uuid.UUID) ([]*models.QuoteRevision, error)

	// LatestByMember returns the most recently created revision carrying the
	// member id, or common.ErrorNotFound.
	LatestByMember(ctx context.Context, memberID string) (*models.QuoteRevision, error)

	// AllByMember returns every revision carrying the member id in creation
	// order.
	AllByMember(ctx context.Context, memberID string) ([]*models.QuoteRevision, error)

	// LatestByContractID returns the most recent revision carrying the
	// external contract id, or common.ErrorNotFound.
	LatestByContractID(ctx context.Context, contractID string) (*models.QuoteRevision, error)

	// FindByAddressFingerprint returns the distinct master ids that have at
	// least one revision of the given variant at the given address. This is
	// a hot lookup on every quote creation and must be index-backed.
	FindByAddressFingerprint(ctx context.Context, street, zipCode string, variant models.ProductVariant) ([]uuid.UUID, error)

	// LatestRevisions returns the latest revision of each given master.
	LatestRevisions(ctx context.Context, masterIDs []uuid.UUID) ([]*models.QuoteRevision, error)

	// Purge removes a master and all its revisions. The caller produces the
	// DeletedQuote archival record first and runs both in one transaction.
	Purge(ctx context.Context, masterID uuid.UUID) error
}
