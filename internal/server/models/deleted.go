package models

import (
	"time"

	"github.com/google/uuid"
)

// DeletedQuote is the archival record produced when a master quote and all
// its revisions are purged under retention policy. It keeps no live foreign
// key back to any identity: the subject is referenced only through an
// irreversible hash and the snapshot holds anonymized revisions.
type DeletedQuote struct {
	ID              uuid.UUID
	HashedSubjectID string
	QuoteType       string
	Snapshot        []byte
	DeletedAt       time.Time
}
