// Package archive stores purge snapshots in object storage. The snapshot is
// written before any live rows are deleted; a failed archive aborts the
// purge.
package archive

import "context"

// Archiver persists an anonymized revision snapshot under a key derived from
// the hashed subject id.
type Archiver interface {
	Archive(ctx context.Context, key string, snapshot []byte) error
}

// NopArchiver discards snapshots. Used in tests and in local setups without
// object storage.
type NopArchiver struct{}

func (NopArchiver) Archive(ctx context.Context, key string, snapshot []byte) error {
	return nil
}
