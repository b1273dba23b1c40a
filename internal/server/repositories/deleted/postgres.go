package deleted

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/quotecore/internal/dbx"
	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// PostgresRepository stores tombstones over a dbx.DBTX so Insert can run
// inside the purge transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, d *models.DeletedQuote) error {
	query := `
		INSERT INTO deleted_quotes (id, hashed_subject_id, quote_type, snapshot, deleted_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, d.ID, d.HashedSubjectID, d.QuoteType, d.Snapshot, d.DeletedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ByHashedSubject(ctx context.Context, hashedSubjectID string) ([]*models.DeletedQuote, error) {
	query := `
		SELECT id, hashed_subject_id, quote_type, snapshot, deleted_at
		FROM deleted_quotes WHERE hashed_subject_id = $1
		ORDER BY deleted_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, hashedSubjectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.DeletedQuote
	for rows.Next() {
		var d models.DeletedQuote
		if err := rows.Scan(&d.ID, &d.HashedSubjectID, &d.QuoteType, &d.Snapshot, &d.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
