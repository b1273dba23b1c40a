package quotes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/quotecore/internal/common"
	"github.com/dmitrijs2005/quotecore/internal/dbx"
	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// PostgresRepository implements the quote store over a dbx.DBTX (*sql.DB or
// *sql.Tx). The product-data payload is stored as a tagged-union jsonb
// document; the address fingerprint is denormalized into indexed columns at
// insert time because FindByAddressFingerprint runs on every quote creation.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const revisionColumns = `id, master_id, sequence, created_at, state, member_id, data,
	price_amount_minor, price_currency, price_from, price_overridden,
	line_items, breached_guidelines, agreement_id, contract_id, valid_to`

func (r *PostgresRepository) InsertMaster(ctx context.Context, m *models.MasterQuote) error {
	query := `
		INSERT INTO master_quotes (id, created_at, initiated_from)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.CreatedAt, m.InitiatedFrom); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Master(ctx context.Context, masterID uuid.UUID) (*models.MasterQuote, error) {
	query := `SELECT id, created_at, initiated_from FROM master_quotes WHERE id = $1`
	var m models.MasterQuote
	err := r.db.QueryRowContext(ctx, query, masterID).Scan(&m.ID, &m.CreatedAt, &m.InitiatedFrom)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &m, nil
}

func (r *PostgresRepository) AppendRevision(ctx context.Context, rev *models.QuoteRevision) error {
	data, err := json.Marshal(rev.Data)
	if err != nil {
		return fmt.Errorf("marshal product data: %w", err)
	}
	lineItems, err := json.Marshal(rev.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	breaches, err := json.Marshal(rev.BreachedGuidelines)
	if err != nil {
		return fmt.Errorf("marshal breached guidelines: %w", err)
	}

	var street, zip sql.NullString
	if s, z, ok := rev.Data.Address(); ok {
		street = sql.NullString{String: normalizeFingerprint(s), Valid: true}
		zip = sql.NullString{String: normalizeFingerprint(z), Valid: true}
	}

	var priceAmount sql.NullInt64
	var priceCurrency sql.NullString
	if rev.Price != nil {
		priceAmount = sql.NullInt64{Int64: rev.Price.AmountMinor, Valid: true}
		priceCurrency = sql.NullString{String: rev.Price.Currency, Valid: true}
	}

	query := `
		INSERT INTO quote_revisions
			(id, master_id, sequence, created_at, state, member_id, variant, data,
			 fingerprint_street, fingerprint_zip,
			 price_amount_minor, price_currency, price_from, price_overridden,
			 line_items, breached_guidelines, agreement_id, contract_id, valid_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = r.db.ExecContext(ctx, query,
		rev.ID, rev.MasterID, rev.Sequence, rev.CreatedAt, rev.State, rev.MemberID, rev.Data.Variant, data,
		street, zip,
		priceAmount, priceCurrency, uuidPtr(rev.PriceFrom), rev.PriceOverridden,
		lineItems, breaches, rev.AgreementID, rev.ContractID, rev.ValidTo,
	)
	if isUniqueViolation(err) {
		return common.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func uuidPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

// scanner abstracts *sql.Row and *sql.Rows for the shared revision scan.
type scanner interface {
	Scan(dest ...any) error
}

func scanRevision(s scanner) (*models.QuoteRevision, error) {
	var rev models.QuoteRevision
	var data, lineItems, breaches []byte
	var priceAmount sql.NullInt64
	var priceCurrency, priceFrom, agreementID, contractID sql.NullString

	err := s.Scan(
		&rev.ID, &rev.MasterID, &rev.Sequence, &rev.CreatedAt, &rev.State, &rev.MemberID, &data,
		&priceAmount, &priceCurrency, &priceFrom, &rev.PriceOverridden,
		&lineItems, &breaches, &agreementID, &contractID, &rev.ValidTo,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &rev.Data); err != nil {
		return nil, fmt.Errorf("unmarshal product data: %w", err)
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &rev.LineItems); err != nil {
			return nil, fmt.Errorf("unmarshal line items: %w", err)
		}
	}
	if len(breaches) > 0 {
		if err := json.Unmarshal(breaches, &rev.BreachedGuidelines); err != nil {
			return nil, fmt.Errorf("unmarshal breached guidelines: %w", err)
		}
	}

	if priceAmount.Valid && priceCurrency.Valid {
		rev.Price = &models.Price{AmountMinor: priceAmount.Int64, Currency: priceCurrency.String}
	}
	if priceFrom.Valid {
		id, err := uuid.Parse(priceFrom.String)
		if err != nil {
			return nil, fmt.Errorf("parse price_from: %w", err)
		}
		rev.PriceFrom = &id
	}
	if agreementID.Valid {
		rev.AgreementID = &agreementID.String
	}
	if contractID.Valid {
		rev.ContractID = &contractID.String
	}
	return &rev, nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.QuoteRevision, error) {
	rev, err := scanRevision(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rev, nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.QuoteRevision, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.QuoteRevision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) Latest(ctx context.Context, masterID uuid.UUID) (*models.QuoteRevision, error) {
	query := `SELECT ` + revisionColumns + `
		FROM quote_revisions WHERE master_id = $1
		ORDER BY sequence DESC LIMIT 1`
	return r.queryOne(ctx, query, masterID)
}

func (r *PostgresRepository) AllRevisions(ctx context.Context, masterID uuid.UUID) ([]*models.QuoteRevision, error) {
	query := `SELECT ` + revisionColumns + `
		FROM quote_revisions WHERE master_id = $1
		ORDER BY sequence ASC`
	return r.queryMany(ctx, query, masterID)
}

func (r *PostgresRepository) LatestByMember(ctx context.Context, memberID string) (*models.QuoteRevision, error) {
	query := `SELECT ` + revisionColumns + `
		FROM quote_revisions WHERE member_id = $1
		ORDER BY created_at DESC, sequence DESC LIMIT 1`
	return r.queryOne(ctx, query, memberID)
}

func (r *PostgresRepository) AllByMember(ctx context.Context, memberID string) ([]*models.QuoteRevision, error) {
	query := `SELECT ` + revisionColumns + `
		FROM quote_revisions WHERE member_id = $1
		ORDER BY created_at ASC, sequence ASC`
	return r.queryMany(ctx, query, memberID)
}

func (r *PostgresRepository) LatestByContractID(ctx context.Context, contractID string) (*models.QuoteRevision, error) {
	query := `SELECT ` + revisionColumns + `
		FROM quote_revisions WHERE contract_id = $1
		ORDER BY created_at DESC, sequence DESC LIMIT 1`
	return r.queryOne(ctx, query, contractID)
}

func (r *PostgresRepository) FindByAddressFingerprint(ctx context.Context, street, zipCode string, variant models.ProductVariant) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT master_id FROM quote_revisions
		WHERE variant = $1 AND fingerprint_street = $2 AND fingerprint_zip = $3`
	rows, err := r.db.QueryContext(ctx, query, variant, normalizeFingerprint(street), normalizeFingerprint(zipCode))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) LatestRevisions(ctx context.Context, masterIDs []uuid.UUID) ([]*models.QuoteRevision, error) {
	if len(masterIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(masterIDs))
	args := make([]any, len(masterIDs))
	for i, id := range masterIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT DISTINCT ON (master_id) ` + revisionColumns + `
		FROM quote_revisions WHERE master_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY master_id, sequence DESC`
	return r.queryMany(ctx, query, args...)
}

func (r *PostgresRepository) Purge(ctx context.Context, masterID uuid.UUID) error {
	// quote_revisions cascades from master_quotes
	res, err := r.db.ExecContext(ctx, `DELETE FROM master_quotes WHERE id = $1`, masterID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
