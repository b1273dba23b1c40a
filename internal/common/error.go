// Package common defines shared sentinel errors used across the quote core.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrVersionConflict is returned when an appended revision lost the race
	// for its sequence number. The caller should re-read the latest revision
	// and retry.
	ErrVersionConflict = errors.New("version conflict")

	// Orchestration errors.
	ErrorInternal = errors.New("internal error")

	// ErrCannotPrice means the pricing collaborator could not produce a price
	// for the given product data.
	ErrCannotPrice = errors.New("cannot price quote")

	// ErrQuoteSigned guards destructive operations: a quote that carries a
	// signed agreement must never be purged or re-signed.
	ErrQuoteSigned = errors.New("quote carries a signed agreement")

	// ErrBlockedByExistingAgreement is returned by the signing flow when the
	// member already holds an agreement covering the same risk.
	ErrBlockedByExistingAgreement = errors.New("blocked by existing agreement")
)
