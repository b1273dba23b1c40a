// Package collaborators declares the external services the quote core
// depends on and provides HTTP JSON clients for them. The core only ever
// sees these interfaces; transport details stay here.
package collaborators

import (
	"context"

	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// AgreementState is the lifecycle state of an external agreement.
type AgreementState string

const (
	AgreementPending        AgreementState = "PENDING"
	AgreementActive         AgreementState = "ACTIVE"
	AgreementActiveInFuture AgreementState = "ACTIVE_IN_FUTURE"
	AgreementExpired        AgreementState = "EXPIRED"
	AgreementCancelled      AgreementState = "CANCELLED"
	AgreementTerminated     AgreementState = "TERMINATED"
)

// InForce reports whether an agreement in this state still covers (or will
// cover) the member, which blocks requoting the same risk.
func (s AgreementState) InForce() bool {
	switch s {
	case AgreementPending, AgreementActive, AgreementActiveInFuture:
		return true
	}
	return false
}

// Pricing computes a premium for a product-data payload. It fails with
// common.ErrCannotPrice when the inputs are insufficient to price.
type Pricing interface {
	Price(ctx context.Context, data models.ProductData) (models.Price, []models.LineItem, error)
}

// DebtCheck queries the external debt register for a person. An empty reason
// list means the check passed.
type DebtCheck interface {
	Check(ctx context.Context, ssn string) ([]string, error)
}

// AgreementStatus resolves the current state of an external agreement.
type AgreementStatus interface {
	Status(ctx context.Context, agreementID string) (AgreementState, error)
}
