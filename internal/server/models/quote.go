// Package models contains the persistence-facing domain model of the quote
// core: the immutable master/revision pair, the product-data payloads and
// the archival record produced by retention purges.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel identifies where a quote originated. Back-office channels are not
// customer facing and bypass the requoting heuristics.
type Channel string

const (
	ChannelApp        Channel = "APP"
	ChannelWeb        Channel = "WEB"
	ChannelIOS        Channel = "IOS"
	ChannelAndroid    Channel = "ANDROID"
	ChannelCrossSell  Channel = "CROSS_SELL"
	ChannelBackOffice Channel = "BACK_OFFICE"
	ChannelSelfChange Channel = "SELF_CHANGE"
)

// CustomerFacing reports whether quotes from this channel were initiated by
// the customer directly.
func (c Channel) CustomerFacing() bool {
	switch c {
	case ChannelBackOffice, ChannelSelfChange:
		return false
	}
	return true
}

// QuoteState is the lifecycle state of a single revision.
type QuoteState string

const (
	StateIncomplete QuoteState = "INCOMPLETE"
	StateQuoted     QuoteState = "QUOTED"
	StateSigned     QuoteState = "SIGNED"
	StateExpired    QuoteState = "EXPIRED"
)

// BreachCode is a symbolic reason an underwriting rule rejected a quote.
type BreachCode string

// MasterQuote is the stable identity of a quote across its whole edit
// history. It is written once and never mutated; all state lives on the
// revisions that reference it.
type MasterQuote struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	InitiatedFrom Channel
}

// Price is a monthly premium in minor units (öre, øre) of a currency.
type Price struct {
	AmountMinor int64  `json:"amountMinor"`
	Currency    string `json:"currency"`
}

// Equal compares amount and currency. Prices in different currencies are
// never equal regardless of amount.
func (p Price) Equal(o Price) bool {
	return p.AmountMinor == o.AmountMinor && p.Currency == o.Currency
}

// LineItem is one component of a price breakdown.
type LineItem struct {
	Type        string `json:"type"`
	SubType     string `json:"subType,omitempty"`
	AmountMinor int64  `json:"amountMinor"`
}

// QuoteRevision is one immutable snapshot of a quote. The current state of a
// master quote is always its revision with the highest sequence number.
// Revisions are only ever appended; any "update" reads the latest revision,
// mutates a copy and appends the copy at the next sequence number.
type QuoteRevision struct {
	ID        uuid.UUID
	MasterID  uuid.UUID
	Sequence  int64
	CreatedAt time.Time
	State     QuoteState
	MemberID  string

	Data ProductData

	Price     *Price
	PriceFrom *uuid.UUID // revision that originally computed a reused price
	LineItems []LineItem

	BreachedGuidelines []BreachCode

	PriceOverridden bool
	AgreementID     *string
	ContractID      *string

	ValidTo time.Time
}

// Breached reports whether this revision was rejected by the guideline
// engine. A breached revision never carries a price.
func (r *QuoteRevision) Breached() bool {
	return len(r.BreachedGuidelines) > 0
}

// Signed reports whether this revision carries a signed external agreement.
func (r *QuoteRevision) Signed() bool {
	return r.State == StateSigned && r.AgreementID != nil
}

// Clone returns a deep copy suitable for the read-latest, mutate, append
// cycle. Shared slices and pointers are copied so the original revision
// stays immutable.
func (r *QuoteRevision) Clone() *QuoteRevision {
	c := *r
	c.Data = r.Data.Clone()
	if r.Price != nil {
		p := *r.Price
		c.Price = &p
	}
	if r.PriceFrom != nil {
		id := *r.PriceFrom
		c.PriceFrom = &id
	}
	c.LineItems = append([]LineItem(nil), r.LineItems...)
	c.BreachedGuidelines = append([]BreachCode(nil), r.BreachedGuidelines...)
	if r.AgreementID != nil {
		a := *r.AgreementID
		c.AgreementID = &a
	}
	if r.ContractID != nil {
		cid := *r.ContractID
		c.ContractID = &cid
	}
	return &c
}
