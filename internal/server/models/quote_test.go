package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_CustomerFacing(t *testing.T) {
	assert.True(t, ChannelApp.CustomerFacing())
	assert.True(t, ChannelWeb.CustomerFacing())
	assert.True(t, ChannelCrossSell.CustomerFacing())
	assert.False(t, ChannelBackOffice.CustomerFacing())
	assert.False(t, ChannelSelfChange.CustomerFacing())
}

func TestPrice_Equal_CurrencyMatters(t *testing.T) {
	assert.True(t, Price{AmountMinor: 9900, Currency: "SEK"}.Equal(Price{AmountMinor: 9900, Currency: "SEK"}))
	assert.False(t, Price{AmountMinor: 9900, Currency: "SEK"}.Equal(Price{AmountMinor: 9900, Currency: "NOK"}))
	assert.False(t, Price{AmountMinor: 9900, Currency: "SEK"}.Equal(Price{AmountMinor: 9800, Currency: "SEK"}))
}

func TestQuoteRevision_Signed_RequiresAgreement(t *testing.T) {
	r := &QuoteRevision{State: StateSigned}
	assert.False(t, r.Signed(), "SIGNED state without an agreement id is not signed")

	agreement := "agr-1"
	r.AgreementID = &agreement
	assert.True(t, r.Signed())

	r.State = StateQuoted
	assert.False(t, r.Signed())
}

func TestQuoteRevision_Clone_IsDeep(t *testing.T) {
	ssn := "199001011234"
	agreement := "agr-1"
	priceFrom := uuid.New()
	orig := &QuoteRevision{
		ID:        uuid.New(),
		MasterID:  uuid.New(),
		Sequence:  3,
		CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		State:     StateQuoted,
		Data: ProductData{
			Variant: VariantSwedishApartment,
			SwedishApartment: &SwedishApartmentData{
				SSN:     &ssn,
				Street:  "Kungsgatan 1",
				ZipCode: "11122",
				SubType: ApartmentBRF,
			},
		},
		Price:              &Price{AmountMinor: 9900, Currency: "SEK"},
		PriceFrom:          &priceFrom,
		LineItems:          []LineItem{{Type: "PREMIUM", AmountMinor: 9900}},
		BreachedGuidelines: []BreachCode{},
		AgreementID:        &agreement,
	}

	c := orig.Clone()
	c.Price.AmountMinor = 100
	c.LineItems[0].AmountMinor = 100
	c.Data.SwedishApartment.Street = "Other 2"
	*c.AgreementID = "agr-2"

	assert.Equal(t, int64(9900), orig.Price.AmountMinor)
	assert.Equal(t, int64(9900), orig.LineItems[0].AmountMinor)
	assert.Equal(t, "Kungsgatan 1", orig.Data.SwedishApartment.Street)
	assert.Equal(t, "agr-1", *orig.AgreementID)
	require.NotNil(t, c.PriceFrom)
	assert.Equal(t, priceFrom, *c.PriceFrom)
}
