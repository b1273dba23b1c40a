package collaborators

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/quotecore/internal/common"
	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

func TestHTTPPricing_Price(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/price", r.URL.Path)
		var req priceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, models.VariantSwedishApartment, req.ProductData.Variant)

		_ = json.NewEncoder(w).Encode(priceResponse{
			AmountMinor: 12900,
			Currency:    "SEK",
			LineItems:   []models.LineItem{{Type: "PREMIUM", AmountMinor: 12900}},
		})
	}))
	defer srv.Close()

	c := NewHTTPPricing(srv.URL, time.Second)
	data := models.ProductData{
		Variant:          models.VariantSwedishApartment,
		SwedishApartment: &models.SwedishApartmentData{Street: "Kungsgatan 1", ZipCode: "11122"},
	}
	price, items, err := c.Price(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, models.Price{AmountMinor: 12900, Currency: "SEK"}, price)
	assert.Len(t, items, 1)
}

func TestHTTPPricing_InsufficientInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewHTTPPricing(srv.URL, time.Second)
	_, _, err := c.Price(context.Background(), models.ProductData{
		Variant:          models.VariantSwedishApartment,
		SwedishApartment: &models.SwedishApartmentData{},
	})
	require.ErrorIs(t, err, common.ErrCannotPrice)
}

func TestHTTPDebtCheck_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/debt-check", r.URL.Path)
		_ = json.NewEncoder(w).Encode(debtCheckResponse{Reasons: []string{"PAYMENT_DEFAULT"}})
	}))
	defer srv.Close()

	c := NewHTTPDebtCheck(srv.URL, time.Second)
	reasons, err := c.Check(context.Background(), "199001011234")
	require.NoError(t, err)
	assert.Equal(t, []string{"PAYMENT_DEFAULT"}, reasons)
}

func TestHTTPAgreementStatus_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/agreements/agr-1/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(agreementStatusResponse{Status: AgreementActive})
	}))
	defer srv.Close()

	c := NewHTTPAgreementStatus(srv.URL, time.Second)
	state, err := c.Status(context.Background(), "agr-1")
	require.NoError(t, err)
	assert.Equal(t, AgreementActive, state)
	assert.True(t, state.InForce())
}

func TestHTTPAgreementStatus_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPAgreementStatus(srv.URL, time.Second)
	_, err := c.Status(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAgreementState_InForce(t *testing.T) {
	assert.True(t, AgreementPending.InForce())
	assert.True(t, AgreementActiveInFuture.InForce())
	assert.False(t, AgreementExpired.InForce())
	assert.False(t, AgreementCancelled.InForce())
}
