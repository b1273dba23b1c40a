package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/quotecore/internal/common"
	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// The HTTP clients share one pattern: JSON in, JSON out, a per-call timeout
// applied through the http.Client, and a timeout failing only that call.

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func postJSON(ctx context.Context, client *http.Client, url string, in, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// HTTPPricing calls the external pricing service.
type HTTPPricing struct {
	baseURL string
	client  *http.Client
}

func NewHTTPPricing(baseURL string, timeout time.Duration) *HTTPPricing {
	return &HTTPPricing{baseURL: baseURL, client: newHTTPClient(timeout)}
}

type priceRequest struct {
	ProductData models.ProductData `json:"productData"`
}

type priceResponse struct {
	AmountMinor int64             `json:"amountMinor"`
	Currency    string            `json:"currency"`
	LineItems   []models.LineItem `json:"lineItems"`
}

func (c *HTTPPricing) Price(ctx context.Context, data models.ProductData) (models.Price, []models.LineItem, error) {
	var out priceResponse
	status, err := postJSON(ctx, c.client, c.baseURL+"/price", priceRequest{ProductData: data}, &out)
	if err != nil {
		return models.Price{}, nil, fmt.Errorf("pricing call: %w", err)
	}
	switch {
	case status == http.StatusUnprocessableEntity:
		return models.Price{}, nil, fmt.Errorf("pricing rejected input: %w", common.ErrCannotPrice)
	case status >= http.StatusBadRequest:
		return models.Price{}, nil, fmt.Errorf("pricing call: unexpected status %d", status)
	}
	return models.Price{AmountMinor: out.AmountMinor, Currency: out.Currency}, out.LineItems, nil
}

// HTTPDebtCheck calls the external debt register.
type HTTPDebtCheck struct {
	baseURL string
	client  *http.Client
}

func NewHTTPDebtCheck(baseURL string, timeout time.Duration) *HTTPDebtCheck {
	return &HTTPDebtCheck{baseURL: baseURL, client: newHTTPClient(timeout)}
}

type debtCheckResponse struct {
	Reasons []string `json:"reasons"`
}

func (c *HTTPDebtCheck) Check(ctx context.Context, ssn string) ([]string, error) {
	var out debtCheckResponse
	status, err := postJSON(ctx, c.client, c.baseURL+"/debt-check", map[string]string{"ssn": ssn}, &out)
	if err != nil {
		return nil, fmt.Errorf("debt check call: %w", err)
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("debt check call: unexpected status %d", status)
	}
	return out.Reasons, nil
}

// HTTPAgreementStatus resolves agreement states from the agreement service.
type HTTPAgreementStatus struct {
	baseURL string
	client  *http.Client
}

func NewHTTPAgreementStatus(baseURL string, timeout time.Duration) *HTTPAgreementStatus {
	return &HTTPAgreementStatus{baseURL: baseURL, client: newHTTPClient(timeout)}
}

type agreementStatusResponse struct {
	Status AgreementState `json:"status"`
}

func (c *HTTPAgreementStatus) Status(ctx context.Context, agreementID string) (AgreementState, error) {
	var out agreementStatusResponse
	u := c.baseURL + "/agreements/" + url.PathEscape(agreementID) + "/status"
	status, err := getJSON(ctx, c.client, u, &out)
	if err != nil {
		return "", fmt.Errorf("agreement status call: %w", err)
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("agreement %s: %w", agreementID, common.ErrorNotFound)
	}
	if status >= http.StatusBadRequest {
		return "", fmt.Errorf("agreement status call: unexpected status %d", status)
	}
	return out.Status, nil
}
