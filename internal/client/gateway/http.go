package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/common"
)

// envelope is the uniform response shape of every backend endpoint.
// success=false inside a 2xx response is a server-rejected outcome, not a
// transport failure.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HTTPClient implements Client over HTTP/JSON.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the backend at baseURL. Every call is
// bounded by timeout; an expired timeout classifies as a connectivity
// failure.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// do issues a request and decodes the envelope's data field into T.
func do[T any](ctx context.Context, c *HTTPClient, method, path string, body any, idempotencyKey string) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(common.IdempotencyKeyHeader, idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts, DNS failures and connection resets all land here.
		return zero, fmt.Errorf("%s %s: %v: %w", method, path, err, common.ErrConnectivity)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %v: %w", method, path, err, common.ErrConnectivity)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return zero, fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, common.ErrConnectivity)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("%s %s: invalid envelope: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return zero, &common.ServerRejectedError{Message: msg}
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return zero, nil
	}
	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return zero, fmt.Errorf("%s %s: failed to decode data: %w", method, path, err)
	}
	return data, nil
}

func get[T any](ctx context.Context, c *HTTPClient, path string) (T, error) {
	return do[T](ctx, c, http.MethodGet, path, nil, "")
}

func post[T any](ctx context.Context, c *HTTPClient, path string, body any, idempotencyKey string) (T, error) {
	return do[T](ctx, c, http.MethodPost, path, body, idempotencyKey)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := get[struct{}](ctx, c, "/ping")
	return err
}

func (c *HTTPClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	return get[[]models.Product](ctx, c, "/products")
}

func (c *HTTPClient) ListBranches(ctx context.Context) ([]models.Branch, error) {
	return get[[]models.Branch](ctx, c, "/branches")
}

func (c *HTTPClient) ListCreditLines(ctx context.Context) ([]models.CreditLine, error) {
	return get[[]models.CreditLine](ctx, c, "/credit-lines")
}

func (c *HTTPClient) GetCreditLine(ctx context.Context, id int64) (*models.CreditLine, error) {
	cl, err := get[models.CreditLine](ctx, c, fmt.Sprintf("/credit-lines/%d", id))
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *HTTPClient) ListLoans(ctx context.Context) ([]models.Loan, error) {
	return get[[]models.Loan](ctx, c, "/loans")
}

func (c *HTTPClient) GetLoan(ctx context.Context, id int64) (*models.Loan, error) {
	l, err := get[models.Loan](ctx, c, fmt.Sprintf("/loans/%d", id))
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *HTTPClient) ListDisbursements(ctx context.Context) ([]models.Disbursement, error) {
	return get[[]models.Disbursement](ctx, c, "/disbursements")
}

func (c *HTTPClient) GetDisbursement(ctx context.Context, id int64) (*models.Disbursement, error) {
	d, err := get[models.Disbursement](ctx, c, fmt.Sprintf("/disbursements/%d", id))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) SubmitLoan(ctx context.Context, req models.SubmitLoanPayload, idempotencyKey string) (*models.Loan, error) {
	l, err := post[models.Loan](ctx, c, "/loans", req, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *HTTPClient) ApplyCreditLine(ctx context.Context, req models.ApplyCreditLinePayload, idempotencyKey string) (*models.CreditLine, error) {
	cl, err := post[models.CreditLine](ctx, c, "/credit-lines", req, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *HTTPClient) Disburse(ctx context.Context, req models.DisbursePayload, idempotencyKey string) (*models.Disbursement, error) {
	d, err := post[models.Disbursement](ctx, c, fmt.Sprintf("/credit-lines/%d/disbursements", req.CreditLineID), req, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
