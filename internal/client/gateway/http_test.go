package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListLoans_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/loans", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "",
			"data": []map[string]any{
				{"id": 10, "plafond_id": 7, "amount": 5_000_000, "tenor": 6, "status": "SUBMITTED", "created_at": "2026-08-01T10:00:00Z"},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	got, err := c.ListLoans(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].ID)
	assert.Equal(t, int64(5_000_000), got[0].Amount)
}

func TestGetDisbursement_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/disbursements/42", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": 42, "credit_line_id": 7, "amount": 600_000, "status": "PROCESSING", "created_at": "2026-08-01T10:00:00Z"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	d, err := c.GetDisbursement(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), d.ID)
	assert.Equal(t, int64(7), d.CreditLineID)
}

func TestSubmitLoan_SendsIdempotencyKey(t *testing.T) {
	var gotKey string
	var gotBody models.SubmitLoanPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(common.IdempotencyKeyHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": 42, "plafond_id": 7, "amount": 5_000_000, "tenor": 6, "status": "SUBMITTED", "created_at": "2026-08-01T10:00:00Z"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	l, err := c.SubmitLoan(context.Background(),
		models.SubmitLoanPayload{PlafondID: 7, Amount: 5_000_000, Tenor: 6}, "local-123")
	require.NoError(t, err)
	assert.Equal(t, int64(42), l.ID)
	assert.Equal(t, "local-123", gotKey)
	assert.Equal(t, int64(7), gotBody.PlafondID)
}

func TestEnvelopeFailure_IsServerRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "tenor not offered for this product",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.SubmitLoan(context.Background(), models.SubmitLoanPayload{PlafondID: 7, Amount: 1, Tenor: 5}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrServerRejected)
	assert.Contains(t, err.Error(), "tenor not offered")
	assert.False(t, errors.Is(err, common.ErrConnectivity))
}

func TestBadRequest_IsServerRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "amount out of bounds"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.ListLoans(context.Background())
	assert.ErrorIs(t, err, common.ErrServerRejected)
}

func TestServerError_IsConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrConnectivity)
}

func TestUnreachable_IsConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	c := NewHTTPClient(srv.URL, time.Second)
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrConnectivity)
}

func TestTimeout_IsConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 20*time.Millisecond)
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrConnectivity)
}
