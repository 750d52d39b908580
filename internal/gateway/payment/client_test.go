package payment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/widyatama/vesti-checkout/internal/domain/payment"
)

func TestInitiate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/transactions", r.URL.Path)
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "server-key", user)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"order_id":"ord-1","gross_amount":285000}`, string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"tok-abc"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, ServerKey: "server-key"})
	token, err := c.Initiate(context.Background(), "ord-1", decimal.NewFromInt(285000))
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestInitiate_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Initiate(context.Background(), "ord-1", decimal.NewFromInt(1000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}

func TestConfirm_StatusMapping(t *testing.T) {
	tests := []struct {
		gatewayStatus string
		want          domain.Status
		confirmed     bool
	}{
		{gatewayStatus: "settlement", want: domain.StatusSuccess, confirmed: true},
		{gatewayStatus: "capture", want: domain.StatusSuccess, confirmed: true},
		{gatewayStatus: "pending", want: domain.StatusPending, confirmed: true},
		{gatewayStatus: "cancel", want: domain.StatusCancel, confirmed: false},
		{gatewayStatus: "expire", want: domain.StatusCancel, confirmed: false},
		{gatewayStatus: "deny", want: domain.StatusError, confirmed: false},
	}

	for _, tt := range tests {
		t.Run(tt.gatewayStatus, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/transactions/tok-abc/status", r.URL.Path)
				_, _ = w.Write([]byte(`{"transaction_status":"` + tt.gatewayStatus + `","status_message":"ok"}`))
			}))
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL})
			result, err := c.Confirm(context.Background(), "tok-abc")
			require.NoError(t, err)

			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, tt.confirmed, result.Confirmed())
			assert.Equal(t, "tok-abc", result.Token)
		})
	}
}

func TestConfirm_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Confirm(context.Background(), "tok-abc")
	require.Error(t, err)
}
