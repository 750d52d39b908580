// Package payment implements the payment gateway client. Initiation opens a
// gateway transaction for an order and amount; confirmation reports the
// transaction outcome, normalized into the domain result variants.
package payment

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	domain "github.com/widyatama/vesti-checkout/internal/domain/payment"
)

// Config holds the gateway connection settings.
type Config struct {
	BaseURL   string
	ServerKey string
	Timeout   time.Duration
}

var _ domain.Gateway = (*Client)(nil)

// Client calls the payment gateway over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	key     string
}

// NewClient creates a payment gateway client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: cfg.BaseURL,
		key:     cfg.ServerKey,
	}
}

// Initiate opens a transaction for the order and returns its token.
func (c *Client) Initiate(ctx context.Context, orderID string, amount decimal.Decimal) (string, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("order_id", func(e *jx.Encoder) { e.Str(orderID) })
		e.Field("gross_amount", func(e *jx.Encoder) { e.Num(jx.Num(amount.String())) })
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transactions", bytes.NewReader(e.Bytes()))
	if err != nil {
		return "", errors.Wrap(err, "build initiate request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.key, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "initiate request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", errors.Errorf("initiate request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read initiate response")
	}

	token, err := decodeToken(body)
	if err != nil {
		return "", errors.Wrap(err, "decode initiate response")
	}
	return token, nil
}

// Confirm reports the outcome for a previously issued token.
func (c *Client) Confirm(ctx context.Context, token string) (domain.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/transactions/"+token+"/status", nil)
	if err != nil {
		return domain.Result{}, errors.Wrap(err, "build confirm request")
	}
	req.SetBasicAuth(c.key, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Result{}, errors.Wrap(err, "confirm request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Result{}, errors.Errorf("confirm request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Result{}, errors.Wrap(err, "read confirm response")
	}

	result, err := decodeResult(token, body)
	if err != nil {
		return domain.Result{}, errors.Wrap(err, "decode confirm response")
	}
	return result, nil
}

func decodeToken(data []byte) (string, error) {
	var token string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "token" {
			return d.Skip()
		}
		v, err := d.Str()
		token = v
		return err
	}); err != nil {
		return "", err
	}
	if token == "" {
		return "", errors.New("gateway returned no token")
	}
	return token, nil
}

func decodeResult(token string, data []byte) (domain.Result, error) {
	var (
		status  string
		message string
	)
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "transaction_status":
			status, err = d.Str()
		case "status_message":
			message, err = d.Str()
		default:
			return d.Skip()
		}
		return err
	}); err != nil {
		return domain.Result{}, err
	}

	return domain.Result{
		Token:   token,
		Status:  mapStatus(status),
		Message: message,
	}, nil
}

// mapStatus normalizes gateway transaction statuses into the four domain
// variants.
func mapStatus(s string) domain.Status {
	switch s {
	case "settlement", "capture", "success":
		return domain.StatusSuccess
	case "pending", "authorize":
		return domain.StatusPending
	case "cancel", "expire":
		return domain.StatusCancel
	default:
		return domain.StatusError
	}
}
