// Package rates implements the Shipping Rate API client. Given a concrete
// destination id, a shipment weight, and a courier it returns the courier's
// quoted services.
package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/widyatama/vesti-checkout/internal/domain/shipping"
)

// Config holds the rate API connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

var _ shipping.RateClient = (*Client)(nil)

// Client calls the rate API over HTTP with traced transport.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a rate API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// FetchOptions requests quotes for the given destination, weight, and
// courier. The request is cancelled with the context; errors are returned
// raw here and wrapped into the checkout taxonomy by the coordinator.
func (c *Client) FetchOptions(ctx context.Context, destinationID string, weightGrams int, courier string) ([]shipping.Option, error) {
	q := url.Values{}
	q.Set("destination", destinationID)
	q.Set("weight", strconv.Itoa(weightGrams))
	q.Set("courier", courier)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/rates?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build rates request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "rates request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("rates request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read rates response")
	}

	opts, err := decodeRates(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode rates response")
	}
	return opts, nil
}

// decodeRates parses {"rates":[{courier,service,name,cost,eta}]}.
func decodeRates(data []byte) ([]shipping.Option, error) {
	var opts []shipping.Option
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "rates" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			opt, err := decodeOption(d)
			if err != nil {
				return err
			}
			opts = append(opts, opt)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return opts, nil
}

func decodeOption(d *jx.Decoder) (shipping.Option, error) {
	var opt shipping.Option
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "courier":
			v, err := d.Str()
			opt.Courier = v
			return err
		case "service":
			v, err := d.Str()
			opt.Service = v
			return err
		case "name":
			v, err := d.Str()
			opt.Name = v
			return err
		case "cost":
			v, err := d.Int64()
			opt.Cost = decimal.NewFromInt(v)
			return err
		case "eta":
			v, err := d.Str()
			opt.ETA = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return shipping.Option{}, err
	}
	if opt.Courier == "" || opt.Service == "" {
		return shipping.Option{}, fmt.Errorf("rate entry missing courier or service")
	}
	return opt, nil
}
