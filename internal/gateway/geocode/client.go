// Package geocode implements the Destination Lookup API client: free-text
// queries in, concrete destination candidates out. Only a destination picked
// from these results may be used for rate quotes.
package geocode

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/widyatama/vesti-checkout/internal/domain/shipping"
)

// Config holds the lookup API connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

var _ shipping.Lookup = (*Client)(nil)

// Client calls the destination lookup API over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a destination lookup client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
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

// Search returns concrete destination candidates for a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]shipping.Destination, error) {
	q := url.Values{}
	q.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/destinations?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build lookup request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "lookup request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("lookup request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read lookup response")
	}

	dests, err := decodeDestinations(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode lookup response")
	}
	return dests, nil
}

// decodeDestinations parses {"destinations":[{id,subdistrict,district,city,province,postal_code}]}.
func decodeDestinations(data []byte) ([]shipping.Destination, error) {
	var dests []shipping.Destination
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "destinations" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			var dest shipping.Destination
			if err := d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "id":
					dest.ID, err = d.Str()
				case "subdistrict":
					dest.Subdistrict, err = d.Str()
				case "district":
					dest.District, err = d.Str()
				case "city":
					dest.City, err = d.Str()
				case "province":
					dest.Province, err = d.Str()
				case "postal_code":
					dest.PostalCode, err = d.Str()
				default:
					return d.Skip()
				}
				return err
			}); err != nil {
				return err
			}
			// Entries without an id are not concrete destinations.
			if dest.Resolved() {
				dests = append(dests, dest)
			}
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return dests, nil
}
