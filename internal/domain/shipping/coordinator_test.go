package shipping

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRateClient struct {
	options []Option
	err     error
	calls   int
	// onCall runs before returning, with the coordinator visible to the
	// test so it can mutate state mid-flight.
	onCall func()
}

func (m *mockRateClient) FetchOptions(_ context.Context, _ string, _ int, _ string) ([]Option, error) {
	m.calls++
	if m.onCall != nil {
		m.onCall()
	}
	return m.options, m.err
}

func jneOptions() []Option {
	return []Option{
		{Courier: "jne", Service: "REG", Name: "Regular", Cost: decimal.NewFromInt(15000), ETA: "2-3 days"},
		{Courier: "jne", Service: "YES", Name: "Overnight", Cost: decimal.NewFromInt(32000), ETA: "1 day"},
	}
}

func resolvedDestination() Destination {
	return Destination{
		ID:          "5783",
		Subdistrict: "Setiabudi",
		City:        "Jakarta Selatan",
		Province:    "DKI Jakarta",
		PostalCode:  "12910",
	}
}

func TestFetchOptions_RequiresResolvedDestination(t *testing.T) {
	client := &mockRateClient{options: jneOptions()}
	c := NewCoordinator(client)
	c.SetCourier("jne")

	// Free-text entry only: no ID, no request.
	c.SetDestination(Destination{City: "jakarta"})

	_, err := c.FetchOptions(context.Background(), 500)
	require.ErrorIs(t, err, ErrDestinationNotSelected)
	assert.Zero(t, client.calls)
}

func TestFetchOptions_RequiresCourier(t *testing.T) {
	client := &mockRateClient{options: jneOptions()}
	c := NewCoordinator(client)
	c.SetDestination(resolvedDestination())

	_, err := c.FetchOptions(context.Background(), 500)
	require.ErrorIs(t, err, ErrCourierNotSelected)
	assert.Zero(t, client.calls)
}

func TestFetchOptions_Success(t *testing.T) {
	client := &mockRateClient{options: jneOptions()}
	c := NewCoordinator(client)
	c.SetDestination(resolvedDestination())
	c.SetCourier("jne")

	opts, err := c.FetchOptions(context.Background(), 500)
	require.NoError(t, err)
	assert.Len(t, opts, 2)
	assert.Equal(t, opts, c.Options())
}

func TestFetchOptions_FailureKeepsDestination(t *testing.T) {
	client := &mockRateClient{err: errors.New("connection refused")}
	c := NewCoordinator(client)
	c.SetDestination(resolvedDestination())
	c.SetCourier("jne")

	_, err := c.FetchOptions(context.Background(), 500)

	var quErr *QuoteUnavailableError
	require.ErrorAs(t, err, &quErr)
	assert.Equal(t, "jne", quErr.Courier)

	// Retry without re-entering the destination.
	assert.Equal(t, "5783", c.Destination().ID)
	client.err = nil
	client.options = jneOptions()
	_, err = c.FetchOptions(context.Background(), 500)
	require.NoError(t, err)
}

func TestCourierChange_InvalidatesOptionsAndSelection(t *testing.T) {
	client := &mockRateClient{options: jneOptions()}
	c := NewCoordinator(client)
	c.SetDestination(resolvedDestination())
	c.SetCourier("jne")

	_, err := c.FetchOptions(context.Background(), 500)
	require.NoError(t, err)
	_, err = c.Select("jne", "REG")
	require.NoError(t, err)

	c.SetCourier("sicepat")

	assert.Nil(t, c.Options())
	_, ok := c.Selected()
	assert.False(t, ok)

	// Stale options cannot be re-selected either.
	_, err = c.Select("jne", "REG")
	require.ErrorIs(t, err, ErrUnknownOption)
}

func TestCourierChange_SameCourierKeepsOptions(t *testing.T) {
	client := &mockRateClient{options: jneOptions()}
	c := NewCoordinator(client)
	c.SetDestination(resolvedDestination())
	c.SetCourier("jne")

	_, err := c.FetchOptions(context.Background(), 500)
	require.NoError(t, err)

	c.SetCourier("jne")
	assert.Len(t, c.Options(), 2)
}

func TestDestinationChange_InvalidatesOptions(t *testing.T) {
	client := &mockRateClient{options: jneOptions()}
	c := NewCoordinator(client)
	c.SetDestination(resolvedDestination())
	c.SetCourier("jne")

	_, err := c.FetchOptions(context.Background(), 500)
	require.NoError(t, err)

	other := resolvedDestination()
	other.ID = "1204"
	c.SetDestination(other)

	assert.Nil(t, c.Options())
}

func TestFetchOptions_StaleResponseDropped(t *testing.T) {
	c := NewCoordinator(nil)
	client := &mockRateClient{
		options: jneOptions(),
		onCall: func() {
			// Courier switched while the request was in flight.
			c.SetCourier("sicepat")
		},
	}
	c.client = client
	c.SetDestination(resolvedDestination())
	c.SetCourier("jne")

	_, err := c.FetchOptions(context.Background(), 500)
	require.ErrorIs(t, err, ErrStaleQuote)
	assert.Nil(t, c.Options())
}

func TestSelect_LocalOnly(t *testing.T) {
	client := &mockRateClient{options: jneOptions()}
	c := NewCoordinator(client)
	c.SetDestination(resolvedDestination())
	c.SetCourier("jne")

	_, err := c.FetchOptions(context.Background(), 500)
	require.NoError(t, err)
	calls := client.calls

	opt, err := c.Select("jne", "YES")
	require.NoError(t, err)
	assert.Equal(t, "YES", opt.Service)
	assert.Equal(t, calls, client.calls, "selection must not hit the network")

	selected, ok := c.Selected()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(32000).Equal(selected.Cost))
}

func TestOptions_CallerMutationDoesNotLeak(t *testing.T) {
	client := &mockRateClient{options: jneOptions()}
	c := NewCoordinator(client)
	c.SetDestination(resolvedDestination())
	c.SetCourier("jne")

	_, err := c.FetchOptions(context.Background(), 500)
	require.NoError(t, err)

	leaked := c.Options()
	leaked[0].Service = "XXX"
	leaked[0].Cost = decimal.NewFromInt(-1)

	fresh := c.Options()
	assert.Equal(t, "REG", fresh[0].Service)
	assert.True(t, decimal.NewFromInt(15000).Equal(fresh[0].Cost))

	// Selection still resolves against the untouched internal state.
	opt, err := c.Select("jne", "REG")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15000).Equal(opt.Cost))
}

func TestMissingFields(t *testing.T) {
	full := Address{
		FullName:    "Ayu Lestari",
		Address:     "Jl. Kemang Raya 12",
		Subdistrict: "Mampang Prapatan",
		District:    "Mampang",
		City:        "Jakarta Selatan",
		Province:    "DKI Jakarta",
		PostalCode:  "12730",
		Phone:       "+62811234567",
	}
	assert.Empty(t, full.MissingFields())

	partial := full
	partial.Phone = ""
	partial.PostalCode = ""
	assert.Equal(t, []string{"postal_code", "phone"}, partial.MissingFields())

	// District alone is not required.
	noDistrict := full
	noDistrict.District = ""
	assert.Empty(t, noDistrict.MissingFields())

	var empty Address
	assert.Len(t, empty.MissingFields(), 7)
}
