package discount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pastDay  = fixedNow.Add(-24 * time.Hour)
	nextDay  = fixedNow.Add(24 * time.Hour)
)

func activeDiscount(typ Type, value int64) Discount {
	return Discount{
		ID:        "d1",
		Code:      "TESTCODE",
		Type:      typ,
		Value:     decimal.NewFromInt(value),
		Status:    StatusActive,
		StartDate: pastDay,
		EndDate:   nextDay,
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Discount)
		want bool
	}{
		{name: "active within window", mod: func(*Discount) {}, want: true},
		{
			name: "inactive status",
			mod:  func(d *Discount) { d.Status = StatusInactive },
			want: false,
		},
		{
			name: "not yet started",
			mod:  func(d *Discount) { d.StartDate = nextDay; d.EndDate = nextDay.Add(24 * time.Hour) },
			want: false,
		},
		{
			name: "already ended",
			mod:  func(d *Discount) { d.StartDate = pastDay.Add(-24 * time.Hour); d.EndDate = pastDay },
			want: false,
		},
		{
			name: "window boundaries inclusive",
			mod:  func(d *Discount) { d.StartDate = fixedNow; d.EndDate = fixedNow },
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := activeDiscount(TypePercentage, 10)
			tt.mod(&d)
			assert.Equal(t, tt.want, d.Eligible(fixedNow))
		})
	}
}

func TestNewSnapshot_ValueBounds(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		value   int64
		wantErr bool
	}{
		{name: "percentage zero", typ: TypePercentage, value: 0},
		{name: "percentage hundred", typ: TypePercentage, value: 100},
		{name: "percentage above hundred", typ: TypePercentage, value: 101, wantErr: true},
		{name: "percentage negative", typ: TypePercentage, value: -1, wantErr: true},
		{name: "fixed zero", typ: TypeFixed, value: 0},
		{name: "fixed positive", typ: TypeFixed, value: 25000},
		{name: "fixed negative", typ: TypeFixed, value: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshot(activeDiscount(tt.typ, tt.value))
			if tt.wantErr {
				var ivErr *InvalidValueError
				require.ErrorAs(t, err, &ivErr)
				assert.Equal(t, "TESTCODE", ivErr.Code)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewSnapshot_UnknownType(t *testing.T) {
	d := activeDiscount(Type("bogus"), 10)
	_, err := NewSnapshot(d)

	var ivErr *InvalidValueError
	require.ErrorAs(t, err, &ivErr)
}

func TestAmountFor(t *testing.T) {
	tests := []struct {
		name     string
		typ      Type
		value    int64
		subtotal int64
		want     int64
	}{
		{name: "ten percent", typ: TypePercentage, value: 10, subtotal: 300000, want: 30000},
		{name: "full percent", typ: TypePercentage, value: 100, subtotal: 300000, want: 300000},
		{name: "zero percent", typ: TypePercentage, value: 0, subtotal: 300000, want: 0},
		{name: "fixed under subtotal", typ: TypeFixed, value: 20000, subtotal: 300000, want: 20000},
		{name: "fixed clamped to subtotal", typ: TypeFixed, value: 100000, subtotal: 50000, want: 50000},
		{name: "fixed exactly subtotal", typ: TypeFixed, value: 50000, subtotal: 50000, want: 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := NewSnapshot(activeDiscount(tt.typ, tt.value))
			require.NoError(t, err)

			got := snap.AmountFor(decimal.NewFromInt(tt.subtotal))
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got),
				"expected %d, got %s", tt.want, got)
		})
	}
}

func TestAmountFor_ZeroSnapshot(t *testing.T) {
	var snap Snapshot
	got := snap.AmountFor(decimal.NewFromInt(300000))
	assert.True(t, decimal.Zero.Equal(got))
}

func TestRevalidate(t *testing.T) {
	snap, err := NewSnapshot(activeDiscount(TypePercentage, 10))
	require.NoError(t, err)

	t.Run("still eligible keeps snapshot", func(t *testing.T) {
		d := activeDiscount(TypePercentage, 10)
		got := snap.Revalidate(&d, fixedNow)
		assert.Equal(t, snap, got)
	})

	t.Run("expired contributes nothing", func(t *testing.T) {
		d := activeDiscount(TypePercentage, 10)
		d.EndDate = pastDay
		got := snap.Revalidate(&d, fixedNow)
		assert.True(t, got.IsZero())
		assert.True(t, decimal.Zero.Equal(got.AmountFor(decimal.NewFromInt(300000))))
	})

	t.Run("deactivated contributes nothing", func(t *testing.T) {
		d := activeDiscount(TypePercentage, 10)
		d.Status = StatusInactive
		got := snap.Revalidate(&d, fixedNow)
		assert.True(t, got.IsZero())
	})

	t.Run("record deleted contributes nothing", func(t *testing.T) {
		got := snap.Revalidate(nil, fixedNow)
		assert.True(t, got.IsZero())
	})

	t.Run("zero snapshot stays zero", func(t *testing.T) {
		d := activeDiscount(TypePercentage, 10)
		var zero Snapshot
		assert.True(t, zero.Revalidate(&d, fixedNow).IsZero())
	})
}
