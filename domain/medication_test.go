package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	return time.Now().AddDate(0, 0, offset)
}

func TestMedicationExpiry(t *testing.T) {
	now := time.Now()

	t.Run("ExpiredYesterday", func(t *testing.T) {
		m := Medication{ExpirationDate: day(-1)}
		require.True(t, m.IsExpired(now))
		require.False(t, m.IsNearExpiry(now, 90))
	})

	t.Run("ExpiringTodayIsNotExpired", func(t *testing.T) {
		m := Medication{ExpirationDate: now}
		require.False(t, m.IsExpired(now))
		require.True(t, m.IsNearExpiry(now, 90))
	})

	t.Run("InsideAlertWindow", func(t *testing.T) {
		m := Medication{ExpirationDate: day(30)}
		require.False(t, m.IsExpired(now))
		require.True(t, m.IsNearExpiry(now, 90))
		require.Equal(t, 30, m.DaysUntilExpiry(now))
	})

	t.Run("OnWindowBoundary", func(t *testing.T) {
		// The window is exclusive at the far end: expiring exactly
		// windowDays out is not yet an alert.
		m := Medication{ExpirationDate: day(90)}
		require.False(t, m.IsNearExpiry(now, 90))
		require.True(t, m.IsNearExpiry(now, 91))
	})

	t.Run("ExpiredAndNearExpiryAreExclusive", func(t *testing.T) {
		for offset := -120; offset <= 120; offset++ {
			m := Medication{ExpirationDate: day(offset)}
			expired := m.IsExpired(now)
			near := m.IsNearExpiry(now, 90)
			require.False(t, expired && near, "offset %d classified as both expired and near-expiry", offset)
		}
	})

	t.Run("ExplicitAsOf", func(t *testing.T) {
		m := Medication{ExpirationDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}
		require.False(t, m.IsExpired(time.Date(2026, 6, 1, 23, 0, 0, 0, time.UTC)))
		require.True(t, m.IsExpired(time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)))
	})
}

func TestMedicationStock(t *testing.T) {
	t.Run("LowStock", func(t *testing.T) {
		m := Medication{Quantity: 5}
		require.True(t, m.IsLowStock(5))
		require.True(t, m.IsLowStock(10))
		require.False(t, m.IsLowStock(4))
	})

	t.Run("OutOfStock", func(t *testing.T) {
		require.True(t, (&Medication{Quantity: 0}).IsOutOfStock())
		require.False(t, (&Medication{Quantity: 1}).IsOutOfStock())
	})

	t.Run("Sellable", func(t *testing.T) {
		now := time.Now()
		require.True(t, (&Medication{Quantity: 1, ExpirationDate: day(10)}).Sellable(now))
		require.False(t, (&Medication{Quantity: 0, ExpirationDate: day(10)}).Sellable(now))
		require.False(t, (&Medication{Quantity: 1, ExpirationDate: day(-1)}).Sellable(now))
	})

	t.Run("StockValue", func(t *testing.T) {
		m := Medication{Quantity: 4, UnitPrice: 2.5}
		require.Equal(t, 10.0, m.StockValue())
	})
}
