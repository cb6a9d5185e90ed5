package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSale(t *testing.T) {
	m := &Medication{ID: 7, Name: "Paracetamol", UnitPrice: 10, Quantity: 100}
	soldAt := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	sale := NewSale(m, 30, soldAt)
	require.Equal(t, int64(7), sale.MedicationID)
	require.Equal(t, "Paracetamol", sale.MedicationName)
	require.Equal(t, int64(30), sale.Quantity)
	require.Equal(t, 10.0, sale.UnitPrice)
	require.Equal(t, 300.0, sale.TotalAmount)
	require.Equal(t, soldAt, sale.SoldAt)
}

func TestSalePriceSnapshotIsDecoupled(t *testing.T) {
	m := &Medication{ID: 1, Name: "Ibuprofen", UnitPrice: 8}
	sale := NewSale(m, 2, time.Now())

	m.UnitPrice = 99
	require.Equal(t, 8.0, sale.UnitPrice)
	require.Equal(t, 16.0, sale.TotalAmount)
}

func TestApplyDiscount(t *testing.T) {
	t.Run("ReducesTotal", func(t *testing.T) {
		sale := &Sale{TotalAmount: 200}
		total, err := sale.ApplyDiscount(25)
		require.NoError(t, err)
		require.Equal(t, 150.0, total)
		require.Equal(t, 150.0, sale.TotalAmount)
	})

	t.Run("RejectsOutOfRange", func(t *testing.T) {
		sale := &Sale{TotalAmount: 200}
		_, err := sale.ApplyDiscount(150)
		require.Error(t, err)
		require.Equal(t, 200.0, sale.TotalAmount)

		_, err = sale.ApplyDiscount(-1)
		require.Error(t, err)
	})
}

func TestSaleInPeriod(t *testing.T) {
	sale := &Sale{SoldAt: time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)}
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	require.True(t, sale.InPeriod(from, to))
	require.True(t, sale.InPeriod(sale.SoldAt, sale.SoldAt))
	require.False(t, sale.InPeriod(to.AddDate(0, 0, 1), to.AddDate(0, 1, 0)))
}
