package domain

import (
	"fmt"
	"time"
)

// Sale is the persisted record of one sale. It snapshots the medication name
// and unit price at sale time, so later edits to the medication never rewrite
// sales history; only the id links back to the live record.
type Sale struct {
	ID             int64     `db:"id" json:"id"`
	MedicationID   int64     `db:"medication_id" json:"medication_id"`
	MedicationName string    `db:"medication_name" json:"medication_name"`
	Quantity       int64     `db:"quantity" json:"quantity"`
	UnitPrice      float64   `db:"unit_price" json:"unit_price"`
	TotalAmount    float64   `db:"total_amount" json:"total_amount"`
	SoldAt         time.Time `db:"sold_at" json:"sold_at"`
	Customer       string    `db:"customer" json:"customer,omitempty"`
	Notes          string    `db:"notes" json:"notes,omitempty"`
}

// NewSale builds the sale snapshot for quantity units of m. TotalAmount is
// always quantity * unit price; ApplyDiscount is the only sanctioned override.
func NewSale(m *Medication, quantity int64, soldAt time.Time) *Sale {
	return &Sale{
		MedicationID:   m.ID,
		MedicationName: m.Name,
		Quantity:       quantity,
		UnitPrice:      m.UnitPrice,
		TotalAmount:    float64(quantity) * m.UnitPrice,
		SoldAt:         soldAt,
	}
}

// ApplyDiscount reduces the total by percent (0-100) and returns the new total.
func (s *Sale) ApplyDiscount(percent float64) (float64, error) {
	if percent < 0 || percent > 100 {
		return s.TotalAmount, fmt.Errorf("discount percent must be between 0 and 100, got %.2f", percent)
	}
	s.TotalAmount -= s.TotalAmount * (percent / 100)
	return s.TotalAmount, nil
}

// InPeriod reports whether the sale happened between from and to inclusive,
// compared on calendar dates.
func (s *Sale) InPeriod(from, to time.Time) bool {
	day := dateOnly(s.SoldAt)
	return !day.Before(dateOnly(from)) && !day.After(dateOnly(to))
}
