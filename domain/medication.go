package domain

import "time"

// Medication is a single stock line in the pharmacy inventory. The supplier
// reference is weak: deleting the supplier clears SupplierID, it never deletes
// the medication.
type Medication struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Category       string    `db:"category" json:"category"`
	UnitPrice      float64   `db:"unit_price" json:"unit_price"`
	Quantity       int64     `db:"quantity" json:"quantity"`
	ExpirationDate time.Time `db:"expiration_date" json:"expiration_date"`
	SupplierID     *int64    `db:"supplier_id" json:"supplier_id,omitempty"`
}

// dateOnly strips the time-of-day component so expiry comparisons work on
// calendar dates.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsExpired reports whether the medication expired strictly before asOf.
// An item expiring today is still sellable today.
func (m *Medication) IsExpired(asOf time.Time) bool {
	return dateOnly(m.ExpirationDate).Before(dateOnly(asOf))
}

// IsNearExpiry reports whether the medication expires within windowDays of
// asOf without being expired yet. Near-expiry and expired never overlap.
func (m *Medication) IsNearExpiry(asOf time.Time, windowDays int) bool {
	if m.IsExpired(asOf) {
		return false
	}
	alertDate := dateOnly(asOf).AddDate(0, 0, windowDays)
	return dateOnly(m.ExpirationDate).Before(alertDate)
}

// DaysUntilExpiry returns the number of whole days between asOf and the
// expiration date. Negative for expired items.
func (m *Medication) DaysUntilExpiry(asOf time.Time) int {
	return int(dateOnly(m.ExpirationDate).Sub(dateOnly(asOf)).Hours() / 24)
}

// IsLowStock reports whether quantity is at or below the threshold.
func (m *Medication) IsLowStock(threshold int64) bool {
	return m.Quantity <= threshold
}

// IsOutOfStock reports whether the medication has no sellable units left.
func (m *Medication) IsOutOfStock() bool {
	return m.Quantity == 0
}

// Sellable reports whether the medication can be sold at asOf.
func (m *Medication) Sellable(asOf time.Time) bool {
	return !m.IsExpired(asOf) && m.Quantity > 0
}

// StockValue is the total value of the units currently on the shelf.
func (m *Medication) StockValue() float64 {
	return m.UnitPrice * float64(m.Quantity)
}
