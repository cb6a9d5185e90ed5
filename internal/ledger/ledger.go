// Package ledger is the single choke point through which medication stock is
// read and mutated. Every stock-changing path in the system goes through
// AdjustStock, so the non-negative quantity invariant holds everywhere.
package ledger

import (
	"strings"
	"sync"
	"time"

	"pharmatrack/m/domain"
)

// Ledger enforces stock and field-level invariants over a medication store.
type Ledger struct {
	store domain.MedicationStore

	// mu serializes the read-modify-write cycle of AdjustStock so two
	// concurrent adjustments of the same medication cannot lose an update.
	mu sync.Mutex
}

// New constructs a Ledger over the given store.
func New(store domain.MedicationStore) *Ledger {
	return &Ledger{store: store}
}

// ListAll returns a full snapshot of the inventory.
func (l *Ledger) ListAll() ([]domain.Medication, error) {
	return l.store.LoadAllMedications()
}

// FindByID returns the medication, or (nil, nil) when absent.
func (l *Ledger) FindByID(id int64) (*domain.Medication, error) {
	return l.store.LoadMedicationByID(id)
}

// SearchByName returns medications whose name contains query, case-insensitively.
func (l *Ledger) SearchByName(query string) ([]domain.Medication, error) {
	return l.filter(func(m *domain.Medication) bool {
		return strings.Contains(strings.ToLower(m.Name), strings.ToLower(query))
	})
}

// ByCategory returns medications in the given category, case-insensitively.
func (l *Ledger) ByCategory(category string) ([]domain.Medication, error) {
	return l.filter(func(m *domain.Medication) bool {
		return strings.EqualFold(m.Category, category)
	})
}

// BySupplier returns medications referencing the given supplier.
func (l *Ledger) BySupplier(supplierID int64) ([]domain.Medication, error) {
	return l.filter(func(m *domain.Medication) bool {
		return m.SupplierID != nil && *m.SupplierID == supplierID
	})
}

// Expired returns medications already expired as of asOf.
func (l *Ledger) Expired(asOf time.Time) ([]domain.Medication, error) {
	return l.filter(func(m *domain.Medication) bool {
		return m.IsExpired(asOf)
	})
}

// NearExpiry returns medications expiring within windowDays of asOf but not
// yet expired. Disjoint from Expired for any asOf.
func (l *Ledger) NearExpiry(asOf time.Time, windowDays int) ([]domain.Medication, error) {
	return l.filter(func(m *domain.Medication) bool {
		return m.IsNearExpiry(asOf, windowDays)
	})
}

// LowStock returns medications at or below the quantity threshold.
func (l *Ledger) LowStock(threshold int64) ([]domain.Medication, error) {
	return l.filter(func(m *domain.Medication) bool {
		return m.IsLowStock(threshold)
	})
}

// OutOfStock returns medications with zero quantity.
func (l *Ledger) OutOfStock() ([]domain.Medication, error) {
	return l.filter(func(m *domain.Medication) bool {
		return m.IsOutOfStock()
	})
}

func (l *Ledger) filter(keep func(*domain.Medication) bool) ([]domain.Medication, error) {
	items, err := l.store.LoadAllMedications()
	if err != nil {
		return nil, err
	}
	matched := make([]domain.Medication, 0, len(items))
	for _, item := range items {
		if keep(&item) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// AdjustStock applies quantity += delta and persists the result. It fails with
// *domain.NegativeStockError and leaves the stored quantity untouched if the
// result would be negative. This is the only path allowed to change quantity.
func (l *Ledger) AdjustStock(id int64, delta int64) (*domain.Medication, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, err := l.store.LoadMedicationByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &domain.ValidationError{Field: "id", Message: "medication not found"}
	}

	next := m.Quantity + delta
	if next < 0 {
		return nil, &domain.NegativeStockError{
			MedicationID:   m.ID,
			MedicationName: m.Name,
			Available:      m.Quantity,
			Delta:          delta,
		}
	}

	m.Quantity = next
	if err := l.store.UpdateMedication(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Restock adds quantity units to the medication. Quantity must be positive.
func (l *Ledger) Restock(id int64, quantity int64) (*domain.Medication, error) {
	if quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Message: "restock quantity must be positive"}
	}
	return l.AdjustStock(id, quantity)
}

// CheckAvailability reports whether the medication exists, is not expired as
// of asOf and has at least quantity units on the shelf.
func (l *Ledger) CheckAvailability(id int64, quantity int64, asOf time.Time) (bool, error) {
	m, err := l.store.LoadMedicationByID(id)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, nil
	}
	return !m.IsExpired(asOf) && m.Quantity >= quantity, nil
}

// Add validates the medication and inserts it, returning the assigned id.
func (l *Ledger) Add(m *domain.Medication) (int64, error) {
	if err := validate(m); err != nil {
		return 0, err
	}
	return l.store.InsertMedication(m)
}

// Update validates the medication and persists it.
func (l *Ledger) Update(m *domain.Medication) error {
	if err := validate(m); err != nil {
		return err
	}
	return l.store.UpdateMedication(m)
}

// Remove deletes the medication. Its sales go with it.
func (l *Ledger) Remove(id int64) error {
	return l.store.DeleteMedication(id)
}

// TotalStockValue sums unit price times quantity over the whole inventory.
func (l *Ledger) TotalStockValue() (float64, error) {
	items, err := l.store.LoadAllMedications()
	if err != nil {
		return 0, err
	}
	var total float64
	for _, item := range items {
		total += item.StockValue()
	}
	return total, nil
}

// TotalQuantity sums the unit counts over the whole inventory.
func (l *Ledger) TotalQuantity() (int64, error) {
	items, err := l.store.LoadAllMedications()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, item := range items {
		total += item.Quantity
	}
	return total, nil
}

// validate checks fields in a fixed order and reports the first violation:
// name, category, price, quantity, expiration date, supplier.
func validate(m *domain.Medication) error {
	if m == nil {
		return &domain.ValidationError{Message: "medication is required"}
	}
	if strings.TrimSpace(m.Name) == "" {
		return &domain.ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(m.Category) == "" {
		return &domain.ValidationError{Field: "category", Message: "category is required"}
	}
	if m.UnitPrice < 0 {
		return &domain.ValidationError{Field: "unit_price", Message: "unit price cannot be negative"}
	}
	if m.Quantity < 0 {
		return &domain.ValidationError{Field: "quantity", Message: "quantity cannot be negative"}
	}
	if m.ExpirationDate.IsZero() {
		return &domain.ValidationError{Field: "expiration_date", Message: "expiration date is required"}
	}
	if m.SupplierID == nil {
		return &domain.ValidationError{Field: "supplier_id", Message: "supplier is required"}
	}
	return nil
}
