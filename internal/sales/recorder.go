// Package sales turns sale requests into a stock debit plus a persisted sale
// record, and provides the compensating cancellation path.
package sales

import (
	"time"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/ledger"
)

// Recorder composes ledger operations into sale-level actions. All stock
// movement goes through the ledger; the recorder only touches sale rows.
type Recorder struct {
	ledger *ledger.Ledger
	sales  domain.SaleStore
}

// New constructs a Recorder.
func New(l *ledger.Ledger, sales domain.SaleStore) *Recorder {
	return &Recorder{ledger: l, sales: sales}
}

// RecordSale sells quantity units of the medication dated saleDate. The expiry
// check always precedes the stock check, so an expired item fails the same way
// no matter how much stock it has. The unit price is captured before the debit.
func (r *Recorder) RecordSale(medicationID int64, quantity int64, saleDate time.Time) (*domain.Sale, error) {
	if quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Message: "quantity must be greater than zero"}
	}
	if saleDate.IsZero() {
		return nil, &domain.ValidationError{Field: "sale_date", Message: "sale date is required"}
	}

	m, err := r.ledger.FindByID(medicationID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &domain.ValidationError{Field: "medication_id", Message: "medication not found"}
	}

	if m.IsExpired(time.Now()) {
		return nil, &domain.ExpiredMedicationError{
			MedicationID:   m.ID,
			MedicationName: m.Name,
			ExpirationDate: m.ExpirationDate,
		}
	}

	if m.Quantity < quantity {
		return nil, &domain.InsufficientStockError{
			MedicationID:   m.ID,
			MedicationName: m.Name,
			Requested:      quantity,
			Available:      m.Quantity,
		}
	}

	sale := domain.NewSale(m, quantity, saleDate)

	if _, err := r.ledger.AdjustStock(medicationID, -quantity); err != nil {
		return nil, err
	}

	// TODO: credit the stock back if the insert fails; today a failed insert
	// leaves the debit in place with no matching sale row.
	id, err := r.sales.InsertSale(sale)
	if err != nil {
		return nil, err
	}
	sale.ID = id
	return sale, nil
}

// CancelSale reverses a recorded sale: the stock credit happens first, then
// the sale row is deleted. The credit is unconditional; restoring units is
// safe even if the medication has expired since the sale.
func (r *Recorder) CancelSale(saleID int64) error {
	sale, err := r.sales.LoadSaleByID(saleID)
	if err != nil {
		return err
	}
	if sale == nil {
		return &domain.ValidationError{Field: "sale_id", Message: "sale not found"}
	}

	if _, err := r.ledger.AdjustStock(sale.MedicationID, sale.Quantity); err != nil {
		return err
	}
	return r.sales.DeleteSale(saleID)
}
