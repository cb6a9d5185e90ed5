package domain

import (
	"fmt"
	"time"
)

// ValidationError reports the first malformed or missing input field.
// It never accompanies a state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NegativeStockError means a stock adjustment would have driven quantity below
// zero. The stored quantity is unchanged.
type NegativeStockError struct {
	MedicationID   int64
	MedicationName string
	Available      int64
	Delta          int64
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("stock for %q cannot go negative: %d available, adjustment %d",
		e.MedicationName, e.Available, e.Delta)
}

// InsufficientStockError means a sale asked for more units than are on the
// shelf. The stored quantity is unchanged.
type InsufficientStockError struct {
	MedicationID   int64
	MedicationName string
	Requested      int64
	Available      int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.MedicationName, e.Requested, e.Available)
}

// ExpiredMedicationError means a sale was attempted on an expired medication,
// whatever its stock level.
type ExpiredMedicationError struct {
	MedicationID   int64
	MedicationName string
	ExpirationDate time.Time
}

func (e *ExpiredMedicationError) Error() string {
	return fmt.Sprintf("medication %q expired on %s and cannot be sold",
		e.MedicationName, e.ExpirationDate.Format("2006-01-02"))
}

// StoreError wraps a persistence failure. It is propagated as-is and never
// retried by the business layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
