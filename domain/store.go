package domain

// MedicationStore is the persistence contract the ledger works against.
// Load-by-id returns (nil, nil) when the record is absent; every failure is a
// *StoreError.
type MedicationStore interface {
	LoadAllMedications() ([]Medication, error)
	LoadMedicationByID(id int64) (*Medication, error)
	InsertMedication(m *Medication) (int64, error)
	UpdateMedication(m *Medication) error
	DeleteMedication(id int64) error
}

// SaleStore is the persistence contract the sales recorder works against.
type SaleStore interface {
	LoadAllSales() ([]Sale, error)
	LoadSaleByID(id int64) (*Sale, error)
	InsertSale(s *Sale) (int64, error)
	DeleteSale(id int64) error
}
