package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/database"
	"pharmatrack/m/internal/migrations"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)
	return New(db)
}

func insertSupplier(t *testing.T, s *Store) int64 {
	t.Helper()
	id, err := s.InsertSupplier(&domain.Supplier{
		Name:          "Pharma Dist Co",
		Address:       "12 Harbor Rd",
		Phone:         "555-0101",
		Email:         "orders@pharmadist.example",
		ContactPerson: "R. Vance",
	})
	require.NoError(t, err)
	return id
}

func insertMedication(t *testing.T, s *Store, supplierID int64) int64 {
	t.Helper()
	id, err := s.InsertMedication(&domain.Medication{
		Name:           "Amoxicillin 250mg",
		Category:       "Antibiotic",
		UnitPrice:      7.25,
		Quantity:       40,
		ExpirationDate: time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC),
		SupplierID:     &supplierID,
	})
	require.NoError(t, err)
	return id
}

func TestMedicationCRUD(t *testing.T) {
	s := newTestStore(t)
	supplierID := insertSupplier(t, s)
	id := insertMedication(t, s, supplierID)

	m, err := s.LoadMedicationByID(id)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "Amoxicillin 250mg", m.Name)
	require.Equal(t, int64(40), m.Quantity)
	require.Equal(t, "2027-05-01", m.ExpirationDate.Format("2006-01-02"))
	require.NotNil(t, m.SupplierID)
	require.Equal(t, supplierID, *m.SupplierID)

	m.Quantity = 35
	m.UnitPrice = 8
	require.NoError(t, s.UpdateMedication(m))

	updated, err := s.LoadMedicationByID(id)
	require.NoError(t, err)
	require.Equal(t, int64(35), updated.Quantity)
	require.Equal(t, 8.0, updated.UnitPrice)

	all, err := s.LoadAllMedications()
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, s.DeleteMedication(id))
	gone, err := s.LoadMedicationByID(id)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestLoadMedicationByIDAbsent(t *testing.T) {
	s := newTestStore(t)
	m, err := s.LoadMedicationByID(999)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestDeleteSupplierClearsReference(t *testing.T) {
	s := newTestStore(t)
	supplierID := insertSupplier(t, s)
	medID := insertMedication(t, s, supplierID)

	require.NoError(t, s.DeleteSupplier(supplierID))

	m, err := s.LoadMedicationByID(medID)
	require.NoError(t, err)
	require.NotNil(t, m, "deleting a supplier must not delete its medications")
	require.Nil(t, m.SupplierID)
}

func TestDeleteMedicationCascadesSales(t *testing.T) {
	s := newTestStore(t)
	supplierID := insertSupplier(t, s)
	medID := insertMedication(t, s, supplierID)

	saleID, err := s.InsertSale(&domain.Sale{
		MedicationID:   medID,
		MedicationName: "Amoxicillin 250mg",
		Quantity:       2,
		UnitPrice:      7.25,
		TotalAmount:    14.5,
		SoldAt:         time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteMedication(medID))

	sale, err := s.LoadSaleByID(saleID)
	require.NoError(t, err)
	require.Nil(t, sale)
}

func TestSaleQueries(t *testing.T) {
	s := newTestStore(t)
	supplierID := insertSupplier(t, s)
	medID := insertMedication(t, s, supplierID)

	addSale := func(soldAt time.Time, quantity int64, total float64) int64 {
		t.Helper()
		id, err := s.InsertSale(&domain.Sale{
			MedicationID:   medID,
			MedicationName: "Amoxicillin 250mg",
			Quantity:       quantity,
			UnitPrice:      total / float64(quantity),
			TotalAmount:    total,
			SoldAt:         soldAt,
		})
		require.NoError(t, err)
		return id
	}

	march10 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	march15 := time.Date(2026, 3, 15, 16, 30, 0, 0, time.UTC)
	april2 := time.Date(2026, 4, 2, 11, 0, 0, 0, time.UTC)

	addSale(march10, 2, 14.5)
	addSale(march15, 4, 29.0)
	id3 := addSale(april2, 1, 7.25)

	byDate, err := s.LoadSalesByDate(march10)
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	require.Equal(t, int64(2), byDate[0].Quantity)

	between, err := s.LoadSalesBetween(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, between, 2)

	byMedication, err := s.LoadSalesByMedication(medID)
	require.NoError(t, err)
	require.Len(t, byMedication, 3)

	revenue, err := s.RevenueBetween(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.InDelta(t, 50.75, revenue, 0.001)

	require.NoError(t, s.DeleteSale(id3))
	all, err := s.LoadAllSales()
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestSupplierCRUD(t *testing.T) {
	s := newTestStore(t)
	id := insertSupplier(t, s)

	sup, err := s.LoadSupplierByID(id)
	require.NoError(t, err)
	require.NotNil(t, sup)
	require.Equal(t, "Pharma Dist Co", sup.Name)

	sup.Phone = "555-0199"
	require.NoError(t, s.UpdateSupplier(sup))

	found, err := s.SearchSuppliersByName("dist")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "555-0199", found[0].Phone)

	missing, err := s.LoadSupplierByID(999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateUser(&domain.User{
		Username: "vera",
		Email:    "vera@example.com",
		Password: "hashed",
		Role:     "pharmacist",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	u, err := s.LoadUserByEmail("vera@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "vera", u.Username)

	// Duplicate email violates the unique constraint and surfaces as a StoreError.
	_, err = s.CreateUser(&domain.User{Username: "other", Email: "vera@example.com", Password: "x", Role: "admin"})
	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)

	none, err := s.LoadUserByEmail("nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, none)
}
