package ledger

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmatrack/m/domain"
)

// mockMedicationStore is an in-memory domain.MedicationStore with optional
// failure injection.
type mockMedicationStore struct {
	mu        sync.Mutex
	items     map[int64]domain.Medication
	nextID    int64
	loadErr   error
	updateErr error
}

func newMockMedicationStore() *mockMedicationStore {
	return &mockMedicationStore{items: make(map[int64]domain.Medication), nextID: 1}
}

func (s *mockMedicationStore) LoadAllMedications() ([]domain.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]domain.Medication, 0, len(s.items))
	for _, m := range s.items {
		out = append(out, m)
	}
	return out, nil
}

func (s *mockMedicationStore) LoadMedicationByID(id int64) (*domain.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	m, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *mockMedicationStore) InsertMedication(m *domain.Medication) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	stored := *m
	stored.ID = id
	s.items[id] = stored
	return id, nil
}

func (s *mockMedicationStore) UpdateMedication(m *domain.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.items[m.ID] = *m
	return nil
}

func (s *mockMedicationStore) DeleteMedication(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *mockMedicationStore) quantity(t *testing.T, id int64) int64 {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	require.True(t, ok)
	return m.Quantity
}

func seedMedication(t *testing.T, s *mockMedicationStore, m domain.Medication) int64 {
	t.Helper()
	id, err := s.InsertMedication(&m)
	require.NoError(t, err)
	return id
}

func supplierRef(id int64) *int64 { return &id }

func validMedication(quantity int64) domain.Medication {
	return domain.Medication{
		Name:           "Amoxicillin",
		Category:       "Antibiotic",
		UnitPrice:      12.5,
		Quantity:       quantity,
		ExpirationDate: time.Now().AddDate(1, 0, 0),
		SupplierID:     supplierRef(1),
	}
}

func TestAdjustStock(t *testing.T) {
	t.Run("AppliesDelta", func(t *testing.T) {
		store := newMockMedicationStore()
		id := seedMedication(t, store, validMedication(10))
		l := New(store)

		m, err := l.AdjustStock(id, -4)
		require.NoError(t, err)
		require.Equal(t, int64(6), m.Quantity)
		require.Equal(t, int64(6), store.quantity(t, id))

		m, err = l.AdjustStock(id, 10)
		require.NoError(t, err)
		require.Equal(t, int64(16), m.Quantity)
	})

	t.Run("RejectsNegativeResult", func(t *testing.T) {
		store := newMockMedicationStore()
		id := seedMedication(t, store, validMedication(5))
		l := New(store)

		_, err := l.AdjustStock(id, -6)
		var negative *domain.NegativeStockError
		require.ErrorAs(t, err, &negative)
		require.Equal(t, int64(5), negative.Available)
		require.Equal(t, int64(-6), negative.Delta)
		require.Equal(t, int64(5), store.quantity(t, id), "failed adjustment must not change stored quantity")
	})

	t.Run("DrainToZeroIsAllowed", func(t *testing.T) {
		store := newMockMedicationStore()
		id := seedMedication(t, store, validMedication(5))
		l := New(store)

		m, err := l.AdjustStock(id, -5)
		require.NoError(t, err)
		require.Equal(t, int64(0), m.Quantity)
	})

	t.Run("UnknownMedication", func(t *testing.T) {
		l := New(newMockMedicationStore())
		_, err := l.AdjustStock(42, 1)
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("PropagatesStoreError", func(t *testing.T) {
		store := newMockMedicationStore()
		store.loadErr = &domain.StoreError{Op: "load medication", Err: errors.New("disk gone")}
		l := New(store)

		_, err := l.AdjustStock(1, 1)
		var storeErr *domain.StoreError
		require.ErrorAs(t, err, &storeErr)
	})
}

func TestAdjustStockConcurrent(t *testing.T) {
	store := newMockMedicationStore()
	id := seedMedication(t, store, validMedication(1000))
	l := New(store)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := l.AdjustStock(id, 3)
			require.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := l.AdjustStock(id, -2)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	// 1000 + 50*3 - 50*2, regardless of interleaving.
	require.Equal(t, int64(1050), store.quantity(t, id))
}

func TestValidationOrder(t *testing.T) {
	l := New(newMockMedicationStore())

	firstField := func(m domain.Medication) string {
		t.Helper()
		_, err := l.Add(&m)
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
		return validation.Field
	}

	m := domain.Medication{UnitPrice: -1, Quantity: -1}
	require.Equal(t, "name", firstField(m))

	m.Name = "Aspirin"
	require.Equal(t, "category", firstField(m))

	m.Category = "Analgesic"
	require.Equal(t, "unit_price", firstField(m))

	m.UnitPrice = 3
	require.Equal(t, "quantity", firstField(m))

	m.Quantity = 10
	require.Equal(t, "expiration_date", firstField(m))

	m.ExpirationDate = time.Now().AddDate(1, 0, 0)
	require.Equal(t, "supplier_id", firstField(m))

	m.SupplierID = supplierRef(1)
	_, err := l.Add(&m)
	require.NoError(t, err)
}

func TestRestock(t *testing.T) {
	store := newMockMedicationStore()
	id := seedMedication(t, store, validMedication(2))
	l := New(store)

	t.Run("AddsQuantity", func(t *testing.T) {
		m, err := l.Restock(id, 8)
		require.NoError(t, err)
		require.Equal(t, int64(10), m.Quantity)
	})

	t.Run("RejectsNonPositive", func(t *testing.T) {
		_, err := l.Restock(id, 0)
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
		require.Equal(t, "quantity", validation.Field)
	})
}

func TestExpirationListings(t *testing.T) {
	store := newMockMedicationStore()
	l := New(store)
	now := time.Now()

	expired := validMedication(10)
	expired.Name = "Old Batch"
	expired.ExpirationDate = now.AddDate(0, 0, -1)
	seedMedication(t, store, expired)

	near := validMedication(10)
	near.Name = "Soon"
	near.ExpirationDate = now.AddDate(0, 0, 30)
	seedMedication(t, store, near)

	fresh := validMedication(10)
	fresh.Name = "Fresh"
	fresh.ExpirationDate = now.AddDate(0, 0, 200)
	seedMedication(t, store, fresh)

	expiredList, err := l.Expired(now)
	require.NoError(t, err)
	require.Len(t, expiredList, 1)
	require.Equal(t, "Old Batch", expiredList[0].Name)

	nearList, err := l.NearExpiry(now, 90)
	require.NoError(t, err)
	require.Len(t, nearList, 1)
	require.Equal(t, "Soon", nearList[0].Name)

	// The two alert sets never share an item.
	for _, e := range expiredList {
		for _, n := range nearList {
			require.NotEqual(t, e.ID, n.ID)
		}
	}
}

func TestStockListings(t *testing.T) {
	store := newMockMedicationStore()
	l := New(store)

	empty := validMedication(0)
	empty.Name = "Empty"
	seedMedication(t, store, empty)

	low := validMedication(3)
	low.Name = "Low"
	seedMedication(t, store, low)

	full := validMedication(500)
	full.Name = "Full"
	seedMedication(t, store, full)

	lowList, err := l.LowStock(5)
	require.NoError(t, err)
	require.Len(t, lowList, 2)

	outList, err := l.OutOfStock()
	require.NoError(t, err)
	require.Len(t, outList, 1)
	require.Equal(t, "Empty", outList[0].Name)

	value, err := l.TotalStockValue()
	require.NoError(t, err)
	require.Equal(t, 503*12.5, value)

	total, err := l.TotalQuantity()
	require.NoError(t, err)
	require.Equal(t, int64(503), total)
}

func TestSearch(t *testing.T) {
	store := newMockMedicationStore()
	l := New(store)

	a := validMedication(1)
	a.Name = "Paracetamol 500mg"
	a.Category = "Analgesic"
	seedMedication(t, store, a)

	b := validMedication(1)
	b.Name = "Ibuprofen"
	b.Category = "NSAID"
	b.SupplierID = supplierRef(2)
	seedMedication(t, store, b)

	byName, err := l.SearchByName("paraceta")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byCategory, err := l.ByCategory("nsaid")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	require.Equal(t, "Ibuprofen", byCategory[0].Name)

	bySupplier, err := l.BySupplier(2)
	require.NoError(t, err)
	require.Len(t, bySupplier, 1)
	require.Equal(t, "Ibuprofen", bySupplier[0].Name)
}

func TestCheckAvailability(t *testing.T) {
	store := newMockMedicationStore()
	l := New(store)
	now := time.Now()

	id := seedMedication(t, store, validMedication(10))

	ok, err := l.CheckAvailability(id, 10, now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.CheckAvailability(id, 11, now)
	require.NoError(t, err)
	require.False(t, ok)

	expired := validMedication(10)
	expired.ExpirationDate = now.AddDate(0, 0, -1)
	expiredID := seedMedication(t, store, expired)

	ok, err = l.CheckAvailability(expiredID, 1, now)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = l.CheckAvailability(999, 1, now)
	require.NoError(t, err)
	require.False(t, ok)
}
