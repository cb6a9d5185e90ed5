package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmatrack/m/domain"
)

// Store is the SQLite-backed row store for medications, sales, suppliers and
// users. Individual calls are serialized by the single-connection pool; it
// offers no cross-call transaction guarantees to its callers.
type Store struct {
	db *sqlx.DB
}

// New constructs a Store over an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func storeErr(op string, err error) *domain.StoreError {
	return &domain.StoreError{Op: op, Err: err}
}

// Medications

func (s *Store) LoadAllMedications() ([]domain.Medication, error) {
	var items []domain.Medication
	err := s.db.Select(&items, `SELECT id, name, category, unit_price, quantity, expiration_date, supplier_id
        FROM medications ORDER BY name`)
	if err != nil {
		return nil, storeErr("load medications", err)
	}
	return items, nil
}

func (s *Store) LoadMedicationByID(id int64) (*domain.Medication, error) {
	var m domain.Medication
	err := s.db.Get(&m, `SELECT id, name, category, unit_price, quantity, expiration_date, supplier_id
        FROM medications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("load medication", err)
	}
	return &m, nil
}

func (s *Store) InsertMedication(m *domain.Medication) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO medications (name, category, unit_price, quantity, expiration_date, supplier_id)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		m.Name, m.Category, m.UnitPrice, m.Quantity, m.ExpirationDate, m.SupplierID)
	if err != nil {
		return 0, storeErr("insert medication", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("insert medication", err)
	}
	return id, nil
}

func (s *Store) UpdateMedication(m *domain.Medication) error {
	_, err := s.db.Exec(`UPDATE medications SET name = $1, category = $2, unit_price = $3, quantity = $4,
        expiration_date = $5, supplier_id = $6 WHERE id = $7`,
		m.Name, m.Category, m.UnitPrice, m.Quantity, m.ExpirationDate, m.SupplierID, m.ID)
	if err != nil {
		return storeErr("update medication", err)
	}
	return nil
}

func (s *Store) DeleteMedication(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM medications WHERE id = $1`, id); err != nil {
		return storeErr("delete medication", err)
	}
	return nil
}

// Sales

func (s *Store) LoadAllSales() ([]domain.Sale, error) {
	var sales []domain.Sale
	err := s.db.Select(&sales, `SELECT id, medication_id, medication_name, quantity, unit_price, total_amount, sold_at, customer, notes
        FROM sales ORDER BY sold_at DESC`)
	if err != nil {
		return nil, storeErr("load sales", err)
	}
	return sales, nil
}

func (s *Store) LoadSaleByID(id int64) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.Get(&sale, `SELECT id, medication_id, medication_name, quantity, unit_price, total_amount, sold_at, customer, notes
        FROM sales WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("load sale", err)
	}
	return &sale, nil
}

func (s *Store) InsertSale(sale *domain.Sale) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO sales (medication_id, medication_name, quantity, unit_price, total_amount, sold_at, customer, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sale.MedicationID, sale.MedicationName, sale.Quantity, sale.UnitPrice, sale.TotalAmount, sale.SoldAt, sale.Customer, sale.Notes)
	if err != nil {
		return 0, storeErr("insert sale", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("insert sale", err)
	}
	return id, nil
}

func (s *Store) DeleteSale(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM sales WHERE id = $1`, id); err != nil {
		return storeErr("delete sale", err)
	}
	return nil
}

func (s *Store) LoadSalesByDate(date time.Time) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := s.db.Select(&sales, `SELECT id, medication_id, medication_name, quantity, unit_price, total_amount, sold_at, customer, notes
        FROM sales WHERE DATE(sold_at) = DATE($1) ORDER BY sold_at DESC`, date)
	if err != nil {
		return nil, storeErr("load sales by date", err)
	}
	return sales, nil
}

func (s *Store) LoadSalesBetween(from, to time.Time) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := s.db.Select(&sales, `SELECT id, medication_id, medication_name, quantity, unit_price, total_amount, sold_at, customer, notes
        FROM sales WHERE DATE(sold_at) BETWEEN DATE($1) AND DATE($2) ORDER BY sold_at DESC`, from, to)
	if err != nil {
		return nil, storeErr("load sales between", err)
	}
	return sales, nil
}

func (s *Store) LoadSalesByMedication(medicationID int64) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := s.db.Select(&sales, `SELECT id, medication_id, medication_name, quantity, unit_price, total_amount, sold_at, customer, notes
        FROM sales WHERE medication_id = $1 ORDER BY sold_at DESC`, medicationID)
	if err != nil {
		return nil, storeErr("load sales by medication", err)
	}
	return sales, nil
}

// RevenueBetween sums total_amount for the period, inclusive on both ends.
func (s *Store) RevenueBetween(from, to time.Time) (float64, error) {
	var revenue float64
	err := s.db.Get(&revenue, `SELECT COALESCE(SUM(total_amount), 0) FROM sales
        WHERE DATE(sold_at) BETWEEN DATE($1) AND DATE($2)`, from, to)
	if err != nil {
		return 0, storeErr("sum revenue", err)
	}
	return revenue, nil
}

// Suppliers

func (s *Store) LoadAllSuppliers() ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	err := s.db.Select(&suppliers, `SELECT id, name, COALESCE(address, '') AS address, COALESCE(phone, '') AS phone,
        COALESCE(email, '') AS email, COALESCE(contact_person, '') AS contact_person, COALESCE(notes, '') AS notes
        FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, storeErr("load suppliers", err)
	}
	return suppliers, nil
}

func (s *Store) LoadSupplierByID(id int64) (*domain.Supplier, error) {
	var sup domain.Supplier
	err := s.db.Get(&sup, `SELECT id, name, COALESCE(address, '') AS address, COALESCE(phone, '') AS phone,
        COALESCE(email, '') AS email, COALESCE(contact_person, '') AS contact_person, COALESCE(notes, '') AS notes
        FROM suppliers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("load supplier", err)
	}
	return &sup, nil
}

func (s *Store) InsertSupplier(sup *domain.Supplier) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO suppliers (name, address, phone, email, contact_person, notes)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		sup.Name, sup.Address, sup.Phone, sup.Email, sup.ContactPerson, sup.Notes)
	if err != nil {
		return 0, storeErr("insert supplier", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("insert supplier", err)
	}
	return id, nil
}

func (s *Store) UpdateSupplier(sup *domain.Supplier) error {
	_, err := s.db.Exec(`UPDATE suppliers SET name = $1, address = $2, phone = $3, email = $4,
        contact_person = $5, notes = $6 WHERE id = $7`,
		sup.Name, sup.Address, sup.Phone, sup.Email, sup.ContactPerson, sup.Notes, sup.ID)
	if err != nil {
		return storeErr("update supplier", err)
	}
	return nil
}

// DeleteSupplier removes the supplier; the schema clears supplier_id on any
// medications that referenced it.
func (s *Store) DeleteSupplier(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM suppliers WHERE id = $1`, id); err != nil {
		return storeErr("delete supplier", err)
	}
	return nil
}

func (s *Store) SearchSuppliersByName(query string) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	err := s.db.Select(&suppliers, `SELECT id, name, COALESCE(address, '') AS address, COALESCE(phone, '') AS phone,
        COALESCE(email, '') AS email, COALESCE(contact_person, '') AS contact_person, COALESCE(notes, '') AS notes
        FROM suppliers WHERE name LIKE $1 ORDER BY name`, "%"+query+"%")
	if err != nil {
		return nil, storeErr("search suppliers", err)
	}
	return suppliers, nil
}

// Users

func (s *Store) CreateUser(u *domain.User) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO users (username, email, password, role) VALUES ($1, $2, $3, $4)`,
		u.Username, u.Email, u.Password, u.Role)
	if err != nil {
		return 0, storeErr("create user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create user", err)
	}
	return id, nil
}

func (s *Store) LoadUserByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := s.db.Get(&u, `SELECT id, username, email, password, role FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("load user", err)
	}
	return &u, nil
}
