package domain

type Supplier struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	Address       string `db:"address" json:"address"`
	Phone         string `db:"phone" json:"phone"`
	Email         string `db:"email" json:"email"`
	ContactPerson string `db:"contact_person" json:"contact_person"`
	Notes         string `db:"notes" json:"notes,omitempty"`
}
