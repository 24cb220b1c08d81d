package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Contact is a person, optionally attached to a company
type Contact struct {
	ID          string  `db:"id" json:"id"`
	FirstName   string  `db:"first_name" json:"first_name" validate:"required"`
	LastName    string  `db:"last_name" json:"last_name"`
	Email       *string `db:"email" json:"email"`
	Phone       *string `db:"phone" json:"phone"`
	Mobile      *string `db:"mobile" json:"mobile"`
	CompanyID   *string `db:"company_id" json:"company_id"`
	Title       *string `db:"title" json:"title"`
	Department  *string `db:"department" json:"department"`
	LinkedinURL *string `db:"linkedin_url" json:"linkedin_url"`
	Notes       *string `db:"notes" json:"notes"`
	Tags        Tags    `db:"tags" json:"tags"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

// ContactRow is a contact joined with its company name
type ContactRow struct {
	Contact
	CompanyName *string `db:"company_name" json:"company_name"`
}

// ContactDetail adds recent activities and deals to a contact row
type ContactDetail struct {
	ContactRow
	Activities []Activity `json:"activities"`
	Deals      []Deal     `json:"deals"`
}

// ContactFilter narrows a contact listing
type ContactFilter struct {
	ListParams
	CompanyID string
}

// Tags is a list of labels persisted as a JSON array in a text column
type Tags []string

// Value implements driver.Valuer
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("tags: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*t = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*t = out
	return nil
}
