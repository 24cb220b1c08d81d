package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var contactColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "mobile", "company_id", "title",
	"department", "linkedin_url", "notes", "tags", "created_at", "updated_at",
}

var contactSort = sortable{
	columns: map[string]string{
		"created_at": "c.created_at",
		"updated_at": "c.updated_at",
		"first_name": "c.first_name",
		"last_name":  "c.last_name",
		"email":      "c.email",
	},
	fallback: "created_at",
	tiebreak: "c.id",
}

// ContactRepository implements domain.ContactRepository
type ContactRepository struct {
	store
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *sqlx.DB, logger *slog.Logger) *ContactRepository {
	return &ContactRepository{store: newStore(db, logger)}
}

const contactRowSelect = `SELECT %s, comp.name AS company_name
	FROM contacts c
	LEFT JOIN companies comp ON c.company_id = comp.id`

// List returns one page of contacts joined with their company name
func (r *ContactRepository) List(ctx context.Context, f domain.ContactFilter) ([]domain.ContactRow, int, error) {
	w := &where{}
	w.search(f.Search, "c.first_name", "c.last_name", "c.email")
	w.eq("c.company_id", f.CompanyID)

	total, err := r.count(ctx, "SELECT COUNT(*) FROM contacts c"+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	query := fmt.Sprintf(contactRowSelect, columns("c", contactColumns)) + w.String() +
		contactSort.orderBy(f.ListParams) + " LIMIT ? OFFSET ?"
	rows := []domain.ContactRow{}
	if err := r.selectAll(ctx, &rows, query, append(w.args, f.Limit, f.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	return rows, total, nil
}

// Get retrieves a contact by ID
func (r *ContactRepository) Get(ctx context.Context, id string) (*domain.Contact, error) {
	c := &domain.Contact{}
	query := "SELECT " + columns("", contactColumns) + " FROM contacts WHERE id = ?"
	if err := r.getOne(ctx, "Contact", c, query, id); err != nil {
		return nil, err
	}
	return c, nil
}

// GetRow retrieves a contact joined with its company name
func (r *ContactRepository) GetRow(ctx context.Context, id string) (*domain.ContactRow, error) {
	row := &domain.ContactRow{}
	query := fmt.Sprintf(contactRowSelect, columns("c", contactColumns)) + " WHERE c.id = ?"
	if err := r.getOne(ctx, "Contact", row, query, id); err != nil {
		return nil, err
	}
	return row, nil
}

// ListByCompany returns every contact of a company ordered by first name
func (r *ContactRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Contact, error) {
	contacts := []domain.Contact{}
	query := "SELECT " + columns("", contactColumns) + " FROM contacts WHERE company_id = ? ORDER BY first_name, id"
	if err := r.selectAll(ctx, &contacts, query, companyID); err != nil {
		return nil, fmt.Errorf("failed to list company contacts: %w", err)
	}
	return contacts, nil
}

// Create inserts a contact
func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	query := "INSERT INTO contacts (" + columns("", contactColumns) + ") VALUES (" + namedValues(contactColumns) + ")"
	if _, err := r.namedExec(ctx, query, c); err != nil {
		r.logger.Error("failed to create contact", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of a contact
func (r *ContactRepository) Update(ctx context.Context, c *domain.Contact) error {
	res, err := r.namedExec(ctx, "UPDATE contacts SET "+namedSet(contactColumns)+" WHERE id = :id", c)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return mustAffect(res, "Contact")
}

// Delete removes a contact and detaches deals, activities and converted leads
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	detach := []string{
		"UPDATE deals SET contact_id = NULL WHERE contact_id = ?",
		"UPDATE activities SET contact_id = NULL WHERE contact_id = ?",
		"UPDATE leads SET converted_contact_id = NULL WHERE converted_contact_id = ?",
	}
	for _, stmt := range detach {
		if _, err := r.exec(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to detach contact references: %w", err)
		}
	}
	res, err := r.exec(ctx, "DELETE FROM contacts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return mustAffect(res, "Contact")
}
