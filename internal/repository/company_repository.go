package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var companyColumns = []string{
	"id", "name", "domain", "industry", "size", "address", "city", "state",
	"country", "phone", "website", "notes", "created_at", "updated_at",
}

var companySort = sortable{
	columns: map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"name":       "name",
		"industry":   "industry",
		"size":       "size",
		"city":       "city",
	},
	fallback: "created_at",
	tiebreak: "id",
}

// CompanyRepository implements domain.CompanyRepository
type CompanyRepository struct {
	store
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *sqlx.DB, logger *slog.Logger) *CompanyRepository {
	return &CompanyRepository{store: newStore(db, logger)}
}

// List returns one page of companies and the total match count
func (r *CompanyRepository) List(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, int, error) {
	w := &where{}
	w.search(f.Search, "name", "domain", "city")
	w.eq("industry", f.Industry)
	w.eq("size", f.Size)

	total, err := r.count(ctx, "SELECT COUNT(*) FROM companies"+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	query := "SELECT " + columns("", companyColumns) + " FROM companies" + w.String() +
		companySort.orderBy(f.ListParams) + " LIMIT ? OFFSET ?"
	companies := []domain.Company{}
	if err := r.selectAll(ctx, &companies, query, append(w.args, f.Limit, f.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, total, nil
}

// Get retrieves a company by ID
func (r *CompanyRepository) Get(ctx context.Context, id string) (*domain.Company, error) {
	c := &domain.Company{}
	query := "SELECT " + columns("", companyColumns) + " FROM companies WHERE id = ?"
	if err := r.getOne(ctx, "Company", c, query, id); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a company
func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	query := "INSERT INTO companies (" + columns("", companyColumns) + ") VALUES (" + namedValues(companyColumns) + ")"
	if _, err := r.namedExec(ctx, query, c); err != nil {
		r.logger.Error("failed to create company", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of a company
func (r *CompanyRepository) Update(ctx context.Context, c *domain.Company) error {
	res, err := r.namedExec(ctx, "UPDATE companies SET "+namedSet(companyColumns)+" WHERE id = :id", c)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return mustAffect(res, "Company")
}

// Delete removes a company and detaches the contacts, deals and activities that referenced it
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	for _, table := range []string{"contacts", "deals", "activities"} {
		if _, err := r.exec(ctx, "UPDATE "+table+" SET company_id = NULL WHERE company_id = ?", id); err != nil {
			return fmt.Errorf("failed to detach %s from company: %w", table, err)
		}
	}
	res, err := r.exec(ctx, "DELETE FROM companies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return mustAffect(res, "Company")
}
