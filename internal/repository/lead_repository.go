package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var leadColumns = []string{
	"id", "name", "email", "phone", "company_name", "title", "status", "source", "score",
	"assigned_to", "notes", "converted_contact_id", "converted_at", "created_at", "updated_at",
}

var leadSort = sortable{
	columns: map[string]string{
		"created_at":   "created_at",
		"updated_at":   "updated_at",
		"name":         "name",
		"company_name": "company_name",
		"status":       "status",
		"source":       "source",
		"score":        "score",
	},
	fallback: "created_at",
	tiebreak: "id",
}

// LeadRepository implements domain.LeadRepository
type LeadRepository struct {
	store
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *sqlx.DB, logger *slog.Logger) *LeadRepository {
	return &LeadRepository{store: newStore(db, logger)}
}

// List returns one page of leads and the total match count
func (r *LeadRepository) List(ctx context.Context, f domain.LeadFilter) ([]domain.Lead, int, error) {
	w := &where{}
	w.search(f.Search, "name", "email", "company_name")
	w.eq("status", f.Status)
	w.eq("source", f.Source)
	w.eq("assigned_to", f.AssignedTo)

	total, err := r.count(ctx, "SELECT COUNT(*) FROM leads"+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	query := "SELECT " + columns("", leadColumns) + " FROM leads" + w.String() +
		leadSort.orderBy(f.ListParams) + " LIMIT ? OFFSET ?"
	leads := []domain.Lead{}
	if err := r.selectAll(ctx, &leads, query, append(w.args, f.Limit, f.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, total, nil
}

// Get retrieves a lead by ID
func (r *LeadRepository) Get(ctx context.Context, id string) (*domain.Lead, error) {
	l := &domain.Lead{}
	query := "SELECT " + columns("", leadColumns) + " FROM leads WHERE id = ?"
	if err := r.getOne(ctx, "Lead", l, query, id); err != nil {
		return nil, err
	}
	return l, nil
}

// Create inserts a lead
func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	query := "INSERT INTO leads (" + columns("", leadColumns) + ") VALUES (" + namedValues(leadColumns) + ")"
	if _, err := r.namedExec(ctx, query, l); err != nil {
		r.logger.Error("failed to create lead",
			slog.String("name", l.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of a lead
func (r *LeadRepository) Update(ctx context.Context, l *domain.Lead) error {
	res, err := r.namedExec(ctx, "UPDATE leads SET "+namedSet(leadColumns)+" WHERE id = :id", l)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return mustAffect(res, "Lead")
}

// Delete removes a lead and detaches its activities
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.exec(ctx, "UPDATE activities SET lead_id = NULL WHERE lead_id = ?", id); err != nil {
		return fmt.Errorf("failed to detach lead activities: %w", err)
	}
	res, err := r.exec(ctx, "DELETE FROM leads WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return mustAffect(res, "Lead")
}
