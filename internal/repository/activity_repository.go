package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var activityColumns = []string{
	"id", "type", "subject", "description", "status", "priority", "due_date", "completed_at",
	"duration_minutes", "outcome", "lead_id", "contact_id", "deal_id", "company_id", "user_id",
	"created_at", "updated_at",
}

var activitySort = sortable{
	columns: map[string]string{
		"due_date":   "a.due_date",
		"created_at": "a.created_at",
		"updated_at": "a.updated_at",
		"priority":   "a.priority",
		"status":     "a.status",
		"type":       "a.type",
	},
	fallback: "due_date",
	tiebreak: "a.id",
}

const activityRowSelect = `SELECT %s,
	l.name AS lead_name,
	c.first_name AS contact_first_name, c.last_name AS contact_last_name,
	d.name AS deal_name,
	u.name AS user_name
	FROM activities a
	LEFT JOIN leads l ON a.lead_id = l.id
	LEFT JOIN contacts c ON a.contact_id = c.id
	LEFT JOIN deals d ON a.deal_id = d.id
	LEFT JOIN users u ON a.user_id = u.id`

// ActivityRepository implements domain.ActivityRepository
type ActivityRepository struct {
	store
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sqlx.DB, logger *slog.Logger) *ActivityRepository {
	return &ActivityRepository{store: newStore(db, logger)}
}

func rowSelect() string {
	return fmt.Sprintf(activityRowSelect, columns("a", activityColumns))
}

// List returns one page of activities joined with the names of their links.
// Rows are ordered by the sort key, then newest first.
func (r *ActivityRepository) List(ctx context.Context, f domain.ActivityFilter) ([]domain.ActivityRow, int, error) {
	w := &where{}
	w.search(f.Search, "a.subject", "a.description")
	w.eq("a.type", f.Type)
	w.eq("a.status", f.Status)
	w.eq("a.user_id", f.UserID)
	w.eq("a.lead_id", f.LeadID)
	w.eq("a.contact_id", f.ContactID)
	w.eq("a.deal_id", f.DealID)
	w.eq("a.company_id", f.CompanyID)
	if f.Upcoming {
		w.add("a.status = ? AND a.due_date >= ?", domain.ActivityStatusPending, f.Now)
	}
	if f.Overdue {
		w.add("a.status = ? AND a.due_date < ?", domain.ActivityStatusPending, f.Now)
	}

	total, err := r.count(ctx, "SELECT COUNT(*) FROM activities a"+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	order := activitySort.orderBy(f.ListParams)
	query := rowSelect() + w.String() + order + ", a.created_at DESC LIMIT ? OFFSET ?"
	rows := []domain.ActivityRow{}
	if err := r.selectAll(ctx, &rows, query, append(w.args, f.Limit, f.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return rows, total, nil
}

// Get retrieves an activity by ID
func (r *ActivityRepository) Get(ctx context.Context, id string) (*domain.Activity, error) {
	a := &domain.Activity{}
	query := "SELECT " + columns("", activityColumns) + " FROM activities WHERE id = ?"
	if err := r.getOne(ctx, "Activity", a, query, id); err != nil {
		return nil, err
	}
	return a, nil
}

// GetRow retrieves an activity with the names of its links
func (r *ActivityRepository) GetRow(ctx context.Context, id string) (*domain.ActivityRow, error) {
	row := &domain.ActivityRow{}
	if err := r.getOne(ctx, "Activity", row, rowSelect()+" WHERE a.id = ?", id); err != nil {
		return nil, err
	}
	return row, nil
}

// ListLinked returns the most recent activities attached through link
func (r *ActivityRepository) ListLinked(ctx context.Context, link domain.ActivityLink, id string, limit int) ([]domain.Activity, error) {
	switch link {
	case domain.LinkLead, domain.LinkContact, domain.LinkDeal, domain.LinkCompany:
	default:
		return nil, fmt.Errorf("unknown activity link %q", link)
	}
	activities := []domain.Activity{}
	query := "SELECT " + columns("", activityColumns) + " FROM activities WHERE " + string(link) +
		" = ? ORDER BY created_at DESC, id DESC LIMIT ?"
	if err := r.selectAll(ctx, &activities, query, id, limit); err != nil {
		return nil, fmt.Errorf("failed to list activities by %s: %w", link, err)
	}
	return activities, nil
}

// Recent returns the newest activities
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]domain.ActivityRow, error) {
	rows := []domain.ActivityRow{}
	query := rowSelect() + " ORDER BY a.created_at DESC, a.id DESC LIMIT ?"
	if err := r.selectAll(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent activities: %w", err)
	}
	return rows, nil
}

// Upcoming returns the next pending activities due at or after now
func (r *ActivityRepository) Upcoming(ctx context.Context, now string, limit int) ([]domain.ActivityRow, error) {
	rows := []domain.ActivityRow{}
	query := rowSelect() + " WHERE a.status = ? AND a.due_date >= ? ORDER BY a.due_date ASC, a.id ASC LIMIT ?"
	if err := r.selectAll(ctx, &rows, query, domain.ActivityStatusPending, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list upcoming activities: %w", err)
	}
	return rows, nil
}

// Create inserts an activity
func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	query := "INSERT INTO activities (" + columns("", activityColumns) + ") VALUES (" + namedValues(activityColumns) + ")"
	if _, err := r.namedExec(ctx, query, a); err != nil {
		r.logger.Error("failed to create activity", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of an activity
func (r *ActivityRepository) Update(ctx context.Context, a *domain.Activity) error {
	res, err := r.namedExec(ctx, "UPDATE activities SET "+namedSet(activityColumns)+" WHERE id = :id", a)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return mustAffect(res, "Activity")
}

// Delete removes an activity
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	res, err := r.exec(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return mustAffect(res, "Activity")
}
