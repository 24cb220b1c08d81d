package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

// DashboardRepository implements domain.DashboardRepository
type DashboardRepository struct {
	store
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *sqlx.DB, logger *slog.Logger) *DashboardRepository {
	return &DashboardRepository{store: newStore(db, logger)}
}

// CountActiveLeads counts leads that have not been converted
func (r *DashboardRepository) CountActiveLeads(ctx context.Context) (int, error) {
	return r.countOf(ctx, "leads", "SELECT COUNT(*) FROM leads WHERE status <> ?", domain.LeadStatusConverted)
}

// CountContacts counts every contact
func (r *DashboardRepository) CountContacts(ctx context.Context) (int, error) {
	return r.countOf(ctx, "contacts", "SELECT COUNT(*) FROM contacts")
}

// CountCompanies counts every company
func (r *DashboardRepository) CountCompanies(ctx context.Context) (int, error) {
	return r.countOf(ctx, "companies", "SELECT COUNT(*) FROM companies")
}

// DealTotals counts and sums the deals in a status
func (r *DashboardRepository) DealTotals(ctx context.Context, status string) (domain.CountSum, error) {
	var cs domain.CountSum
	err := r.get(ctx, &cs, "SELECT COUNT(*) AS count, COALESCE(SUM(value), 0) AS value FROM deals WHERE status = ?", status)
	if err != nil {
		return cs, fmt.Errorf("failed to total %s deals: %w", status, err)
	}
	return cs, nil
}

// CountPendingActivities counts activities still pending
func (r *DashboardRepository) CountPendingActivities(ctx context.Context) (int, error) {
	return r.countOf(ctx, "pending activities", "SELECT COUNT(*) FROM activities WHERE status = ?", domain.ActivityStatusPending)
}

// CountOverdueActivities counts pending activities due strictly before now
func (r *DashboardRepository) CountOverdueActivities(ctx context.Context, now string) (int, error) {
	return r.countOf(ctx, "overdue activities",
		"SELECT COUNT(*) FROM activities WHERE status = ? AND due_date < ?",
		domain.ActivityStatusPending, now)
}

// DealsByStage rolls up open deals per stage in board order; empty stages report zero
func (r *DashboardRepository) DealsByStage(ctx context.Context) ([]domain.StageSummary, error) {
	out := []domain.StageSummary{}
	err := r.selectAll(ctx, &out, `
		SELECT ps.name AS stage, ps.color AS color, COUNT(d.id) AS count, COALESCE(SUM(d.value), 0) AS value
		FROM pipeline_stages ps
		LEFT JOIN deals d ON d.stage_id = ps.id AND d.status = ?
		GROUP BY ps.id, ps.name, ps.color, ps.position
		ORDER BY ps.position, ps.id`, domain.DealStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to group deals by stage: %w", err)
	}
	return out, nil
}

// LeadsByStatus counts leads per status
func (r *DashboardRepository) LeadsByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	out := []domain.StatusCount{}
	if err := r.selectAll(ctx, &out, "SELECT status, COUNT(*) AS count FROM leads GROUP BY status ORDER BY status"); err != nil {
		return nil, fmt.Errorf("failed to group leads by status: %w", err)
	}
	return out, nil
}

// ClosedSince counts and sums deals in status whose close date is at or after since
func (r *DashboardRepository) ClosedSince(ctx context.Context, status, since string) (domain.CountSum, error) {
	var cs domain.CountSum
	err := r.get(ctx, &cs, `SELECT COUNT(*) AS count, COALESCE(SUM(value), 0) AS value
		FROM deals WHERE status = ? AND actual_close_date >= ?`, status, since)
	if err != nil {
		return cs, fmt.Errorf("failed to total closed %s deals: %w", status, err)
	}
	return cs, nil
}

// AvgWonValue averages the value of every won deal
func (r *DashboardRepository) AvgWonValue(ctx context.Context) (float64, error) {
	var avg float64
	if err := r.get(ctx, &avg, "SELECT COALESCE(AVG(value), 0) FROM deals WHERE status = ?", domain.DealStatusWon); err != nil {
		return 0, fmt.Errorf("failed to average won deals: %w", err)
	}
	return avg, nil
}

// WonCloseSpans returns creation and close instants of won deals that have a close date
func (r *DashboardRepository) WonCloseSpans(ctx context.Context) ([]domain.CloseSpan, error) {
	out := []domain.CloseSpan{}
	err := r.selectAll(ctx, &out, `SELECT created_at, actual_close_date FROM deals
		WHERE status = ? AND actual_close_date IS NOT NULL`, domain.DealStatusWon)
	if err != nil {
		return nil, fmt.Errorf("failed to load won deal spans: %w", err)
	}
	return out, nil
}

func (r *DashboardRepository) countOf(ctx context.Context, what, query string, args ...any) (int, error) {
	n, err := r.count(ctx, query, args...)
	if err != nil {
		r.logger.Error("dashboard count failed",
			slog.String("what", what),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return n, nil
}
