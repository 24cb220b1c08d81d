package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var dealColumns = []string{
	"id", "name", "value", "currency", "stage_id", "probability", "expected_close_date",
	"actual_close_date", "contact_id", "company_id", "assigned_to", "status", "loss_reason",
	"notes", "created_at", "updated_at",
}

var dealSort = sortable{
	columns: map[string]string{
		"created_at":          "d.created_at",
		"updated_at":          "d.updated_at",
		"name":                "d.name",
		"value":               "d.value",
		"probability":         "d.probability",
		"status":              "d.status",
		"expected_close_date": "d.expected_close_date",
		"actual_close_date":   "d.actual_close_date",
	},
	fallback: "created_at",
	tiebreak: "d.id",
}

const dealJoins = `
	FROM deals d
	LEFT JOIN contacts c ON d.contact_id = c.id
	LEFT JOIN companies comp ON d.company_id = comp.id
	LEFT JOIN pipeline_stages ps ON d.stage_id = ps.id`

const dealRowNames = `,
	c.first_name AS contact_first_name, c.last_name AS contact_last_name,
	comp.name AS company_name,
	ps.name AS stage_name, ps.color AS stage_color`

// DealRepository implements domain.DealRepository
type DealRepository struct {
	store
}

// NewDealRepository creates a new deal repository
func NewDealRepository(db *sqlx.DB, logger *slog.Logger) *DealRepository {
	return &DealRepository{store: newStore(db, logger)}
}

func dealWhere(f domain.DealFilter) *where {
	w := &where{}
	w.search(f.Search, "d.name", "c.first_name", "c.last_name", "comp.name")
	w.eq("d.stage_id", f.StageID)
	w.eq("d.status", f.Status)
	w.eq("d.assigned_to", f.AssignedTo)
	return w
}

// List returns one page of deals joined with contact, company and stage names
func (r *DealRepository) List(ctx context.Context, f domain.DealFilter) ([]domain.DealRow, int, error) {
	w := dealWhere(f)

	total, err := r.count(ctx, `SELECT COUNT(*)
		FROM deals d
		LEFT JOIN contacts c ON d.contact_id = c.id
		LEFT JOIN companies comp ON d.company_id = comp.id`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count deals: %w", err)
	}

	query := "SELECT " + columns("d", dealColumns) + dealRowNames + dealJoins + w.String() +
		dealSort.orderBy(f.ListParams) + " LIMIT ? OFFSET ?"
	rows := []domain.DealRow{}
	if err := r.selectAll(ctx, &rows, query, append(w.args, f.Limit, f.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("failed to list deals: %w", err)
	}
	return rows, total, nil
}

// ListAll returns every matching deal, newest first, for the board view
func (r *DealRepository) ListAll(ctx context.Context, f domain.DealFilter) ([]domain.DealRow, error) {
	w := dealWhere(f)
	query := "SELECT " + columns("d", dealColumns) + dealRowNames + dealJoins + w.String() +
		" ORDER BY d.created_at DESC, d.id DESC"
	rows := []domain.DealRow{}
	if err := r.selectAll(ctx, &rows, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list pipeline deals: %w", err)
	}
	return rows, nil
}

// Get retrieves a deal by ID
func (r *DealRepository) Get(ctx context.Context, id string) (*domain.Deal, error) {
	d := &domain.Deal{}
	query := "SELECT " + columns("", dealColumns) + " FROM deals WHERE id = ?"
	if err := r.getOne(ctx, "Deal", d, query, id); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDetail retrieves a deal with its related names and the contact email
func (r *DealRepository) GetDetail(ctx context.Context, id string) (*domain.DealDetail, error) {
	d := &domain.DealDetail{}
	query := "SELECT " + columns("d", dealColumns) + dealRowNames + ", c.email AS contact_email" +
		dealJoins + " WHERE d.id = ?"
	if err := r.getOne(ctx, "Deal", d, query, id); err != nil {
		return nil, err
	}
	return d, nil
}

// ListByContact returns a contact's deals, newest first
func (r *DealRepository) ListByContact(ctx context.Context, contactID string) ([]domain.Deal, error) {
	return r.listBy(ctx, "contact_id", contactID)
}

// ListByCompany returns a company's deals, newest first
func (r *DealRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Deal, error) {
	return r.listBy(ctx, "company_id", companyID)
}

func (r *DealRepository) listBy(ctx context.Context, column, id string) ([]domain.Deal, error) {
	deals := []domain.Deal{}
	query := "SELECT " + columns("", dealColumns) + " FROM deals WHERE " + column + " = ? ORDER BY created_at DESC, id DESC"
	if err := r.selectAll(ctx, &deals, query, id); err != nil {
		return nil, fmt.Errorf("failed to list deals by %s: %w", column, err)
	}
	return deals, nil
}

// Create inserts a deal
func (r *DealRepository) Create(ctx context.Context, d *domain.Deal) error {
	query := "INSERT INTO deals (" + columns("", dealColumns) + ") VALUES (" + namedValues(dealColumns) + ")"
	if _, err := r.namedExec(ctx, query, d); err != nil {
		r.logger.Error("failed to create deal",
			slog.String("name", d.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create deal: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of a deal
func (r *DealRepository) Update(ctx context.Context, d *domain.Deal) error {
	res, err := r.namedExec(ctx, "UPDATE deals SET "+namedSet(dealColumns)+" WHERE id = :id", d)
	if err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
	}
	return mustAffect(res, "Deal")
}

// Delete removes a deal and detaches its activities
func (r *DealRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.exec(ctx, "UPDATE activities SET deal_id = NULL WHERE deal_id = ?", id); err != nil {
		return fmt.Errorf("failed to detach deal activities: %w", err)
	}
	res, err := r.exec(ctx, "DELETE FROM deals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	return mustAffect(res, "Deal")
}
