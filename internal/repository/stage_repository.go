package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var stageColumns = []string{"id", "name", "position", "color", "probability", "outcome", "created_at"}

// StageRepository implements domain.StageRepository
type StageRepository struct {
	store
}

// NewStageRepository creates a new pipeline stage repository
func NewStageRepository(db *sqlx.DB, logger *slog.Logger) *StageRepository {
	return &StageRepository{store: newStore(db, logger)}
}

// List returns every stage in board order
func (r *StageRepository) List(ctx context.Context) ([]domain.PipelineStage, error) {
	stages := []domain.PipelineStage{}
	query := "SELECT " + columns("", stageColumns) + " FROM pipeline_stages ORDER BY position, id"
	if err := r.selectAll(ctx, &stages, query); err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	return stages, nil
}

// Get retrieves a stage by ID
func (r *StageRepository) Get(ctx context.Context, id string) (*domain.PipelineStage, error) {
	s := &domain.PipelineStage{}
	query := "SELECT " + columns("", stageColumns) + " FROM pipeline_stages WHERE id = ?"
	if err := r.getOne(ctx, "Stage", s, query, id); err != nil {
		return nil, err
	}
	return s, nil
}

// First returns the stage with the lowest position
func (r *StageRepository) First(ctx context.Context) (*domain.PipelineStage, error) {
	s := &domain.PipelineStage{}
	query := "SELECT " + columns("", stageColumns) + " FROM pipeline_stages ORDER BY position, id LIMIT 1"
	if err := r.getOne(ctx, "Stage", s, query); err != nil {
		return nil, err
	}
	return s, nil
}

// NextPosition returns max(position)+1, or 1 for an empty board
func (r *StageRepository) NextPosition(ctx context.Context) (int, error) {
	n, err := r.count(ctx, "SELECT COALESCE(MAX(position), 0) + 1 FROM pipeline_stages")
	if err != nil {
		return 0, fmt.Errorf("failed to compute next stage position: %w", err)
	}
	return n, nil
}

// Create inserts a stage
func (r *StageRepository) Create(ctx context.Context, s *domain.PipelineStage) error {
	query := "INSERT INTO pipeline_stages (" + columns("", stageColumns) + ") VALUES (" + namedValues(stageColumns) + ")"
	if _, err := r.namedExec(ctx, query, s); err != nil {
		r.logger.Error("failed to create stage", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create stage: %w", err)
	}
	return nil
}

// Update rewrites name, color, probability and outcome. Position changes go through SetPosition.
func (r *StageRepository) Update(ctx context.Context, s *domain.PipelineStage) error {
	res, err := r.namedExec(ctx, `UPDATE pipeline_stages
		SET name = :name, color = :color, probability = :probability, outcome = :outcome
		WHERE id = :id`, s)
	if err != nil {
		return fmt.Errorf("failed to update stage: %w", err)
	}
	return mustAffect(res, "Stage")
}

// SetPosition moves a stage; unknown ids are ignored
func (r *StageRepository) SetPosition(ctx context.Context, id string, position int) error {
	if _, err := r.exec(ctx, "UPDATE pipeline_stages SET position = ? WHERE id = ?", position, id); err != nil {
		return fmt.Errorf("failed to set stage position: %w", err)
	}
	return nil
}

// CountDeals counts deals currently in a stage
func (r *StageRepository) CountDeals(ctx context.Context, id string) (int, error) {
	n, err := r.count(ctx, "SELECT COUNT(*) FROM deals WHERE stage_id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("failed to count stage deals: %w", err)
	}
	return n, nil
}

// Delete removes a stage
func (r *StageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.exec(ctx, "DELETE FROM pipeline_stages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete stage: %w", err)
	}
	return mustAffect(res, "Stage")
}
