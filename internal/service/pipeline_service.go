package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/observability/metrics"
	"github.com/aryan0dhankhar/crm/pkg/cache"
)

const stagesCacheKey = "crm:stages"

// DefaultStageCacheTTL bounds how long a cached board layout may be served
const DefaultStageCacheTTL = 5 * time.Minute

// PipelineService manages the ordered pipeline stages
type PipelineService struct {
	stages   domain.StageRepository
	cache    cache.Store
	cacheTTL time.Duration
	deps     Deps
}

// CreateStageInput is the payload of POST /pipeline/stages
type CreateStageInput struct {
	Name        string  `json:"name"`
	Color       *string `json:"color"`
	Probability *int    `json:"probability"`
	Outcome     *string `json:"outcome"`
}

// UpdateStageInput is the payload of PUT /pipeline/stages/{id}
type UpdateStageInput struct {
	Name        domain.Field[string] `json:"name"`
	Color       domain.Field[string] `json:"color"`
	Probability domain.Field[int]    `json:"probability"`
	Outcome     domain.Field[string] `json:"outcome"`
}

// ReorderStagesInput is the payload of POST /pipeline/stages/reorder
type ReorderStagesInput struct {
	StageIDs []string `json:"stageIds"`
}

// NewPipelineService creates a new stage service. A nil store disables caching.
func NewPipelineService(stages domain.StageRepository, store cache.Store, ttl time.Duration, deps Deps) *PipelineService {
	if ttl <= 0 {
		ttl = DefaultStageCacheTTL
	}
	return &PipelineService{
		stages:   stages,
		cache:    store,
		cacheTTL: ttl,
		deps:     deps.withDefaults(),
	}
}

// List returns every stage ordered by position
func (s *PipelineService) List(ctx context.Context) ([]domain.PipelineStage, error) {
	if s.cache != nil {
		stages, ok := cache.GetJSON[[]domain.PipelineStage](ctx, s.cache, stagesCacheKey)
		metrics.ObserveCacheLookup("stages", ok)
		if ok {
			return stages, nil
		}
	}
	stages, err := s.stages.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, stagesCacheKey, stages, s.cacheTTL); err != nil {
			s.deps.Logger.Warn("failed to cache stages", slog.Any("error", err))
		}
	}
	return stages, nil
}

// Create appends a stage at the end of the board. Without an explicit
// outcome, "Closed Won" and "Closed Lost" names become terminal stages.
func (s *PipelineService) Create(ctx context.Context, in CreateStageInput) (*domain.PipelineStage, error) {
	var out *domain.PipelineStage
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		st := &domain.PipelineStage{
			ID:        domain.NewID(domain.PrefixStage),
			Name:      strings.TrimSpace(in.Name),
			Color:     domain.DefaultStageColor,
			CreatedAt: s.deps.now(),
		}
		if in.Color != nil && strings.TrimSpace(*in.Color) != "" {
			st.Color = strings.TrimSpace(*in.Color)
		}
		if in.Probability != nil {
			st.Probability = *in.Probability
		}
		st.Outcome = domain.OutcomeForName(st.Name)
		if in.Outcome != nil && *in.Outcome != "" {
			st.Outcome = *in.Outcome
		}
		if err := checkStruct(st); err != nil {
			return err
		}

		pos, err := s.stages.NextPosition(ctx)
		if err != nil {
			return err
		}
		st.Position = pos
		if err := s.stages.Create(ctx, st); err != nil {
			return err
		}
		out, err = s.stages.Get(ctx, st.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return out, nil
}

// Update changes a stage's display attributes, probability or outcome.
// Renaming to "Closed Won" or "Closed Lost" without an explicit outcome makes
// the stage terminal. Deals already in the stage keep their status until they
// move again.
func (s *PipelineService) Update(ctx context.Context, id string, in UpdateStageInput) (*domain.PipelineStage, error) {
	var out *domain.PipelineStage
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		st, err := s.stages.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := in.Name.MergeRequired(&st.Name, "name"); err != nil {
			return err
		}
		if in.Name.Set && !in.Outcome.Set {
			if outcome := domain.OutcomeForName(st.Name); outcome != domain.OutcomeOpen {
				st.Outcome = outcome
			}
		}
		if err := in.Color.MergeRequired(&st.Color, "color"); err != nil {
			return err
		}
		if err := in.Probability.MergeRequired(&st.Probability, "probability"); err != nil {
			return err
		}
		if err := in.Outcome.MergeRequired(&st.Outcome, "outcome"); err != nil {
			return err
		}
		if err := checkStruct(st); err != nil {
			return err
		}
		if err := s.stages.Update(ctx, st); err != nil {
			return err
		}
		out, err = s.stages.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return out, nil
}

// Reorder rewrites positions to the 1-based index of each id in the list.
// Stages missing from the list keep their current position; an empty list
// changes nothing.
func (s *PipelineService) Reorder(ctx context.Context, in ReorderStagesInput) ([]domain.PipelineStage, error) {
	if in.StageIDs == nil {
		return nil, domain.BadRequest("stageIds must be an array")
	}
	if len(in.StageIDs) == 0 {
		return s.List(ctx)
	}
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, id := range in.StageIDs {
			if err := s.stages.SetPosition(ctx, id, i+1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.List(ctx)
}

// Delete removes a stage that no deal references
func (s *PipelineService) Delete(ctx context.Context, id string) error {
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.stages.Get(ctx, id); err != nil {
			return err
		}
		n, err := s.stages.CountDeals(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.BadRequest("Cannot delete stage with %d deals. Move or delete deals first.", n)
		}
		return s.stages.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *PipelineService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, stagesCacheKey)
	}
}
