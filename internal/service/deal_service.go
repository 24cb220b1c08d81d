package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/featureflags"
	"github.com/aryan0dhankhar/crm/internal/observability/metrics"
)

// DealService manages deals and their movement through the pipeline
type DealService struct {
	deals      domain.DealRepository
	stages     domain.StageRepository
	activities domain.ActivityRepository
	deps       Deps
}

// CreateDealInput is the payload of POST /deals. Status is always derived from the stage.
type CreateDealInput struct {
	Name              string   `json:"name"`
	Value             *float64 `json:"value"`
	Currency          *string  `json:"currency"`
	StageID           *string  `json:"stage_id"`
	Probability       *int     `json:"probability"`
	ExpectedCloseDate *string  `json:"expected_close_date"`
	ContactID         *string  `json:"contact_id"`
	CompanyID         *string  `json:"company_id"`
	AssignedTo        *string  `json:"assigned_to"`
	LossReason        *string  `json:"loss_reason"`
	Notes             *string  `json:"notes"`
}

// UpdateDealInput is the payload of PUT /deals/{id}. A stage_id change runs the stage transition.
type UpdateDealInput struct {
	Name              domain.Field[string]  `json:"name"`
	Value             domain.Field[float64] `json:"value"`
	Currency          domain.Field[string]  `json:"currency"`
	StageID           domain.Field[string]  `json:"stage_id"`
	Probability       domain.Field[int]     `json:"probability"`
	ExpectedCloseDate domain.Field[string]  `json:"expected_close_date"`
	ContactID         domain.Field[string]  `json:"contact_id"`
	CompanyID         domain.Field[string]  `json:"company_id"`
	AssignedTo        domain.Field[string]  `json:"assigned_to"`
	LossReason        domain.Field[string]  `json:"loss_reason"`
	Notes             domain.Field[string]  `json:"notes"`
}

// NewDealService creates a new deal service
func NewDealService(deals domain.DealRepository, stages domain.StageRepository, activities domain.ActivityRepository, deps Deps) *DealService {
	return &DealService{
		deals:      deals,
		stages:     stages,
		activities: activities,
		deps:       deps.withDefaults(),
	}
}

// List returns a page of deals with contact, company and stage names
func (s *DealService) List(ctx context.Context, f domain.DealFilter) (domain.Page[domain.DealRow], error) {
	f.ListParams = f.ListParams.Normalize()
	rows, total, err := s.deals.List(ctx, f)
	if err != nil {
		return domain.Page[domain.DealRow]{}, err
	}
	return domain.NewPage(rows, total, f.ListParams), nil
}

// Pipeline groups every matching deal under its stage, in board order
func (s *DealService) Pipeline(ctx context.Context, f domain.DealFilter) ([]domain.PipelineColumn, error) {
	stages, err := s.stages.List(ctx)
	if err != nil {
		return nil, err
	}
	deals, err := s.deals.ListAll(ctx, f)
	if err != nil {
		return nil, err
	}

	byStage := make(map[string][]domain.DealRow, len(stages))
	for _, d := range deals {
		if d.StageID == nil {
			continue
		}
		byStage[*d.StageID] = append(byStage[*d.StageID], d)
	}

	columns := make([]domain.PipelineColumn, 0, len(stages))
	for _, st := range stages {
		col := domain.PipelineColumn{PipelineStage: st, Deals: byStage[st.ID]}
		if col.Deals == nil {
			col.Deals = []domain.DealRow{}
		}
		for _, d := range col.Deals {
			col.TotalValue += d.Value
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// Get returns a deal with its related names and recent activities
func (s *DealService) Get(ctx context.Context, id string) (*domain.DealDetail, error) {
	detail, err := s.deals.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Activities, err = s.activities.ListLinked(ctx, domain.LinkDeal, id, domain.RelatedActivityLimit)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Create inserts a deal in its initial stage, the first stage when none is given.
// The deal takes the stage probability unless one is supplied.
func (s *DealService) Create(ctx context.Context, in CreateDealInput) (*domain.Deal, error) {
	var out *domain.Deal
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		now := s.deps.now()
		d := &domain.Deal{
			ID:         domain.NewID(domain.PrefixDeal),
			Name:       strings.TrimSpace(in.Name),
			Currency:   domain.DefaultCurrency,
			Status:     domain.DealStatusOpen,
			ContactID:  in.ContactID,
			CompanyID:  in.CompanyID,
			AssignedTo: in.AssignedTo,
			LossReason: in.LossReason,
			Notes:      in.Notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if in.Value != nil {
			d.Value = *in.Value
		}
		if in.Currency != nil && *in.Currency != "" {
			d.Currency = *in.Currency
		}
		expected, err := domain.NormalizeDate("expected_close_date", in.ExpectedCloseDate)
		if err != nil {
			return err
		}
		d.ExpectedCloseDate = expected

		stageID := ""
		if in.StageID != nil {
			stageID = strings.TrimSpace(*in.StageID)
		}
		stage, err := s.resolveStage(ctx, stageID)
		if err != nil {
			return err
		}
		if stage != nil && stageID == "" {
			stageID = stage.ID
		}
		if stageID != "" {
			d.EnterStage(stageID, stage, now)
		}
		if in.Probability != nil {
			d.Probability = *in.Probability
		}

		blankToNil(&d.ContactID, &d.CompanyID)
		if err := checkStruct(d); err != nil {
			return err
		}
		if err := s.deals.Create(ctx, d); err != nil {
			return err
		}
		out, err = s.deals.Get(ctx, d.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update merges the provided fields over the stored deal
func (s *DealService) Update(ctx context.Context, id string, in UpdateDealInput) (*domain.Deal, error) {
	var out *domain.Deal
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		d, err := s.deals.Get(ctx, id)
		if err != nil {
			return err
		}
		now := s.deps.now()

		if in.StageID.Set {
			if in.StageID.Value == nil || strings.TrimSpace(*in.StageID.Value) == "" {
				return domain.BadRequest("stage_id cannot be null")
			}
			target := strings.TrimSpace(*in.StageID.Value)
			if d.StageID == nil || *d.StageID != target {
				stage, err := s.resolveStage(ctx, target)
				if err != nil {
					return err
				}
				d.EnterStage(target, stage, now)
				metrics.ObserveStageTransition(d.Status)
			}
		}

		if err := in.Name.MergeRequired(&d.Name, "name"); err != nil {
			return err
		}
		if err := in.Value.MergeRequired(&d.Value, "value"); err != nil {
			return err
		}
		if err := in.Currency.MergeRequired(&d.Currency, "currency"); err != nil {
			return err
		}
		if err := in.Probability.MergeRequired(&d.Probability, "probability"); err != nil {
			return err
		}
		if in.ExpectedCloseDate.Set {
			expected, err := domain.NormalizeDate("expected_close_date", in.ExpectedCloseDate.Value)
			if err != nil {
				return err
			}
			d.ExpectedCloseDate = expected
		}
		in.ContactID.Merge(&d.ContactID)
		in.CompanyID.Merge(&d.CompanyID)
		in.AssignedTo.Merge(&d.AssignedTo)
		in.LossReason.Merge(&d.LossReason)
		in.Notes.Merge(&d.Notes)
		d.UpdatedAt = now

		blankToNil(&d.ContactID, &d.CompanyID)
		if err := checkStruct(d); err != nil {
			return err
		}
		if err := s.deals.Update(ctx, d); err != nil {
			return err
		}
		out, err = s.deals.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MoveStage is the board drag-and-drop transition. The deal takes the target
// stage's probability; its status and close date follow the stage outcome.
// Re-applying the same stage yields the same record apart from updated_at.
func (s *DealService) MoveStage(ctx context.Context, id, stageID string) (deal *domain.Deal, err error) {
	ctx, span := startSpan(ctx, "DealService.MoveStage")
	span.SetAttributes(attribute.String("deal.id", id), attribute.String("stage.id", stageID))
	defer func() { endSpan(span, err) }()

	stageID = strings.TrimSpace(stageID)
	if stageID == "" {
		return nil, domain.BadRequest("stage_id is required")
	}

	err = s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		d, err := s.deals.Get(ctx, id)
		if err != nil {
			return err
		}
		stage, err := s.resolveStage(ctx, stageID)
		if err != nil {
			return err
		}

		now := s.deps.now()
		d.EnterStage(stageID, stage, now)
		d.UpdatedAt = now
		if err := s.deals.Update(ctx, d); err != nil {
			return err
		}
		deal, err = s.deals.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveStageTransition(deal.Status)
	s.deps.Logger.Info("deal moved",
		slog.String("deal_id", id),
		slog.String("stage_id", stageID),
		slog.String("status", deal.Status),
	)
	return deal, nil
}

// Delete removes a deal and detaches its activities
func (s *DealService) Delete(ctx context.Context, id string) error {
	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.deals.Delete(ctx, id)
	})
}

// resolveStage looks up the stage a deal is entering. An empty id means the
// first stage. An unknown id yields a nil stage, or a BadRequest under the
// strict transitions flag.
func (s *DealService) resolveStage(ctx context.Context, stageID string) (*domain.PipelineStage, error) {
	var (
		stage *domain.PipelineStage
		err   error
	)
	if stageID == "" {
		stage, err = s.stages.First(ctx)
	} else {
		stage, err = s.stages.Get(ctx, stageID)
	}
	if err == nil {
		return stage, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if stageID != "" && featureflags.Enabled(featureflags.StrictStageTransitions) {
		return nil, domain.BadRequest("stage %s does not exist", stageID)
	}
	return nil, nil
}
