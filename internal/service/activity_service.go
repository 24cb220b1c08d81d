package service

import (
	"context"
	"strings"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

// ActivityService manages calls, meetings, tasks and notes
type ActivityService struct {
	activities    domain.ActivityRepository
	defaultUserID string
	deps          Deps
}

// CreateActivityInput is the payload of POST /activities
type CreateActivityInput struct {
	Type            string  `json:"type"`
	Subject         *string `json:"subject"`
	Description     *string `json:"description"`
	Status          *string `json:"status"`
	Priority        *string `json:"priority"`
	DueDate         *string `json:"due_date"`
	DurationMinutes *int    `json:"duration_minutes"`
	Outcome         *string `json:"outcome"`
	LeadID          *string `json:"lead_id"`
	ContactID       *string `json:"contact_id"`
	DealID          *string `json:"deal_id"`
	CompanyID       *string `json:"company_id"`
	UserID          *string `json:"user_id"`
}

// UpdateActivityInput is the payload of PUT /activities/{id}
type UpdateActivityInput struct {
	Type            domain.Field[string] `json:"type"`
	Subject         domain.Field[string] `json:"subject"`
	Description     domain.Field[string] `json:"description"`
	Status          domain.Field[string] `json:"status"`
	Priority        domain.Field[string] `json:"priority"`
	DueDate         domain.Field[string] `json:"due_date"`
	DurationMinutes domain.Field[int]    `json:"duration_minutes"`
	Outcome         domain.Field[string] `json:"outcome"`
	LeadID          domain.Field[string] `json:"lead_id"`
	ContactID       domain.Field[string] `json:"contact_id"`
	DealID          domain.Field[string] `json:"deal_id"`
	CompanyID       domain.Field[string] `json:"company_id"`
	UserID          domain.Field[string] `json:"user_id"`
}

// CompleteActivityInput is the payload of PATCH /activities/{id}/complete
type CompleteActivityInput struct {
	Outcome *string `json:"outcome"`
}

// NewActivityService creates a new activity service. Activities created
// without a user are attributed to defaultUserID.
func NewActivityService(activities domain.ActivityRepository, defaultUserID string, deps Deps) *ActivityService {
	if defaultUserID == "" {
		defaultUserID = domain.DefaultUserID
	}
	return &ActivityService{
		activities:    activities,
		defaultUserID: defaultUserID,
		deps:          deps.withDefaults(),
	}
}

// List returns a page of activities. The upcoming and overdue filters are
// evaluated against the current instant.
func (s *ActivityService) List(ctx context.Context, f domain.ActivityFilter) (domain.Page[domain.ActivityRow], error) {
	f.ListParams = f.ListParams.Normalize()
	f.Now = s.deps.now()
	rows, total, err := s.activities.List(ctx, f)
	if err != nil {
		return domain.Page[domain.ActivityRow]{}, err
	}
	return domain.NewPage(rows, total, f.ListParams), nil
}

// Get returns an activity with the names of what it is linked to
func (s *ActivityService) Get(ctx context.Context, id string) (*domain.ActivityRow, error) {
	return s.activities.GetRow(ctx, id)
}

// Create logs or schedules an activity
func (s *ActivityService) Create(ctx context.Context, in CreateActivityInput) (*domain.Activity, error) {
	if strings.TrimSpace(in.Type) == "" {
		return nil, domain.BadRequest("type is required")
	}
	now := s.deps.now()
	a := &domain.Activity{
		ID:              domain.NewID(domain.PrefixActivity),
		Type:            strings.TrimSpace(in.Type),
		Subject:         in.Subject,
		Description:     in.Description,
		Status:          domain.ActivityStatusPending,
		Priority:        domain.PriorityMedium,
		DurationMinutes: in.DurationMinutes,
		Outcome:         in.Outcome,
		LeadID:          in.LeadID,
		ContactID:       in.ContactID,
		DealID:          in.DealID,
		CompanyID:       in.CompanyID,
		UserID:          in.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.Status != nil && *in.Status != "" {
		a.Status = *in.Status
	}
	if in.Priority != nil && *in.Priority != "" {
		a.Priority = *in.Priority
	}
	due, err := domain.NormalizeDate("due_date", in.DueDate)
	if err != nil {
		return nil, err
	}
	a.DueDate = due

	blankToNil(&a.Subject, &a.Description, &a.Outcome, &a.LeadID, &a.ContactID, &a.DealID, &a.CompanyID, &a.UserID)
	if a.UserID == nil {
		uid := s.defaultUserID
		a.UserID = &uid
	}
	if err := checkStruct(a); err != nil {
		return nil, err
	}
	if err := s.activities.Create(ctx, a); err != nil {
		return nil, err
	}
	return s.activities.Get(ctx, a.ID)
}

// Update merges the provided fields over the stored activity. Setting the
// status here has no side effects; use Complete to stamp completed_at.
func (s *ActivityService) Update(ctx context.Context, id string, in UpdateActivityInput) (*domain.Activity, error) {
	var out *domain.Activity
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.activities.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := in.Type.MergeRequired(&a.Type, "type"); err != nil {
			return err
		}
		if err := in.Status.MergeRequired(&a.Status, "status"); err != nil {
			return err
		}
		if err := in.Priority.MergeRequired(&a.Priority, "priority"); err != nil {
			return err
		}
		if in.DueDate.Set {
			due, err := domain.NormalizeDate("due_date", in.DueDate.Value)
			if err != nil {
				return err
			}
			a.DueDate = due
		}
		in.Subject.Merge(&a.Subject)
		in.Description.Merge(&a.Description)
		in.DurationMinutes.Merge(&a.DurationMinutes)
		in.Outcome.Merge(&a.Outcome)
		in.LeadID.Merge(&a.LeadID)
		in.ContactID.Merge(&a.ContactID)
		in.DealID.Merge(&a.DealID)
		in.CompanyID.Merge(&a.CompanyID)
		in.UserID.Merge(&a.UserID)
		a.UpdatedAt = s.deps.now()

		blankToNil(&a.LeadID, &a.ContactID, &a.DealID, &a.CompanyID, &a.UserID)
		if err := checkStruct(a); err != nil {
			return err
		}
		if err := s.activities.Update(ctx, a); err != nil {
			return err
		}
		out, err = s.activities.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Complete marks an activity completed now and records its outcome. Calling
// it again moves completed_at to the new instant.
func (s *ActivityService) Complete(ctx context.Context, id string, in CompleteActivityInput) (*domain.ActivityRow, error) {
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.activities.Get(ctx, id)
		if err != nil {
			return err
		}
		now := s.deps.now()
		a.Status = domain.ActivityStatusCompleted
		a.CompletedAt = &now
		a.Outcome = in.Outcome
		blankToNil(&a.Outcome)
		a.UpdatedAt = now
		return s.activities.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return s.activities.GetRow(ctx, id)
}

// Delete removes an activity
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	return s.activities.Delete(ctx, id)
}
