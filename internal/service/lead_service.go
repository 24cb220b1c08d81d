package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/observability/metrics"
)

// LeadService manages leads and their one-way conversion into contacts
type LeadService struct {
	leads      domain.LeadRepository
	contacts   domain.ContactRepository
	activities domain.ActivityRepository
	deps       Deps
}

// CreateLeadInput is the payload of POST /leads
type CreateLeadInput struct {
	Name        string  `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"company_name"`
	Title       *string `json:"title"`
	Status      *string `json:"status"`
	Source      *string `json:"source"`
	Score       *int    `json:"score"`
	AssignedTo  *string `json:"assigned_to"`
	Notes       *string `json:"notes"`
}

// UpdateLeadInput is the payload of PUT /leads/{id}
type UpdateLeadInput struct {
	Name        domain.Field[string] `json:"name"`
	Email       domain.Field[string] `json:"email"`
	Phone       domain.Field[string] `json:"phone"`
	CompanyName domain.Field[string] `json:"company_name"`
	Title       domain.Field[string] `json:"title"`
	Status      domain.Field[string] `json:"status"`
	Source      domain.Field[string] `json:"source"`
	Score       domain.Field[int]    `json:"score"`
	AssignedTo  domain.Field[string] `json:"assigned_to"`
	Notes       domain.Field[string] `json:"notes"`
}

// NewLeadService creates a new lead service
func NewLeadService(leads domain.LeadRepository, contacts domain.ContactRepository, activities domain.ActivityRepository, deps Deps) *LeadService {
	return &LeadService{
		leads:      leads,
		contacts:   contacts,
		activities: activities,
		deps:       deps.withDefaults(),
	}
}

// List returns a page of leads
func (s *LeadService) List(ctx context.Context, f domain.LeadFilter) (domain.Page[domain.Lead], error) {
	f.ListParams = f.ListParams.Normalize()
	leads, total, err := s.leads.List(ctx, f)
	if err != nil {
		return domain.Page[domain.Lead]{}, err
	}
	return domain.NewPage(leads, total, f.ListParams), nil
}

// Get returns a lead with its most recent activities
func (s *LeadService) Get(ctx context.Context, id string) (*domain.LeadDetail, error) {
	lead, err := s.leads.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListLinked(ctx, domain.LinkLead, id, domain.RelatedActivityLimit)
	if err != nil {
		return nil, err
	}
	return &domain.LeadDetail{Lead: *lead, Activities: activities}, nil
}

// Create inserts a new lead. Leads cannot be created already converted.
func (s *LeadService) Create(ctx context.Context, in CreateLeadInput) (*domain.Lead, error) {
	now := s.deps.now()
	lead := &domain.Lead{
		ID:          domain.NewID(domain.PrefixLead),
		Name:        strings.TrimSpace(in.Name),
		Email:       in.Email,
		Phone:       in.Phone,
		CompanyName: in.CompanyName,
		Title:       in.Title,
		Status:      domain.LeadStatusNew,
		Source:      in.Source,
		Score:       in.Score,
		AssignedTo:  in.AssignedTo,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Status != nil && *in.Status != "" {
		lead.Status = *in.Status
	}
	if lead.Status == domain.LeadStatusConverted {
		return nil, domain.BadRequest("status converted can only be reached through the convert action")
	}
	blankToNil(&lead.Source)
	if err := checkStruct(lead); err != nil {
		return nil, err
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	return s.leads.Get(ctx, lead.ID)
}

// Update merges the provided fields over the stored lead
func (s *LeadService) Update(ctx context.Context, id string, in UpdateLeadInput) (*domain.Lead, error) {
	var out *domain.Lead
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		lead, err := s.leads.Get(ctx, id)
		if err != nil {
			return err
		}

		if in.Status.Set {
			if err := checkStatusChange(lead, in.Status.Value); err != nil {
				return err
			}
		}

		if err := in.Name.MergeRequired(&lead.Name, "name"); err != nil {
			return err
		}
		if err := in.Status.MergeRequired(&lead.Status, "status"); err != nil {
			return err
		}
		in.Email.Merge(&lead.Email)
		in.Phone.Merge(&lead.Phone)
		in.CompanyName.Merge(&lead.CompanyName)
		in.Title.Merge(&lead.Title)
		in.Source.Merge(&lead.Source)
		in.Score.Merge(&lead.Score)
		in.AssignedTo.Merge(&lead.AssignedTo)
		in.Notes.Merge(&lead.Notes)
		lead.UpdatedAt = s.deps.now()

		blankToNil(&lead.Source)
		if err := checkStruct(lead); err != nil {
			return err
		}
		if err := s.leads.Update(ctx, lead); err != nil {
			return err
		}
		out, err = s.leads.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkStatusChange enforces that converted is entered only via Convert and never left
func checkStatusChange(lead *domain.Lead, next *string) error {
	if next == nil {
		return nil
	}
	switch {
	case lead.IsConverted() && *next != domain.LeadStatusConverted:
		return domain.BadRequest("Lead already converted; its status cannot change")
	case !lead.IsConverted() && *next == domain.LeadStatusConverted:
		return domain.BadRequest("status converted can only be reached through the convert action")
	}
	return nil
}

// Delete removes a lead
func (s *LeadService) Delete(ctx context.Context, id string) error {
	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.leads.Delete(ctx, id)
	})
}

// Convert turns a lead into a contact. The contact insert and the lead update
// commit together or not at all.
func (s *LeadService) Convert(ctx context.Context, id string) (contact *domain.Contact, err error) {
	ctx, span := startSpan(ctx, "LeadService.Convert")
	span.SetAttributes(attribute.String("lead.id", id))
	defer func() {
		endSpan(span, err)
		metrics.ObserveLeadConversion(conversionResult(err))
	}()

	err = s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		lead, err := s.leads.Get(ctx, id)
		if err != nil {
			return err
		}
		if lead.IsConverted() {
			return domain.Conflict("Lead already converted")
		}

		now := s.deps.now()
		first, last := SplitName(lead.Name)
		c := &domain.Contact{
			ID:        domain.NewID(domain.PrefixContact),
			FirstName: first,
			LastName:  last,
			Email:     lead.Email,
			Phone:     lead.Phone,
			Title:     lead.Title,
			Notes:     lead.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := checkStruct(c); err != nil {
			return err
		}
		if err := s.contacts.Create(ctx, c); err != nil {
			return err
		}

		lead.Status = domain.LeadStatusConverted
		lead.ConvertedContactID = &c.ID
		lead.ConvertedAt = &now
		lead.UpdatedAt = now
		if err := s.leads.Update(ctx, lead); err != nil {
			return fmt.Errorf("failed to mark lead converted: %w", err)
		}

		contact, err = s.contacts.Get(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("lead converted",
		slog.String("lead_id", id),
		slog.String("contact_id", contact.ID),
	)
	return contact, nil
}

// SplitName splits on the first whitespace run: "John Doe" -> ("John", "Doe"),
// "Madonna" -> ("Madonna", "")
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func conversionResult(err error) string {
	if err == nil {
		return "converted"
	}
	if _, ok := domain.Message(err); ok {
		return "rejected"
	}
	return "error"
}
