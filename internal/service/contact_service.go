package service

import (
	"context"
	"strings"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

// ContactService manages contacts
type ContactService struct {
	contacts   domain.ContactRepository
	deals      domain.DealRepository
	activities domain.ActivityRepository
	deps       Deps
}

// CreateContactInput is the payload of POST /contacts
type CreateContactInput struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       *string     `json:"email"`
	Phone       *string     `json:"phone"`
	Mobile      *string     `json:"mobile"`
	CompanyID   *string     `json:"company_id"`
	Title       *string     `json:"title"`
	Department  *string     `json:"department"`
	LinkedinURL *string     `json:"linkedin_url"`
	Notes       *string     `json:"notes"`
	Tags        domain.Tags `json:"tags"`
}

// UpdateContactInput is the payload of PUT /contacts/{id}
type UpdateContactInput struct {
	FirstName   domain.Field[string]      `json:"first_name"`
	LastName    domain.Field[string]      `json:"last_name"`
	Email       domain.Field[string]      `json:"email"`
	Phone       domain.Field[string]      `json:"phone"`
	Mobile      domain.Field[string]      `json:"mobile"`
	CompanyID   domain.Field[string]      `json:"company_id"`
	Title       domain.Field[string]      `json:"title"`
	Department  domain.Field[string]      `json:"department"`
	LinkedinURL domain.Field[string]      `json:"linkedin_url"`
	Notes       domain.Field[string]      `json:"notes"`
	Tags        domain.Field[domain.Tags] `json:"tags"`
}

// NewContactService creates a new contact service
func NewContactService(contacts domain.ContactRepository, deals domain.DealRepository, activities domain.ActivityRepository, deps Deps) *ContactService {
	return &ContactService{
		contacts:   contacts,
		deals:      deals,
		activities: activities,
		deps:       deps.withDefaults(),
	}
}

// List returns a page of contacts with their company names
func (s *ContactService) List(ctx context.Context, f domain.ContactFilter) (domain.Page[domain.ContactRow], error) {
	f.ListParams = f.ListParams.Normalize()
	rows, total, err := s.contacts.List(ctx, f)
	if err != nil {
		return domain.Page[domain.ContactRow]{}, err
	}
	return domain.NewPage(rows, total, f.ListParams), nil
}

// Get returns a contact with its company name, recent activities and deals
func (s *ContactService) Get(ctx context.Context, id string) (*domain.ContactDetail, error) {
	row, err := s.contacts.GetRow(ctx, id)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListLinked(ctx, domain.LinkContact, id, domain.RelatedActivityLimit)
	if err != nil {
		return nil, err
	}
	deals, err := s.deals.ListByContact(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.ContactDetail{ContactRow: *row, Activities: activities, Deals: deals}, nil
}

// Create inserts a new contact
func (s *ContactService) Create(ctx context.Context, in CreateContactInput) (*domain.Contact, error) {
	now := s.deps.now()
	c := &domain.Contact{
		ID:          domain.NewID(domain.PrefixContact),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       in.Email,
		Phone:       in.Phone,
		Mobile:      in.Mobile,
		CompanyID:   in.CompanyID,
		Title:       in.Title,
		Department:  in.Department,
		LinkedinURL: in.LinkedinURL,
		Notes:       in.Notes,
		Tags:        in.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	blankToNil(&c.CompanyID)
	if err := checkStruct(c); err != nil {
		return nil, err
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.contacts.Get(ctx, c.ID)
}

// Update merges the provided fields over the stored contact
func (s *ContactService) Update(ctx context.Context, id string, in UpdateContactInput) (*domain.Contact, error) {
	var out *domain.Contact
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.contacts.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := in.FirstName.MergeRequired(&c.FirstName, "first_name"); err != nil {
			return err
		}
		if err := in.LastName.MergeRequired(&c.LastName, "last_name"); err != nil {
			return err
		}
		in.Email.Merge(&c.Email)
		in.Phone.Merge(&c.Phone)
		in.Mobile.Merge(&c.Mobile)
		in.CompanyID.Merge(&c.CompanyID)
		in.Title.Merge(&c.Title)
		in.Department.Merge(&c.Department)
		in.LinkedinURL.Merge(&c.LinkedinURL)
		in.Notes.Merge(&c.Notes)
		if in.Tags.Set {
			c.Tags = nil
			if in.Tags.Value != nil {
				c.Tags = *in.Tags.Value
			}
		}
		c.UpdatedAt = s.deps.now()

		blankToNil(&c.CompanyID)
		if err := checkStruct(c); err != nil {
			return err
		}
		if err := s.contacts.Update(ctx, c); err != nil {
			return err
		}
		out, err = s.contacts.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a contact, detaching deals, activities and converted leads
func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.contacts.Delete(ctx, id)
	})
}
