package service

import (
	"context"
	"strings"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

// CompanyService manages companies
type CompanyService struct {
	companies  domain.CompanyRepository
	contacts   domain.ContactRepository
	deals      domain.DealRepository
	activities domain.ActivityRepository
	deps       Deps
}

// CreateCompanyInput is the payload of POST /companies
type CreateCompanyInput struct {
	Name     string  `json:"name"`
	Domain   *string `json:"domain"`
	Industry *string `json:"industry"`
	Size     *string `json:"size"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	Country  *string `json:"country"`
	Phone    *string `json:"phone"`
	Website  *string `json:"website"`
	Notes    *string `json:"notes"`
}

// UpdateCompanyInput is the payload of PUT /companies/{id}
type UpdateCompanyInput struct {
	Name     domain.Field[string] `json:"name"`
	Domain   domain.Field[string] `json:"domain"`
	Industry domain.Field[string] `json:"industry"`
	Size     domain.Field[string] `json:"size"`
	Address  domain.Field[string] `json:"address"`
	City     domain.Field[string] `json:"city"`
	State    domain.Field[string] `json:"state"`
	Country  domain.Field[string] `json:"country"`
	Phone    domain.Field[string] `json:"phone"`
	Website  domain.Field[string] `json:"website"`
	Notes    domain.Field[string] `json:"notes"`
}

// NewCompanyService creates a new company service
func NewCompanyService(
	companies domain.CompanyRepository,
	contacts domain.ContactRepository,
	deals domain.DealRepository,
	activities domain.ActivityRepository,
	deps Deps,
) *CompanyService {
	return &CompanyService{
		companies:  companies,
		contacts:   contacts,
		deals:      deals,
		activities: activities,
		deps:       deps.withDefaults(),
	}
}

// List returns a page of companies
func (s *CompanyService) List(ctx context.Context, f domain.CompanyFilter) (domain.Page[domain.Company], error) {
	f.ListParams = f.ListParams.Normalize()
	companies, total, err := s.companies.List(ctx, f)
	if err != nil {
		return domain.Page[domain.Company]{}, err
	}
	return domain.NewPage(companies, total, f.ListParams), nil
}

// Get returns a company with its contacts, deals and recent activities
func (s *CompanyService) Get(ctx context.Context, id string) (*domain.CompanyDetail, error) {
	company, err := s.companies.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts.ListByCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	deals, err := s.deals.ListByCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListLinked(ctx, domain.LinkCompany, id, domain.RelatedActivityLimit)
	if err != nil {
		return nil, err
	}
	return &domain.CompanyDetail{
		Company:    *company,
		Contacts:   contacts,
		Deals:      deals,
		Activities: activities,
	}, nil
}

// Create inserts a new company
func (s *CompanyService) Create(ctx context.Context, in CreateCompanyInput) (*domain.Company, error) {
	now := s.deps.now()
	c := &domain.Company{
		ID:        domain.NewID(domain.PrefixCompany),
		Name:      strings.TrimSpace(in.Name),
		Domain:    in.Domain,
		Industry:  in.Industry,
		Size:      in.Size,
		Address:   in.Address,
		City:      in.City,
		State:     in.State,
		Country:   in.Country,
		Phone:     in.Phone,
		Website:   in.Website,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	blankToNil(&c.Size)
	if err := checkStruct(c); err != nil {
		return nil, err
	}
	if err := s.companies.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.companies.Get(ctx, c.ID)
}

// Update merges the provided fields over the stored company
func (s *CompanyService) Update(ctx context.Context, id string, in UpdateCompanyInput) (*domain.Company, error) {
	var out *domain.Company
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.companies.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := in.Name.MergeRequired(&c.Name, "name"); err != nil {
			return err
		}
		in.Domain.Merge(&c.Domain)
		in.Industry.Merge(&c.Industry)
		in.Size.Merge(&c.Size)
		in.Address.Merge(&c.Address)
		in.City.Merge(&c.City)
		in.State.Merge(&c.State)
		in.Country.Merge(&c.Country)
		in.Phone.Merge(&c.Phone)
		in.Website.Merge(&c.Website)
		in.Notes.Merge(&c.Notes)
		c.UpdatedAt = s.deps.now()

		blankToNil(&c.Size)
		if err := checkStruct(c); err != nil {
			return err
		}
		if err := s.companies.Update(ctx, c); err != nil {
			return err
		}
		out, err = s.companies.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a company, detaching its contacts, deals and activities
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	return s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.companies.Delete(ctx, id)
	})
}
