package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/crm/internal/repository"
	"github.com/aryan0dhankhar/crm/internal/testutil"
	"github.com/aryan0dhankhar/crm/pkg/cache"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	db      *sqlx.DB
	advance func(time.Duration)
	deps    Deps

	leadRepo     *repository.LeadRepository
	contactRepo  *repository.ContactRepository
	activityRepo *repository.ActivityRepository

	leads      *LeadService
	contacts   *ContactService
	companies  *CompanyService
	deals      *DealService
	pipeline   *PipelineService
	activities *ActivityService
	dashboard  *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Discard()
	clock, advance := testutil.FixedClock(epoch)
	deps := Deps{Tx: repository.NewTransactor(db), Clock: clock, Logger: log}

	companies := repository.NewCompanyRepository(db, log)
	contacts := repository.NewContactRepository(db, log)
	leads := repository.NewLeadRepository(db, log)
	stages := repository.NewStageRepository(db, log)
	deals := repository.NewDealRepository(db, log)
	activities := repository.NewActivityRepository(db, log)

	return &fixture{
		db:           db,
		advance:      advance,
		deps:         deps,
		leadRepo:     leads,
		contactRepo:  contacts,
		activityRepo: activities,
		leads:        NewLeadService(leads, contacts, activities, deps),
		contacts:     NewContactService(contacts, deals, activities, deps),
		companies:    NewCompanyService(companies, contacts, deals, activities, deps),
		deals:        NewDealService(deals, stages, activities, deps),
		pipeline:     NewPipelineService(stages, cache.NewMemory(), time.Minute, deps),
		activities:   NewActivityService(activities, domain.DefaultUserID, deps),
		dashboard:    NewDashboardService(repository.NewDashboardRepository(db, log), activities, deps),
	}
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in, first, last string
	}{
		{"John Doe", "John", "Doe"},
		{"Madonna", "Madonna", ""},
		{"  Mary   Jane Watson ", "Mary", "Jane Watson"},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, last := SplitName(tc.in)
		assert.Equal(t, tc.first, first, tc.in)
		assert.Equal(t, tc.last, last, tc.in)
	}
}

func TestLeadConvert(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	lead, err := f.leads.Create(ctx, CreateLeadInput{
		Name:  "John Doe",
		Email: ptr("john@example.com"),
		Phone: ptr("555-0100"),
		Title: ptr("CTO"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusNew, lead.Status)

	f.advance(time.Hour)
	contact, err := f.leads.Convert(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", contact.FirstName)
	assert.Equal(t, "Doe", contact.LastName)
	assert.Equal(t, ptr("john@example.com"), contact.Email)
	assert.Equal(t, ptr("CTO"), contact.Title)

	converted, err := f.leadRepo.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusConverted, converted.Status)
	assert.Equal(t, &contact.ID, converted.ConvertedContactID)
	require.NotNil(t, converted.ConvertedAt)
	assert.Equal(t, domain.FormatTimestamp(epoch.Add(time.Hour)), *converted.ConvertedAt)

	_, err = f.leads.Convert(ctx, lead.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, 1, f.count(t, "contacts"), "second conversion must not create a contact")
}

func TestLeadConvertSingleWordName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	lead, err := f.leads.Create(ctx, CreateLeadInput{Name: "Madonna"})
	require.NoError(t, err)

	contact, err := f.leads.Convert(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Madonna", contact.FirstName)
	assert.Equal(t, "", contact.LastName)
}

func TestLeadConvertUnknownLead(t *testing.T) {
	f := newFixture(t)
	_, err := f.leads.Convert(context.Background(), "lead_missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

type failingLeadRepo struct {
	domain.LeadRepository
}

func (failingLeadRepo) Update(context.Context, *domain.Lead) error {
	return errors.New("disk full")
}

func TestLeadConvertRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	lead, err := f.leads.Create(ctx, CreateLeadInput{Name: "Jane Roe"})
	require.NoError(t, err)

	svc := NewLeadService(failingLeadRepo{f.leadRepo}, f.contactRepo, f.activityRepo, f.deps)
	_, err = svc.Convert(ctx, lead.ID)
	require.Error(t, err)

	assert.Equal(t, 0, f.count(t, "contacts"), "contact insert must roll back with the lead update")
	stored, err := f.leadRepo.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusNew, stored.Status)
	assert.Nil(t, stored.ConvertedContactID)
}

func TestLeadStatusRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.leads.Create(ctx, CreateLeadInput{Name: "Early", Status: ptr(domain.LeadStatusConverted)})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	lead, err := f.leads.Create(ctx, CreateLeadInput{Name: "Later"})
	require.NoError(t, err)

	_, err = f.leads.Update(ctx, lead.ID, UpdateLeadInput{Status: domain.Some(domain.LeadStatusConverted)})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = f.leads.Convert(ctx, lead.ID)
	require.NoError(t, err)

	_, err = f.leads.Update(ctx, lead.ID, UpdateLeadInput{Status: domain.Some(domain.LeadStatusQualified)})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	updated, err := f.leads.Update(ctx, lead.ID, UpdateLeadInput{Notes: domain.Some("follow up in Q3")})
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusConverted, updated.Status)
}

func TestLeadValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.leads.Create(ctx, CreateLeadInput{Name: "  "})
	require.Error(t, err)
	msg, _ := domain.Message(err)
	assert.Equal(t, "name is required", msg)

	_, err = f.leads.Create(ctx, CreateLeadInput{Name: "Scored", Score: ptr(101)})
	msg, _ = domain.Message(err)
	assert.Equal(t, "score must be at most 100", msg)

	_, err = f.leads.Create(ctx, CreateLeadInput{Name: "Sourced", Source: ptr("carrier_pigeon")})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestEmptyUpdateOnlyRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	lead, err := f.leads.Create(ctx, CreateLeadInput{Name: "Unchanged", Email: ptr("u@example.com")})
	require.NoError(t, err)

	f.advance(time.Minute)
	updated, err := f.leads.Update(ctx, lead.ID, UpdateLeadInput{})
	require.NoError(t, err)

	assert.Equal(t, domain.FormatTimestamp(epoch.Add(time.Minute)), updated.UpdatedAt)
	updated.UpdatedAt = lead.UpdatedAt
	assert.Equal(t, lead, updated)
}

func TestUpdateNullClearsOptionalField(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	lead, err := f.leads.Create(ctx, CreateLeadInput{Name: "Nully", Phone: ptr("555")})
	require.NoError(t, err)

	updated, err := f.leads.Update(ctx, lead.ID, UpdateLeadInput{Phone: domain.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, updated.Phone)

	_, err = f.leads.Update(ctx, lead.ID, UpdateLeadInput{Name: domain.Null[string]()})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	company, err := f.companies.Create(ctx, CreateCompanyInput{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, f.companies.Delete(ctx, company.ID))
	_, err = f.companies.Get(ctx, company.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	contact, err := f.contacts.Create(ctx, CreateContactInput{FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)
	require.NoError(t, f.contacts.Delete(ctx, contact.ID))
	_, err = f.contacts.Get(ctx, contact.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Gone"})
	require.NoError(t, err)
	require.NoError(t, f.deals.Delete(ctx, deal.ID))
	_, err = f.deals.Get(ctx, deal.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	assert.True(t, errors.Is(f.deals.Delete(ctx, deal.ID), domain.ErrNotFound))
}

func TestCompanyDetailIncludesRelations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	company, err := f.companies.Create(ctx, CreateCompanyInput{Name: "Globex"})
	require.NoError(t, err)
	_, err = f.contacts.Create(ctx, CreateContactInput{FirstName: "Hank", LastName: "Scorpio", CompanyID: &company.ID})
	require.NoError(t, err)
	_, err = f.deals.Create(ctx, CreateDealInput{Name: "Doomsday device", CompanyID: &company.ID, Value: ptr(1e6)})
	require.NoError(t, err)

	detail, err := f.companies.Get(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Contacts, 1)
	assert.Len(t, detail.Deals, 1)
	assert.Empty(t, detail.Activities)
}
