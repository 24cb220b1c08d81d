package domain

import "context"

// Transactor runs fn inside a single database transaction. Repositories
// called with the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CompanyRepository defines data access for companies
type CompanyRepository interface {
	List(ctx context.Context, f CompanyFilter) ([]Company, int, error)
	Get(ctx context.Context, id string) (*Company, error)
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	Delete(ctx context.Context, id string) error
}

// ContactRepository defines data access for contacts
type ContactRepository interface {
	List(ctx context.Context, f ContactFilter) ([]ContactRow, int, error)
	Get(ctx context.Context, id string) (*Contact, error)
	GetRow(ctx context.Context, id string) (*ContactRow, error)
	ListByCompany(ctx context.Context, companyID string) ([]Contact, error)
	Create(ctx context.Context, c *Contact) error
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id string) error
}

// LeadRepository defines data access for leads
type LeadRepository interface {
	List(ctx context.Context, f LeadFilter) ([]Lead, int, error)
	Get(ctx context.Context, id string) (*Lead, error)
	Create(ctx context.Context, l *Lead) error
	Update(ctx context.Context, l *Lead) error
	Delete(ctx context.Context, id string) error
}

// StageRepository defines data access for pipeline stages
type StageRepository interface {
	List(ctx context.Context) ([]PipelineStage, error)
	Get(ctx context.Context, id string) (*PipelineStage, error)
	First(ctx context.Context) (*PipelineStage, error)
	NextPosition(ctx context.Context) (int, error)
	Create(ctx context.Context, s *PipelineStage) error
	Update(ctx context.Context, s *PipelineStage) error
	SetPosition(ctx context.Context, id string, position int) error
	CountDeals(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

// DealRepository defines data access for deals
type DealRepository interface {
	List(ctx context.Context, f DealFilter) ([]DealRow, int, error)
	ListAll(ctx context.Context, f DealFilter) ([]DealRow, error)
	Get(ctx context.Context, id string) (*Deal, error)
	GetDetail(ctx context.Context, id string) (*DealDetail, error)
	ListByContact(ctx context.Context, contactID string) ([]Deal, error)
	ListByCompany(ctx context.Context, companyID string) ([]Deal, error)
	Create(ctx context.Context, d *Deal) error
	Update(ctx context.Context, d *Deal) error
	Delete(ctx context.Context, id string) error
}

// ActivityRepository defines data access for activities
type ActivityRepository interface {
	List(ctx context.Context, f ActivityFilter) ([]ActivityRow, int, error)
	Get(ctx context.Context, id string) (*Activity, error)
	GetRow(ctx context.Context, id string) (*ActivityRow, error)
	ListLinked(ctx context.Context, link ActivityLink, id string, limit int) ([]Activity, error)
	Recent(ctx context.Context, limit int) ([]ActivityRow, error)
	Upcoming(ctx context.Context, now string, limit int) ([]ActivityRow, error)
	Create(ctx context.Context, a *Activity) error
	Update(ctx context.Context, a *Activity) error
	Delete(ctx context.Context, id string) error
}

// UserRepository defines read access for users
type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id string) (*User, error)
}

// DashboardRepository runs the read-only rollup queries
type DashboardRepository interface {
	CountActiveLeads(ctx context.Context) (int, error)
	CountContacts(ctx context.Context) (int, error)
	CountCompanies(ctx context.Context) (int, error)
	DealTotals(ctx context.Context, status string) (CountSum, error)
	CountPendingActivities(ctx context.Context) (int, error)
	CountOverdueActivities(ctx context.Context, now string) (int, error)
	DealsByStage(ctx context.Context) ([]StageSummary, error)
	LeadsByStatus(ctx context.Context) ([]StatusCount, error)
	ClosedSince(ctx context.Context, status, since string) (CountSum, error)
	AvgWonValue(ctx context.Context) (float64, error)
	WonCloseSpans(ctx context.Context) ([]CloseSpan, error)
}
