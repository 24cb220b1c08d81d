package domain

// Activity types
var ActivityTypes = []string{"call", "email", "meeting", "task", "note"}

// Activity statuses
const (
	ActivityStatusPending   = "pending"
	ActivityStatusCompleted = "completed"
	ActivityStatusCancelled = "cancelled"
)

// ActivityStatuses lists every valid activity status
var ActivityStatuses = []string{ActivityStatusPending, ActivityStatusCompleted, ActivityStatusCancelled}

// Activity priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ActivityPriorities lists every valid priority
var ActivityPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// RelatedActivityLimit caps the activities embedded in detail views
const RelatedActivityLimit = 20

// Activity is a logged or scheduled interaction
type Activity struct {
	ID              string  `db:"id" json:"id"`
	Type            string  `db:"type" json:"type" validate:"oneof=call email meeting task note"`
	Subject         *string `db:"subject" json:"subject"`
	Description     *string `db:"description" json:"description"`
	Status          string  `db:"status" json:"status" validate:"oneof=pending completed cancelled"`
	Priority        string  `db:"priority" json:"priority" validate:"oneof=low medium high"`
	DueDate         *string `db:"due_date" json:"due_date"`
	CompletedAt     *string `db:"completed_at" json:"completed_at"`
	DurationMinutes *int    `db:"duration_minutes" json:"duration_minutes" validate:"omitempty,min=0"`
	Outcome         *string `db:"outcome" json:"outcome"`
	LeadID          *string `db:"lead_id" json:"lead_id"`
	ContactID       *string `db:"contact_id" json:"contact_id"`
	DealID          *string `db:"deal_id" json:"deal_id"`
	CompanyID       *string `db:"company_id" json:"company_id"`
	UserID          *string `db:"user_id" json:"user_id"`
	CreatedAt       string  `db:"created_at" json:"created_at"`
	UpdatedAt       string  `db:"updated_at" json:"updated_at"`
}

// ActivityRow is an activity joined with the names of what it is linked to
type ActivityRow struct {
	Activity
	LeadName         *string `db:"lead_name" json:"lead_name"`
	ContactFirstName *string `db:"contact_first_name" json:"contact_first_name"`
	ContactLastName  *string `db:"contact_last_name" json:"contact_last_name"`
	DealName         *string `db:"deal_name" json:"deal_name"`
	UserName         *string `db:"user_name" json:"user_name"`
}

// ActivityFilter narrows an activity listing. Now is the reference instant for
// Upcoming (due_date >= now) and Overdue (due_date < now).
type ActivityFilter struct {
	ListParams
	Type      string
	Status    string
	UserID    string
	LeadID    string
	ContactID string
	DealID    string
	CompanyID string
	Upcoming  bool
	Overdue   bool
	Now       string
}

// ActivityLink names the foreign key an activity is attached through
type ActivityLink string

// Activity links usable for related lookups
const (
	LinkLead    ActivityLink = "lead_id"
	LinkContact ActivityLink = "contact_id"
	LinkDeal    ActivityLink = "deal_id"
	LinkCompany ActivityLink = "company_id"
)
