package domain

// Lead statuses
const (
	LeadStatusNew         = "new"
	LeadStatusContacted   = "contacted"
	LeadStatusQualified   = "qualified"
	LeadStatusUnqualified = "unqualified"
	LeadStatusConverted   = "converted"
)

// LeadStatuses lists every valid lead status
var LeadStatuses = []string{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusUnqualified, LeadStatusConverted}

// LeadSources lists every valid lead source
var LeadSources = []string{"website", "referral", "cold_call", "cold_email", "linkedin", "advertisement", "event", "other"}

// Lead is a prospective contact. A converted lead is terminal.
type Lead struct {
	ID                 string  `db:"id" json:"id"`
	Name               string  `db:"name" json:"name" validate:"required"`
	Email              *string `db:"email" json:"email"`
	Phone              *string `db:"phone" json:"phone"`
	CompanyName        *string `db:"company_name" json:"company_name"`
	Title              *string `db:"title" json:"title"`
	Status             string  `db:"status" json:"status" validate:"oneof=new contacted qualified unqualified converted"`
	Source             *string `db:"source" json:"source" validate:"omitempty,oneof=website referral cold_call cold_email linkedin advertisement event other"`
	Score              *int    `db:"score" json:"score" validate:"omitempty,min=0,max=100"`
	AssignedTo         *string `db:"assigned_to" json:"assigned_to"`
	Notes              *string `db:"notes" json:"notes"`
	ConvertedContactID *string `db:"converted_contact_id" json:"converted_contact_id"`
	ConvertedAt        *string `db:"converted_at" json:"converted_at"`
	CreatedAt          string  `db:"created_at" json:"created_at"`
	UpdatedAt          string  `db:"updated_at" json:"updated_at"`
}

// IsConverted reports whether the lead reached its terminal state
func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusConverted
}

// LeadDetail is a lead with its recent activities
type LeadDetail struct {
	Lead
	Activities []Activity `json:"activities"`
}

// LeadFilter narrows a lead listing
type LeadFilter struct {
	ListParams
	Status     string
	Source     string
	AssignedTo string
}
