package domain

import "strings"

// Deal statuses
const (
	DealStatusOpen = "open"
	DealStatusWon  = "won"
	DealStatusLost = "lost"
)

// Stage outcomes. A deal entering a stage takes its status from the stage outcome.
const (
	OutcomeOpen = "open"
	OutcomeWon  = "won"
	OutcomeLost = "lost"
)

// Stage names recognized as terminal when a stage is created without an explicit outcome
const (
	StageNameClosedWon  = "Closed Won"
	StageNameClosedLost = "Closed Lost"
)

// DefaultStageColor is applied to stages created without a color
const DefaultStageColor = "#6366f1"

// DefaultCurrency is applied to deals created without a currency
const DefaultCurrency = "USD"

// PipelineStage is an ordered step of the sales board
type PipelineStage struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name" validate:"required"`
	Position    int    `db:"position" json:"position"`
	Color       string `db:"color" json:"color" validate:"required"`
	Probability int    `db:"probability" json:"probability" validate:"min=0,max=100"`
	Outcome     string `db:"outcome" json:"outcome" validate:"oneof=open won lost"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

// OutcomeForName infers a stage outcome from its display name
func OutcomeForName(name string) string {
	switch strings.TrimSpace(name) {
	case StageNameClosedWon:
		return OutcomeWon
	case StageNameClosedLost:
		return OutcomeLost
	default:
		return OutcomeOpen
	}
}

// Deal is a sales opportunity positioned on the pipeline
type Deal struct {
	ID                string  `db:"id" json:"id"`
	Name              string  `db:"name" json:"name" validate:"required"`
	Value             float64 `db:"value" json:"value" validate:"min=0"`
	Currency          string  `db:"currency" json:"currency" validate:"required"`
	StageID           *string `db:"stage_id" json:"stage_id"`
	Probability       int     `db:"probability" json:"probability" validate:"min=0,max=100"`
	ExpectedCloseDate *string `db:"expected_close_date" json:"expected_close_date"`
	ActualCloseDate   *string `db:"actual_close_date" json:"actual_close_date"`
	ContactID         *string `db:"contact_id" json:"contact_id"`
	CompanyID         *string `db:"company_id" json:"company_id"`
	AssignedTo        *string `db:"assigned_to" json:"assigned_to"`
	Status            string  `db:"status" json:"status" validate:"oneof=open won lost"`
	LossReason        *string `db:"loss_reason" json:"loss_reason"`
	Notes             *string `db:"notes" json:"notes"`
	CreatedAt         string  `db:"created_at" json:"created_at"`
	UpdatedAt         string  `db:"updated_at" json:"updated_at"`
}

// EnterStage applies the stage transition rules: the deal takes the stage's
// probability and its status follows the stage outcome. Terminal outcomes stamp
// the close date, open outcomes clear it. A nil stage (unknown id) reopens the
// deal with probability 0.
func (d *Deal) EnterStage(stageID string, stage *PipelineStage, now string) {
	d.StageID = &stageID
	outcome := OutcomeOpen
	d.Probability = 0
	if stage != nil {
		outcome = stage.Outcome
		d.Probability = stage.Probability
	}
	switch outcome {
	case OutcomeWon:
		d.Status = DealStatusWon
		d.ActualCloseDate = &now
	case OutcomeLost:
		d.Status = DealStatusLost
		d.ActualCloseDate = &now
	default:
		d.Status = DealStatusOpen
		d.ActualCloseDate = nil
	}
}

// DealRow is a deal joined with the names of its contact, company and stage
type DealRow struct {
	Deal
	ContactFirstName *string `db:"contact_first_name" json:"contact_first_name"`
	ContactLastName  *string `db:"contact_last_name" json:"contact_last_name"`
	CompanyName      *string `db:"company_name" json:"company_name"`
	StageName        *string `db:"stage_name" json:"stage_name"`
	StageColor       *string `db:"stage_color" json:"stage_color"`
}

// DealDetail is the single-deal view
type DealDetail struct {
	DealRow
	ContactEmail *string    `db:"contact_email" json:"contact_email"`
	Activities   []Activity `db:"-" json:"activities"`
}

// DealFilter narrows a deal listing
type DealFilter struct {
	ListParams
	StageID    string
	Status     string
	AssignedTo string
}

// PipelineColumn is one stage of the board view with its deals
type PipelineColumn struct {
	PipelineStage
	Deals      []DealRow `json:"deals"`
	TotalValue float64   `json:"totalValue"`
}
