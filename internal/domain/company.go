package domain

// Company sizes
var CompanySizes = []string{"1-10", "11-50", "51-200", "201-500", "500+"}

// Company is an organization that owns contacts and deals
type Company struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name" validate:"required"`
	Domain    *string `db:"domain" json:"domain"`
	Industry  *string `db:"industry" json:"industry"`
	Size      *string `db:"size" json:"size" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 500+"`
	Address   *string `db:"address" json:"address"`
	City      *string `db:"city" json:"city"`
	State     *string `db:"state" json:"state"`
	Country   *string `db:"country" json:"country"`
	Phone     *string `db:"phone" json:"phone"`
	Website   *string `db:"website" json:"website"`
	Notes     *string `db:"notes" json:"notes"`
	CreatedAt string  `db:"created_at" json:"created_at"`
	UpdatedAt string  `db:"updated_at" json:"updated_at"`
}

// CompanyDetail is a company with its contacts, deals and recent activities
type CompanyDetail struct {
	Company
	Contacts   []Contact  `json:"contacts"`
	Deals      []Deal     `json:"deals"`
	Activities []Activity `json:"activities"`
}

// CompanyFilter narrows a company listing
type CompanyFilter struct {
	ListParams
	Industry string
	Size     string
}
