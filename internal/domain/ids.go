package domain

import "github.com/oklog/ulid/v2"

// ID prefixes per entity
const (
	PrefixCompany  = "company"
	PrefixContact  = "contact"
	PrefixLead     = "lead"
	PrefixDeal     = "deal"
	PrefixStage    = "stage"
	PrefixActivity = "activity"
)

// NewID returns a sortable unique identifier such as lead_01J9Z...
func NewID(prefix string) string {
	return prefix + "_" + ulid.Make().String()
}
