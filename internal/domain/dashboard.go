package domain

// StageSummary is the open-deal rollup of one pipeline stage
type StageSummary struct {
	Stage string  `db:"stage" json:"stage"`
	Color string  `db:"color" json:"color"`
	Count int     `db:"count" json:"count"`
	Value float64 `db:"value" json:"value"`
}

// StatusCount counts leads in one status
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

// CountSum is a row count with a summed value
type CountSum struct {
	Count int     `db:"count"`
	Value float64 `db:"value"`
}

// DashboardStats is the point-in-time overview
type DashboardStats struct {
	TotalLeads         int            `json:"totalLeads"`
	TotalContacts      int            `json:"totalContacts"`
	TotalCompanies     int            `json:"totalCompanies"`
	TotalDeals         int            `json:"totalDeals"`
	TotalValue         float64        `json:"totalValue"`
	WonDeals           int            `json:"wonDeals"`
	WonValue           float64        `json:"wonValue"`
	PendingActivities  int            `json:"pendingActivities"`
	OverdueActivities  int            `json:"overdueActivities"`
	DealsByStage       []StageSummary `json:"dealsByStage"`
	LeadsByStatus      []StatusCount  `json:"leadsByStatus"`
	RecentActivities   []ActivityRow  `json:"recentActivities"`
	UpcomingActivities []ActivityRow  `json:"upcomingActivities"`
}

// ClosedDeals summarizes deals closed inside a metrics window
type ClosedDeals struct {
	Won       int     `json:"won"`
	Lost      int     `json:"lost"`
	WonValue  float64 `json:"wonValue"`
	LostValue float64 `json:"lostValue"`
}

// DashboardMetrics is the period-bounded performance summary
type DashboardMetrics struct {
	Period         int         `json:"period"`
	ClosedDeals    ClosedDeals `json:"closedDeals"`
	ConversionRate float64     `json:"conversionRate"`
	AvgDealValue   float64     `json:"avgDealValue"`
	AvgDaysToClose int         `json:"avgDaysToClose"`
}

// CloseSpan is the creation and close instant of a won deal
type CloseSpan struct {
	CreatedAt       string `db:"created_at"`
	ActualCloseDate string `db:"actual_close_date"`
}
