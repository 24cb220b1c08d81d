package service

import (
	"context"
	"math"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

// Dashboard limits and defaults
const (
	RecentActivityLimit   = 10
	UpcomingActivityLimit = 5
	DefaultMetricsPeriod  = 30
)

// DashboardService computes read-only rollups on every call
type DashboardService struct {
	dashboard  domain.DashboardRepository
	activities domain.ActivityRepository
	deps       Deps
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(dashboard domain.DashboardRepository, activities domain.ActivityRepository, deps Deps) *DashboardService {
	return &DashboardService{
		dashboard:  dashboard,
		activities: activities,
		deps:       deps.withDefaults(),
	}
}

// Stats returns the point-in-time overview
func (s *DashboardService) Stats(ctx context.Context) (stats *domain.DashboardStats, err error) {
	ctx, span := startSpan(ctx, "DashboardService.Stats")
	defer func() { endSpan(span, err) }()

	now := s.deps.now()
	st := &domain.DashboardStats{}

	if st.TotalLeads, err = s.dashboard.CountActiveLeads(ctx); err != nil {
		return nil, err
	}
	if st.TotalContacts, err = s.dashboard.CountContacts(ctx); err != nil {
		return nil, err
	}
	if st.TotalCompanies, err = s.dashboard.CountCompanies(ctx); err != nil {
		return nil, err
	}
	open, err := s.dashboard.DealTotals(ctx, domain.DealStatusOpen)
	if err != nil {
		return nil, err
	}
	st.TotalDeals, st.TotalValue = open.Count, open.Value
	won, err := s.dashboard.DealTotals(ctx, domain.DealStatusWon)
	if err != nil {
		return nil, err
	}
	st.WonDeals, st.WonValue = won.Count, won.Value

	if st.PendingActivities, err = s.dashboard.CountPendingActivities(ctx); err != nil {
		return nil, err
	}
	if st.OverdueActivities, err = s.dashboard.CountOverdueActivities(ctx, now); err != nil {
		return nil, err
	}
	if st.DealsByStage, err = s.dashboard.DealsByStage(ctx); err != nil {
		return nil, err
	}
	if st.LeadsByStatus, err = s.dashboard.LeadsByStatus(ctx); err != nil {
		return nil, err
	}
	if st.RecentActivities, err = s.activities.Recent(ctx, RecentActivityLimit); err != nil {
		return nil, err
	}
	if st.UpcomingActivities, err = s.activities.Upcoming(ctx, now, UpcomingActivityLimit); err != nil {
		return nil, err
	}
	return st, nil
}

// Metrics summarizes deals closed in the last period days. A period below 1
// falls back to DefaultMetricsPeriod.
func (s *DashboardService) Metrics(ctx context.Context, period int) (metrics *domain.DashboardMetrics, err error) {
	ctx, span := startSpan(ctx, "DashboardService.Metrics")
	defer func() { endSpan(span, err) }()

	if period < 1 {
		period = DefaultMetricsPeriod
	}
	since := domain.FormatTimestamp(s.deps.Clock().UTC().AddDate(0, 0, -period))

	m := &domain.DashboardMetrics{Period: period}
	won, err := s.dashboard.ClosedSince(ctx, domain.DealStatusWon, since)
	if err != nil {
		return nil, err
	}
	lost, err := s.dashboard.ClosedSince(ctx, domain.DealStatusLost, since)
	if err != nil {
		return nil, err
	}
	m.ClosedDeals = domain.ClosedDeals{
		Won:       won.Count,
		Lost:      lost.Count,
		WonValue:  won.Value,
		LostValue: lost.Value,
	}
	m.ConversionRate = ConversionRate(won.Count, lost.Count)

	if m.AvgDealValue, err = s.dashboard.AvgWonValue(ctx); err != nil {
		return nil, err
	}
	spans, err := s.dashboard.WonCloseSpans(ctx)
	if err != nil {
		return nil, err
	}
	m.AvgDaysToClose = AvgDaysToClose(spans)
	return m, nil
}

// ConversionRate is won/(won+lost) as a percentage rounded to one decimal, 0 with no closes
func ConversionRate(won, lost int) float64 {
	total := won + lost
	if total == 0 {
		return 0
	}
	return math.Round(float64(won)/float64(total)*1000) / 10
}

// AvgDaysToClose averages close minus creation in days, rounded to the nearest
// day. Spans with unparseable timestamps are skipped.
func AvgDaysToClose(spans []domain.CloseSpan) int {
	var total float64
	n := 0
	for _, sp := range spans {
		created, err := domain.ParseTimestamp(sp.CreatedAt)
		if err != nil {
			continue
		}
		closed, err := domain.ParseTimestamp(sp.ActualCloseDate)
		if err != nil {
			continue
		}
		total += closed.Sub(created).Hours() / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(total / float64(n)))
}
