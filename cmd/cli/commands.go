package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var (
	leadStatus string
	leadSearch string
	listPage   int
	listLimit  int
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Lead operations (list, convert)",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := url.Values{}
		q.Set("page", strconv.Itoa(listPage))
		q.Set("limit", strconv.Itoa(listLimit))
		if leadStatus != "" {
			q.Set("status", leadStatus)
		}
		if leadSearch != "" {
			q.Set("search", leadSearch)
		}

		var page domain.Page[domain.Lead]
		if err := newClient(apiURL).do(cmd.Context(), http.MethodGet, "/leads", q, nil, &page); err != nil {
			return err
		}
		printLeads(cmd.OutOrStdout(), page)
		return nil
	},
}

var leadsConvertCmd = &cobra.Command{
	Use:   "convert <lead-id>",
	Short: "Convert a lead into a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Message string         `json:"message"`
			Contact domain.Contact `json:"contact"`
		}
		if err := newClient(apiURL).do(cmd.Context(), http.MethodPost, "/leads/"+url.PathEscape(args[0])+"/convert", nil, nil, &resp); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: contact %s (%s %s)\n", resp.Message, resp.Contact.ID, resp.Contact.FirstName, resp.Contact.LastName)
		return nil
	},
}

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Deal operations (move)",
}

var dealsMoveCmd = &cobra.Command{
	Use:   "move <deal-id> <stage-id>",
	Short: "Move a deal to another pipeline stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var deal domain.Deal
		body := map[string]string{"stage_id": args[1]}
		if err := newClient(apiURL).do(cmd.Context(), http.MethodPatch, "/deals/"+url.PathEscape(args[0])+"/stage", nil, body, &deal); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s moved: status=%s probability=%d%%\n", deal.Name, deal.Status, deal.Probability)
		return nil
	},
}

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Pipeline stage operations (list)",
}

var stagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pipeline stages in board order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var stages []domain.PipelineStage
		if err := newClient(apiURL).do(cmd.Context(), http.MethodGet, "/pipeline/stages", nil, nil, &stages); err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "POS\tID\tNAME\tPROBABILITY\tOUTCOME")
		for _, s := range stages {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d%%\t%s\n", s.Position, s.ID, s.Name, s.Probability, s.Outcome)
		}
		return w.Flush()
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Dashboard summaries (stats)",
}

var dashboardStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show headline CRM counts and pipeline value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var stats domain.DashboardStats
		if err := newClient(apiURL).do(cmd.Context(), http.MethodGet, "/dashboard/stats", nil, nil, &stats); err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func init() {
	leadsListCmd.Flags().StringVar(&leadStatus, "status", "", "filter by status")
	leadsListCmd.Flags().StringVar(&leadSearch, "search", "", "search name, email and company")
	leadsListCmd.Flags().IntVar(&listPage, "page", domain.DefaultPage, "page number")
	leadsListCmd.Flags().IntVar(&listLimit, "limit", domain.DefaultLimit, "page size")

	leadsCmd.AddCommand(leadsListCmd, leadsConvertCmd)
	dealsCmd.AddCommand(dealsMoveCmd)
	stagesCmd.AddCommand(stagesListCmd)
	dashboardCmd.AddCommand(dashboardStatsCmd)
}

func printLeads(out io.Writer, page domain.Page[domain.Lead]) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tEMAIL")
	for _, l := range page.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.ID, l.Name, l.Status, deref(l.Email))
	}
	w.Flush()
	fmt.Fprintf(out, "page %d of %d (%d leads)\n", page.Page, page.TotalPages, page.Total)
}

func printStats(out io.Writer, s domain.DashboardStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Leads\t%d\n", s.TotalLeads)
	fmt.Fprintf(w, "Contacts\t%d\n", s.TotalContacts)
	fmt.Fprintf(w, "Companies\t%d\n", s.TotalCompanies)
	fmt.Fprintf(w, "Open deals\t%d (%.2f)\n", s.TotalDeals, s.TotalValue)
	fmt.Fprintf(w, "Won deals\t%d (%.2f)\n", s.WonDeals, s.WonValue)
	fmt.Fprintf(w, "Pending activities\t%d (%d overdue)\n", s.PendingActivities, s.OverdueActivities)
	for _, st := range s.DealsByStage {
		fmt.Fprintf(w, "  %s\t%d (%.2f)\n", st.Stage, st.Count, st.Value)
	}
	w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
