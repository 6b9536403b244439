package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ai-receptionist/internal/calls"
	"ai-receptionist/internal/jobs"
)

func jobsCmd() *cobra.Command {
	var (
		contractor string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List a contractor's most recent receptionist jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if contractor == "" {
				return fmt.Errorf("--contractor is required")
			}
			ctx := cmd.Context()
			db, driver, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := jobs.NewSQLStore(db, driver).ListByContractor(ctx, contractor, limit)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd, records)
			}
			renderJobs(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVar(&contractor, "contractor", "", "contractor id")
	cmd.Flags().IntVar(&limit, "limit", jobs.DefaultListLimit, "maximum rows")
	return cmd
}

func renderJobs(w io.Writer, records []calls.JobRecord) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Created", "Status", "Caller", "Issue", "Urgency", "Confidence"})
	for _, r := range records {
		conf := ""
		if r.Confidence != nil {
			conf = strconv.FormatFloat(*r.Confidence, 'f', 2, 64)
		}
		tw.AppendRow(table.Row{r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Status, r.CallerPhone, r.IssueType, r.Urgency, conf})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "Total", len(records)})
	tw.Render()
}
