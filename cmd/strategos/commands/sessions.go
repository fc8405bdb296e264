package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/strategos-io/strategos/pkg/stores"
)

func newSessionsCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect persisted journey sessions",
	}

	cmd.AddCommand(newSessionsListCommand(version))
	cmd.AddCommand(newSessionsShowCommand(version))
	cmd.AddCommand(newSessionsPauseCommand(version))

	return cmd
}

func newSessionsListCommand(version string) *cobra.Command {
	var (
		journeyID string
		status    string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := newRuntime(ctx, version)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			store, err := rt.requireSQLite()
			if err != nil {
				return err
			}

			filter := stores.SessionFilter{Limit: limit}
			if journeyID != "" {
				filter.JourneyID = &journeyID
			}
			if status != "" {
				filter.Status = &status
			}

			sessions, err := store.ListSessions(ctx, filter)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(sessions)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tJOURNEY\tSTATUS\tUPDATED")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					s.SessionID, s.JourneyID, s.Status, s.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&journeyID, "journey", "", "filter by journey id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum sessions to list")

	return cmd
}

func newSessionsShowCommand(version string) *cobra.Command {
	var showEvents bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's progress, results, and summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sessionID := args[0]

			rt, err := newRuntime(ctx, version)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			store, err := rt.requireSQLite()
			if err != nil {
				return err
			}

			sc, err := store.LoadContext(ctx, sessionID)
			if err != nil {
				return err
			}
			results, err := store.ModuleResults(ctx, sessionID)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(map[string]interface{}{
					"context": sc,
					"results": results,
				})
			}

			fmt.Printf("Session %s\n", sc.SessionID)
			fmt.Printf("  Journey:   %s (%s)\n", sc.JourneyID, sc.JourneyType)
			fmt.Printf("  Business:  %s\n", sc.BusinessContext.Name)
			fmt.Printf("  Status:    %s\n", sc.Status)
			fmt.Printf("  Completed: %s\n", strings.Join(sc.CompletedFrameworks, ", "))
			if sc.LastError != "" {
				fmt.Printf("  Error:     %s\n", sc.LastError)
			}

			if len(results) > 0 {
				fmt.Println("\nAttempts:")
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "  FRAMEWORK\tATTEMPT\tSTATUS\tSCORE\tRECOMMENDATION")
				for _, r := range results {
					fmt.Fprintf(w, "  %s\t%d\t%s\t%.1f\t%s\n",
						r.FrameworkID, r.Attempt, r.Status, r.OverallScore, r.Recommendation)
				}
				w.Flush()
			}

			summary, err := store.GetSummary(ctx, sessionID)
			switch {
			case err == nil:
				fmt.Printf("\nSummary: %s\n", summary.Headline)
			case errors.Is(err, stores.ErrNotFound):
			default:
				return err
			}

			if showEvents {
				events, err := store.Events(ctx, sessionID)
				if err != nil {
					return err
				}
				fmt.Println("\nEvents:")
				for _, ev := range events {
					fmt.Printf("  %s [%s] %s\n", ev.CreatedAt.Format("15:04:05"), ev.Type, ev.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showEvents, "events", false, "include the event log")

	return cmd
}

func newSessionsPauseCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "pause <session-id>",
		Short: "Pause an in-progress session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := newRuntime(ctx, version)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			if _, err := rt.requireSQLite(); err != nil {
				return err
			}

			runner, err := rt.newRunner()
			if err != nil {
				return err
			}
			if err := runner.Pause(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("Session %s paused\n", args[0])
			return nil
		},
	}
}
