package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studychat/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded lesson events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		session, _ := cmd.Flags().GetString("session")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLessonEvents(cmd.Context(), session, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		printLessonEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

func printLessonEvents(w io.Writer, events []store.LessonEventRecord) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No lesson events found.")
		return
	}

	fmt.Fprintf(w, "%-19s  %-8s  %-16s  %-13s  %-4s  %s\n",
		"Timestamp", "Session", "Lesson", "Event", "Step", "Detail")
	fmt.Fprintln(w, strings.Repeat("─", 90))
	for _, e := range events {
		kind := string(e.Kind)
		if e.Revised {
			kind += "*"
		}
		fmt.Fprintf(w, "%-19s  %-8s  %-16s  %-13s  %-4d  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			truncate(e.SessionID, 8),
			truncate(e.LessonID, 16),
			kind,
			e.StepIndex+1,
			e.Detail,
		)
	}
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 50, "Number of events to show (0 for all)")
	historyCmd.Flags().StringP("session", "s", "", "Only show events for this session ID")
}
