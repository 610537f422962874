package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studychat/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lesson progress statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLessonEvents(cmd.Context(), "", store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		printLessonStats(cmd.OutOrStdout(), summarizeLessons(events))
		return nil
	},
}

type lessonStat struct {
	LessonID      string
	Started       int
	Completed     int
	ExportFailed  int
	StepsCaptured int
	Revisions     int
}

// summarizeLessons aggregates lesson events per lesson, ordered by lesson ID.
func summarizeLessons(events []store.LessonEventRecord) []lessonStat {
	byLesson := map[string]*lessonStat{}
	for _, e := range events {
		st, ok := byLesson[e.LessonID]
		if !ok {
			st = &lessonStat{LessonID: e.LessonID}
			byLesson[e.LessonID] = st
		}
		switch e.Kind {
		case store.LessonStarted:
			st.Started++
		case store.LessonCompleted:
			st.Completed++
		case store.LessonExportFailed:
			st.ExportFailed++
		case store.LessonCaptured:
			st.StepsCaptured++
		case store.LessonAdvanced:
			if e.Revised {
				st.Revisions++
			}
		}
	}

	stats := make([]lessonStat, 0, len(byLesson))
	for _, st := range byLesson {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].LessonID < stats[j].LessonID })
	return stats
}

func printLessonStats(w io.Writer, stats []lessonStat) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No lessons started yet.")
		return
	}
	fmt.Fprintf(w, "%-20s  %7s  %9s  %13s  %8s  %9s\n",
		"Lesson", "Started", "Completed", "Export failed", "Captured", "Revisions")
	fmt.Fprintln(w, strings.Repeat("─", 78))
	for _, st := range stats {
		fmt.Fprintf(w, "%-20s  %7d  %9d  %13d  %8d  %9d\n",
			truncate(st.LessonID, 20), st.Started, st.Completed, st.ExportFailed, st.StepsCaptured, st.Revisions)
	}
}
