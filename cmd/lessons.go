package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studychat/internal/catalog"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons [id]",
	Short: "List cataloged lessons, or show one lesson's steps",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		cat, warnings := catalog.LoadDir(cfg.LessonsDir)
		w := cmd.OutOrStdout()
		for _, warn := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", warn)
		}

		if len(args) == 1 {
			lesson := cat.Get(args[0])
			if lesson == nil {
				return fmt.Errorf("lesson %q not found in %s", args[0], cfg.LessonsDir)
			}
			printLesson(w, lesson)
			return nil
		}
		printCatalog(w, cat, cfg.LessonsDir)
		return nil
	},
}

func printCatalog(w io.Writer, cat catalog.Catalog, dir string) {
	if len(cat) == 0 {
		fmt.Fprintf(w, "No lessons found in %s.\n", dir)
		return
	}
	fmt.Fprintf(w, "%-20s  %-32s  %-8s  %s\n", "ID", "Title", "Version", "Steps")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for _, l := range cat.Sorted() {
		version := l.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(w, "%-20s  %-32s  %-8s  %d\n",
			truncate(l.ID, 20), truncate(l.DisplayTitle(), 32), version, len(l.Steps))
	}
}

func printLesson(w io.Writer, l *catalog.Lesson) {
	fmt.Fprintf(w, "%s (%s)\n", l.DisplayTitle(), l.ID)
	if l.Version != "" {
		fmt.Fprintf(w, "Version: %s\n", l.Version)
	}
	if l.Description != "" {
		fmt.Fprintf(w, "\n%s\n", l.Description)
	}
	fmt.Fprintln(w)
	if len(l.Steps) == 0 {
		fmt.Fprintln(w, "This lesson has no steps.")
		return
	}
	for i, step := range l.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("Step %d", i+1)
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, name)
		for _, g := range step.Goals {
			fmt.Fprintf(w, "   - %s\n", g)
		}
	}
}
