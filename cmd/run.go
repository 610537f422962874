package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/studychat/internal/app"
	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/config"
	"github.com/abhisek/studychat/internal/export"
	"github.com/abhisek/studychat/internal/llm"
	"github.com/abhisek/studychat/internal/store"
	"github.com/abhisek/studychat/internal/tutor"
)

// runtime holds the wired dependencies shared by the TUI and the server.
type runtime struct {
	store  *store.Store
	loader catalog.Loader
	orch   *tutor.Orchestrator
}

func (r *runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// buildRuntime opens the event log and wires provider, catalog, exporter
// and orchestrator. A provider that cannot be built is reported once on
// warn and replaced by one that fails each request.
func buildRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger, warn io.Writer) *runtime {
	rt := &runtime{}

	var events store.EventRepo = store.NopEventRepo{}
	dbPath, err := resolveDBPath(cfg)
	if err == nil {
		rt.store, err = store.Open(dbPath)
	}
	if err != nil {
		fmt.Fprintln(warn, "Event log unavailable:", err)
		logger.Warn("event log unavailable", "error", err)
	} else {
		events = rt.store.EventRepo()
	}

	var provider llm.Provider
	err = cfg.LLM.Validate()
	if err == nil {
		provider, err = llm.NewProvider(ctx, cfg.LLM, events, logger)
	}
	if err != nil {
		fmt.Fprintln(warn, "LLM provider not configured:", err)
		fmt.Fprintln(warn, "Replies will fail until a provider key is set.")
		logger.Warn("llm provider not configured", "provider", cfg.LLM.Provider, "error", err)
		provider = llm.NewUnavailableProvider(err)
	} else {
		logger.Info("llm provider ready", "provider", cfg.LLM.Provider, "model", provider.ModelID())
	}

	rt.loader = catalog.DirLoader{Dir: cfg.LessonsDir, Logger: logger}
	rt.orch = tutor.NewOrchestrator(tutor.Options{
		Provider: provider,
		Loader:   rt.loader,
		Exporter: export.NewDeckExporter(cfg.ExportsDir),
		Events:   events,
		Logger:   logger,
		Config:   cfg.Tutor(),
	})
	return rt
}

// runApp launches the terminal chat. The TUI owns the terminal, so logs go
// to the configured log file or are discarded.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := cfg.NewLogger(logOut, false)

	rt := buildRuntime(ctx, cfg, logger, os.Stderr)
	defer rt.Close()

	noSplash, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(ctx, app.Options{Session: tutor.NewSession(rt.orch), Splash: !noSplash})
}
