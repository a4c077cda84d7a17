package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobhound/internal/aggregate"
	"jobhound/internal/cover"
	"jobhound/internal/runner"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the polling daemon",
	Long:  "Start the poll-apply-sleep loop; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.PollInterval.String(),
		"cooldown", cfg.Cooldown.String(),
		"keywords", len(cfg.Keywords),
		"ledger", cfg.Ledger.Path,
	)

	led, closeLedger, err := openLedger(cfg)
	if err != nil {
		logger.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer closeLedger()

	sources := buildSources(cfg, led, logger)
	if len(sources) == 0 {
		logger.Error("no sources enabled")
		os.Exit(1)
	}

	agg := aggregate.New(sources, cfg.PacingDelay, cfg.Parallel, logger)
	letters := cover.NewWriter(cfg.Applicant.Name, cfg.Email.Address, cfg.Applicant.Phone)
	m := setupMailer(cfg, logger)

	r := runner.New(agg, led, m, letters, runner.Options{
		Interval:   cfg.PollInterval,
		Cooldown:   cfg.Cooldown,
		SendPacing: cfg.PacingDelay,
		CVPath:     cfg.CVPath,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := r.Run(ctx); err != nil {
		logger.Error("runner error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
