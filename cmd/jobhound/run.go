package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobhound/internal/aggregate"
	"jobhound/internal/cover"
	"jobhound/internal/ledger"
	"jobhound/internal/mailer"
	"jobhound/internal/model"
	"jobhound/internal/runner"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one cycle and exit",
	Long:  "One-shot cycle: fetch all sources, apply/notify, exit. With --dry-run nothing is persisted or emailed.",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not write the ledger or send email")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var led model.Ledger
	var m model.Mailer
	if dryRun {
		logger.Info("dry-run: ledger and email disabled")
		led = ledger.NewNop()
		m = mailer.NewLog(logger)
	} else {
		store, closeLedger, err := openLedger(cfg)
		if err != nil {
			logger.Error("failed to open ledger", "error", err)
			os.Exit(1)
		}
		defer closeLedger()
		led = store
		m = setupMailer(cfg, logger)
	}

	sources := buildSources(cfg, led, logger)
	if len(sources) == 0 {
		logger.Error("no sources enabled")
		os.Exit(1)
	}

	agg := aggregate.New(sources, cfg.PacingDelay, cfg.Parallel, logger)
	letters := cover.NewWriter(cfg.Applicant.Name, cfg.Email.Address, cfg.Applicant.Phone)

	r := runner.New(agg, led, m, letters, runner.Options{
		Interval:   cfg.PollInterval,
		Cooldown:   cfg.Cooldown,
		SendPacing: cfg.PacingDelay,
		CVPath:     cfg.CVPath,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := r.RunOnce(ctx); err != nil {
		logger.Error("cycle failed", "error", err)
		os.Exit(1)
	}

	logger.Info("cycle complete")
	return nil
}
