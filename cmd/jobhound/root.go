package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"jobhound/internal/config"
	"jobhound/internal/keyword"
	"jobhound/internal/ledger"
	"jobhound/internal/mailer"
	"jobhound/internal/model"
	"jobhound/internal/source"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobhound",
	Short: "Remote-job radar - find, dedupe and apply",
	Long:  "jobhound polls remote-job boards, filters by your keywords, applies by email once per unique listing, and keeps an append-only ledger of everything it has seen.",
	// Default to `start` so that `jobhound` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBHOUND_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBHOUND_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBHOUND_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupMailer(cfg *config.Config, logger *slog.Logger) model.Mailer {
	if cfg.Email.Enabled {
		logger.Info("using smtp mailer", "host", cfg.Email.SMTPHost, "from", cfg.Email.Address)
		return mailer.NewSMTP(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.Address, cfg.Email.AppPassword, logger)
	}
	logger.Info("email disabled, logging mail instead")
	return mailer.NewLog(logger)
}

// ledgerStore combines the poll-cycle contract with the read access that the
// stats and history commands need.
type ledgerStore interface {
	model.Ledger
	Entries() ([]model.Entry, error)
}

// openLedger opens the configured backend. The returned func releases it.
func openLedger(cfg *config.Config) (ledgerStore, func(), error) {
	if cfg.Ledger.Backend == "sqlite" {
		l, err := ledger.OpenSQLite(cfg.Ledger.Path)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { l.Close() }, nil
	}
	l, err := ledger.OpenCSV(cfg.Ledger.Path)
	if err != nil {
		return nil, nil, err
	}
	return l, func() {}, nil
}

func buildSources(cfg *config.Config, led model.Ledger, logger *slog.Logger) []model.Source {
	client := &http.Client{Timeout: cfg.HTTP.Timeout}
	limiter := source.NewHostLimiter(cfg.HTTP.RequestsPerSec, cfg.HTTP.Burst)
	match := keyword.NewMatcher(cfg.Keywords)

	var sources []model.Source
	if cfg.Sources.RemoteOK.Enabled {
		sources = append(sources, source.NewRemoteOK(client, limiter, match, led, logger))
	}
	if cfg.Sources.WeWorkRemotely.Enabled {
		sources = append(sources, source.NewWeWorkRemotely(client, limiter, match, led, logger))
	}
	if cfg.Sources.Remotive.Enabled {
		sources = append(sources, source.NewRemotive(client, limiter, match, led, logger))
	}

	for _, s := range sources {
		logger.Info("registered source", "source", s.Name())
	}
	return sources
}
