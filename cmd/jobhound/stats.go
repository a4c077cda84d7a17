package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print ledger totals and recent entries",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	led, closeLedger, err := openLedger(cfg)
	if err != nil {
		logger.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer closeLedger()

	count, err := led.Count()
	if err != nil {
		logger.Error("failed to count ledger", "error", err)
		os.Exit(1)
	}

	fmt.Printf("ledger: %s (%s backend)\n", cfg.Ledger.Path, cfg.Ledger.Backend)
	fmt.Printf("total listings picked up: %d\n", count)

	entries, err := led.Entries()
	if err != nil {
		logger.Error("failed to read ledger entries", "error", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		return nil
	}

	const recent = 10
	start := len(entries) - recent
	if start < 0 {
		start = 0
	}
	fmt.Printf("\nmost recent:\n")
	for _, e := range entries[start:] {
		fmt.Printf("  %s  %s at %s\n    %s\n", e.ObservedAt.Local().Format(time.DateTime), e.Title, e.Company, e.URL)
	}
	return nil
}
