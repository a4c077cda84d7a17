package main

import (
	"os"

	"github.com/spf13/cobra"

	"jobhound/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the ledger interactively",
	Long:  "Opens a terminal browser over every listing jobhound has picked up, newest first.",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	entries, err := led.Entries()
	if err != nil {
		logger.Error("failed to read ledger entries", "error", err)
		os.Exit(1)
	}

	return history.Run(entries)
}
