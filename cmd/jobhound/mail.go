package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jobhound/internal/model"
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Email subcommands",
}

var mailTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test email",
	Long:  "Sends a test email to yourself using the configured SMTP account.",
	RunE:  runMailTest,
}

func init() {
	rootCmd.AddCommand(mailCmd)
	mailCmd.AddCommand(mailTestCmd)
}

func runMailTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	m := setupMailer(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	msg := model.Message{
		Subject:    "jobhound test - integration verified",
		Body:       "This is a test email from jobhound. SMTP delivery and the CV attachment are working.",
		Attachment: cfg.CVPath,
	}
	if err := m.Send(ctx, msg); err != nil {
		logger.Error("test email failed", "error", err)
		os.Exit(1)
	}

	logger.Info("test email sent successfully")
	return nil
}
