package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dashseed/internal/app"
	"dashseed/internal/config"
	"dashseed/internal/logging"
)

// cli holds state shared by every subcommand once the root pre-run has loaded it.
type cli struct {
	envFile  string
	logLevel string

	services app.Services
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "seedctl",
		Short: "Wake, check and seed the dashboard database",
		Long: `seedctl runs the same operations as the HTTP service from a terminal.

It reads DATABASE_URL, POSTGRES_URL and POSTGRES_URL_NON_POOLING (first set wins)
and the retry settings from the environment or a .env file.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "load variables from this file before reading the environment")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		newSeedCmd(c),
		newWakeCmd(c),
		newCheckCmd(c),
		newTokenCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil {
			return fmt.Errorf("load %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})
	logging.SetGlobal(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx))

	c.services = app.NewServices(cfg, nil)
	return nil
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	labelColor   = color.New(color.FgCyan)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
