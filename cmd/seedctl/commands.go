package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dashseed/internal/database"
)

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Wake the database and load the demo dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.services.Seeding.Run(cmd.Context())
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			successColor.Fprintf(out, "Database seeded after %d attempt(s)\n", result.Attempts)
			rows := []struct {
				table    string
				total    int
				inserted int64
			}{
				{"users", result.Users, result.Inserted.Users},
				{"customers", result.Customers, result.Inserted.Customers},
				{"invoices", result.Invoices, result.Inserted.Invoices},
				{"revenue", result.Revenue, result.Inserted.Revenue},
			}
			for _, row := range rows {
				labelColor.Fprintf(out, "  %-10s", row.table)
				fmt.Fprintf(out, "%3d records, %3d new\n", row.total, row.inserted)
			}
			return nil
		},
	}
}

func newWakeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "wake",
		Short: "Wake a hibernating database without seeding it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts, err := c.services.Wakeup.Wake(cmd.Context())
			if err != nil {
				return describe(err)
			}
			successColor.Fprintf(cmd.OutOrStdout(), "Database is awake after %d attempt(s)\n", attempts)
			return nil
		},
	}
}

func newCheckCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Connect once and report server time, version and tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.services.Diagnostics.Check(cmd.Context())
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			successColor.Fprintln(out, "Database connection established")
			labelColor.Fprint(out, "  source:  ")
			fmt.Fprintln(out, report.Source)
			labelColor.Fprint(out, "  time:    ")
			fmt.Fprintln(out, report.Time.Format(time.RFC3339))
			labelColor.Fprint(out, "  version: ")
			fmt.Fprintln(out, report.Version)
			labelColor.Fprint(out, "  tables:  ")
			fmt.Fprintf(out, "%d [%s]\n", len(report.Tables), strings.Join(report.Tables, ", "))
			return nil
		},
	}
}

func newTokenCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the /seed endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.services.Tokens.Enabled() {
				return fmt.Errorf("SEED_TOKEN_SECRET is not set; /seed is open")
			}
			token, err := c.services.Tokens.Issue(time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

// describe prefixes database failures with their kind and SQLSTATE.
func describe(err error) error {
	kind := database.KindOf(err)
	if kind == database.KindUnknown {
		return err
	}
	return fmt.Errorf("%s (%s): %w", kind, database.CodeOf(err), err)
}
