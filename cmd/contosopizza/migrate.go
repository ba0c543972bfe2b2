package main

import (
	"fmt"
	"strconv"

	"github.com/deppfellow/contosopizza/internal/database"
	"github.com/deppfellow/contosopizza/internal/lib/utils"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := loadApp()
				if err != nil {
					return err
				}
				defer a.close()

				return database.Migrate(cmd.Context(), a.logger, a.cfg)
			},
		},
		&cobra.Command{
			Use:   "to VERSION",
			Short: "Migrate up or down to VERSION; 0 drops every table",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseInt(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}

				a, err := loadApp()
				if err != nil {
					return err
				}
				defer a.close()

				return database.MigrateTo(cmd.Context(), a.logger, a.cfg, int32(version))
			},
		},
		newMigrateStatusCmd(),
		newMigrateNewCmd(),
	)

	return cmd
}

func newMigrateStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the applied and the latest schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			status, err := database.Status(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return utils.PrintJSON(out, map[string]any{
					"current": status.Current,
					"latest":  status.Latest,
					"pending": status.Pending(),
				})
			}

			fmt.Fprintf(out, "version %d of %d\n", status.Current, status.Latest)
			if status.Pending() {
				fmt.Fprintln(out, "migrations pending, run: contosopizza migrate up")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	return cmd
}

func newMigrateNewCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create the next numbered migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := database.NewMigrationFile(dir, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "internal/database/migrations", "migrations directory")
	return cmd
}
