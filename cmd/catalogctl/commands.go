package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/lendingops/backend/internal/app"
)

var verifyRepair bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the built-in tables and declare them in the schema file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *app.App) error {
			return rt.Seed(ctx)
		})
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the built-in models into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *app.App) error {
			report := rt.Sync(ctx)
			if err := printJSON(report); err != nil {
				return err
			}
			if !report.OK() {
				return errors.New("some models failed to sync")
			}
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the catalog with the live database",
	Long: `verify reports drift between catalog definitions and physical tables,
pending tables left by interrupted creations, and schema file declarations
without a catalog entry. With --repair, stale pending tables are activated
when their physical table matches or removed when it does not exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *app.App) error {
			report, err := rt.Services.Verifier.Verify(ctx, verifyRepair)
			if err != nil {
				return err
			}
			if err := printJSON(report); err != nil {
				return err
			}
			if !report.Clean() {
				return errors.New("catalog and database disagree")
			}
			return nil
		})
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyRepair, "repair", false, "repair stale pending tables")
	rootCmd.AddCommand(initCmd, syncCmd, verifyCmd)
}
