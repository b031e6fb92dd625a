package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lendingops/backend/internal/app"
	"github.com/lendingops/backend/internal/config"
	"github.com/lendingops/backend/internal/logging"
)

var (
	envFile string
	cfg     *config.Config
	logger  *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Maintain the runtime schema catalog",
	Long: `catalogctl seeds the schema description file with the built-in tables,
reconciles the built-in models into the catalog, and verifies the catalog
against the live database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		var err error
		cfg, err = config.Load(files...)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Environment)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default .env)")
}

// withApp opens the runtime for one command and closes it afterwards
func withApp(fn func(ctx context.Context, rt *app.App) error) error {
	ctx := context.Background()
	rt, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening runtime: %w", err)
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
