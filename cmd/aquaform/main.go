// cmd/aquaform/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aquaform/internal/advisor"
	"aquaform/internal/catalog"
	"aquaform/internal/config"
	"aquaform/internal/logging"
	"aquaform/internal/storage"
)

const version = "1.0.0"

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aquaform",
	Short: "AquaForm - aquaculture feed formulation workbench",
	Long: `AquaForm blends feed ingredients for aquaculture species, compares the
resulting nutrient profile against species targets and can ask an AI advisor
for an optimised mix.

Run "aquaform tui" for the interactive workbench or "aquaform serve" for the
HTTP tool server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Name() == "tui" {
			// Keep the screen clean: log to file or nowhere.
			logger, err = logging.ForTUI(verbose || cfg.Log.Verbose, cfg.Log.File)
		} else {
			logger, err = logging.New(verbose || cfg.Log.Verbose, cfg.Log.File)
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "aquaform version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(blendCmd)
	rootCmd.AddCommand(speciesCmd)
	rootCmd.AddCommand(ingredientsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func openCatalog() (*catalog.Catalog, error) {
	lib, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return lib, nil
}

func openAdvisor(ctx context.Context) (advisor.Advisor, error) {
	adv, err := advisor.New(ctx, cfg.AI.Advisor(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI advisor: %w", err)
	}
	logger.Info("AI advisor ready", zap.String("advisor", adv.Name()), zap.String("status", advisor.Status(adv)))
	return adv, nil
}

// openStore returns nil when persistence is disabled.
func openStore() (*storage.SQLiteStorage, error) {
	if cfg.Storage.DBPath == "" {
		logger.Warn("storage disabled: formulations will not be persisted")
		return nil, nil
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return store, nil
}
