package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/traxovo/attendance-cli/internal/config"
	"github.com/traxovo/attendance-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "attendance-cli",
	Short: "Daily driver attendance reconciliation pipeline",
	Long:  "Reconciles driver attendance across the equipment-billing workbook and daily telematics exports, classifies each driver against shift windows, and emits auditable reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openStore opens the configured run-history backend. Driver "none" disables
// history recording.
func openStore(cmd *cobra.Command) (store.Store, error) {
	var st store.Store
	switch cfg.Store.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = s
	case "postgres":
		s, err := store.NewPostgres(cmd.Context(), cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = s
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if err := st.Migrate(cmd.Context()); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
