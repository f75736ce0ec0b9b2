package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/cleaning-scheduler/internal/db"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/logging"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cleaning-scheduler",
	Short: "Cleaning business scheduling API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		var err error
		logger, err = logging.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := openDB()
		if err != nil {
			return err
		}
		if err := dbpkg.Migrate(gdb); err != nil {
			return err
		}
		logger.Info("migration complete")
		return nil
	},
}

func openDB() (*gorm.DB, error) {
	gdb, err := dbpkg.Open(cfg)
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
