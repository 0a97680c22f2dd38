// Command server runs the inventory and billing API.
package main

import (
	"fmt"
	"os"

	"github.com/diewo77/go-inventory/internal/config"
	"github.com/diewo77/go-inventory/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is the configuration and logger shared by every subcommand.
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "inventory",
		Short:         "Electronics shop inventory and billing API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			e.cfg = config.Load()
			if err := e.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log, err := logger.New(e.cfg.Log)
			if err != nil {
				return err
			}
			e.log = log.With(zap.String("command", cmd.Name()))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}
	serve := newServeCmd(e)
	root.RunE = serve.RunE
	root.AddCommand(serve, newMigrateCmd(e), newSeedCmd(e))
	return root
}
