package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danthegoodman1/tabula/gologger"
	"github.com/danthegoodman1/tabula/http_server"
	"github.com/danthegoodman1/tabula/migrations"
	"github.com/danthegoodman1/tabula/sqldb"
	"github.com/danthegoodman1/tabula/utils"
	"github.com/spf13/cobra"
)

var logger = gologger.NewLogger()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tabula",
		Short: "Tabular data import, cleaning, merging, plotting and querying exercises",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return utils.LoadEnv()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newListCmd(), newRunCmd(), newServeCmd(), newSeedCensusCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the exercises over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	logger.Debug().Msg("starting tabula server")

	if utils.CENSUS_DB_URL != "" {
		db, target, err := sqldb.Open(ctx, utils.CENSUS_DB_URL)
		if err != nil {
			return fmt.Errorf("error connecting to census db: %w", err)
		}
		err = migrations.CheckMigrations(db, target.Dialect)
		db.Close()
		if err != nil {
			return fmt.Errorf("error checking migrations: %w", err)
		}
	}

	env, err := buildEnv(ctx, runFlags{})
	if err != nil {
		return err
	}

	httpServer := http_server.StartHTTPServer(env)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	// For AWS ALB needing some time to de-register pod
	// Convert the time to seconds
	sleepTime := utils.GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
	logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))

	time.Sleep(time.Second * time.Duration(sleepTime))
	logger.Info().Msg(fmt.Sprintf("slept for %ds, exiting", sleepTime))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}
	closeEnv(shutdownCtx, env)
	return nil
}
