package main

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/tabula/datastore"
	"github.com/danthegoodman1/tabula/exercises"
	"github.com/danthegoodman1/tabula/utils"
)

type runFlags struct {
	plotDir   string
	exportDir string
	headRows  int
}

// buildEnv wires the data, plot and export stores. Flags win over the
// environment; an empty export dir turns exports off.
func buildEnv(ctx context.Context, flags runFlags) (exercises.Env, error) {
	env := exercises.Env{
		CensusDBURL: utils.CENSUS_DB_URL,
		HeadRows:    flags.headRows,
	}

	var err error
	env.Data, err = datastore.NewDataStore(ctx, utils.DATA_DIR)
	if err != nil {
		return env, fmt.Errorf("error creating data store: %w", err)
	}

	plotDir := flags.plotDir
	if plotDir == "" {
		plotDir = utils.PLOT_DIR
	}
	env.Plots, err = datastore.NewDataStore(ctx, plotDir)
	if err != nil {
		return env, fmt.Errorf("error creating plot store: %w", err)
	}

	exportDir := flags.exportDir
	if exportDir == "" {
		exportDir = utils.EXPORT_DIR
	}
	if exportDir != "" {
		env.Exports, err = datastore.NewDataStore(ctx, exportDir)
		if err != nil {
			return env, fmt.Errorf("error creating export store: %w", err)
		}
	}
	return env, nil
}

func closeEnv(ctx context.Context, env exercises.Env) {
	for _, store := range []datastore.DataStore{env.Data, env.Plots, env.Exports} {
		if store == nil {
			continue
		}
		if err := store.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("error shutting down data store")
		}
	}
}
