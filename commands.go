package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/danthegoodman1/tabula/exercises"
	"github.com/danthegoodman1/tabula/migrations"
	"github.com/danthegoodman1/tabula/sqldb"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the exercises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := exercises.GetCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range catalog.Exercises {
				fmt.Fprintf(out, "%-16s %s\n", e.Name, e.Title)
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run <exercise>",
		Short: "Run one exercise, printing its output and writing its chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := buildEnv(ctx, flags)
			if err != nil {
				return err
			}
			defer closeEnv(ctx, env)

			res, err := exercises.Run(ctx, args[0], env)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, res.Text)
			if !strings.HasSuffix(res.Text, "\n") {
				fmt.Fprintln(out)
			}
			if res.PlotLocation != "" {
				fmt.Fprintf(out, "plot: %s\n", res.PlotLocation)
			}
			if res.ExportLocation != "" {
				fmt.Fprintf(out, "export: %s\n", res.ExportLocation)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.plotDir, "plot-dir", "", "where charts are written (default $PLOT_DIR)")
	cmd.Flags().StringVar(&flags.exportDir, "export-dir", "", "export the exercise's table as parquet here (default $EXPORT_DIR)")
	cmd.Flags().IntVar(&flags.headRows, "head", 0, "rows printed by head (default 5)")
	return cmd
}

func newSeedCensusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-census <sqlite-path|db-url> [csv]",
		Short: "Create the census table and optionally load rows from a CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			url := args[0]
			if !strings.Contains(url, "://") {
				url = "sqlite:///" + url
			}

			db, target, err := sqldb.Create(ctx, url)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := migrations.RunMigrations(db, target.Dialect)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "applied %d migrations\n", applied)

			if len(args) < 2 {
				return nil
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("error in os.Open: %w", err)
			}
			defer f.Close()
			rows, err := migrations.LoadCensusCSV(ctx, db, target.Dialect, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "loaded %d census rows\n", rows)
			return nil
		},
	}
}
