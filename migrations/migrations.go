package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/cockroach-go/v2/crdb"
	"github.com/danthegoodman1/tabula/frame"
	"github.com/danthegoodman1/tabula/gologger"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog"
	migrate "github.com/rubenv/sql-migrate"
)

var (
	//go:embed *.sql
	migrations embed.FS

	ErrMigrationsNotRun = fmt.Errorf("not all migrations applied")
	ErrBadCensusRow     = errors.New("bad census row")

	CensusColumns = []string{"state", "sex", "age", "pop2000", "pop2008"}

	logger = gologger.NewLogger()
)

func migrationSet() (migrate.EmbedFileSystemMigrationSource, migrate.MigrationSet) {
	src := migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations,
		Root:       ".",
	}
	ms := migrate.MigrationSet{
		TableName: "migrations",
	}
	return src, ms
}

// RunMigrations applies every pending migration, returning how many ran.
func RunMigrations(db *sql.DB, dialect string) (int, error) {
	src, ms := migrationSet()
	n, err := ms.Exec(db, dialect, src, migrate.Up)
	if err != nil {
		return n, fmt.Errorf("error in migrate Exec: %w", err)
	}
	logger.Debug().Int("applied", n).Msg("ran migrations")
	return n, nil
}

func CheckMigrations(db *sql.DB, dialect string) error {
	src, ms := migrationSet()
	migration, _, err := ms.PlanMigration(db, dialect, src, migrate.Up, 0)
	if err != nil {
		return fmt.Errorf("error in PlanMigration: %w", err)
	}
	if len(migration) > 0 {
		for _, mig := range migration {
			logger.Warn().Str("migrationID", mig.Id).Msg("missing migration")
		}
		return ErrMigrationsNotRun
	}
	return nil
}

func placeholders(dialect string, n int) string {
	ph := make([]string, n)
	for i := range ph {
		if dialect == "postgres" {
			ph[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ph[i] = "?"
		}
	}
	return strings.Join(ph, ", ")
}

// LoadCensusCSV inserts the rows of a state,sex,age,pop2000,pop2008 CSV into
// the census table in a single transaction, retried when the database asks
// for it.
func LoadCensusCSV(ctx context.Context, db *sql.DB, dialect string, r io.Reader) (int, error) {
	df, err := frame.ReadCSV(r, frame.WithTypes(map[string]series.Type{
		"state":   series.String,
		"sex":     series.String,
		"age":     series.Int,
		"pop2000": series.Int,
		"pop2008": series.Int,
	}))
	if err != nil {
		return 0, fmt.Errorf("error reading census csv: %w", err)
	}
	df, err = frame.Select(df, CensusColumns...)
	if err != nil {
		return 0, fmt.Errorf("error selecting census columns: %w", err)
	}

	query := fmt.Sprintf(
		"INSERT INTO census (%s) VALUES (%s)",
		strings.Join(CensusColumns, ", "),
		placeholders(dialect, len(CensusColumns)),
	)
	rows := df.Maps()
	err = crdb.ExecuteTx(ctx, db, nil, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("error in PrepareContext: %w", err)
		}
		defer stmt.Close()

		for i, row := range rows {
			vals := make([]any, len(CensusColumns))
			for j, col := range CensusColumns {
				if row[col] == nil {
					return fmt.Errorf("%w: row %d has no %s", ErrBadCensusRow, i, col)
				}
				vals[j] = row[col]
			}
			if _, err := stmt.ExecContext(ctx, vals...); err != nil {
				return fmt.Errorf("error inserting census row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error in ExecuteTx: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int("rows", df.Nrow()).Msg("loaded census rows")
	return df.Nrow(), nil
}
