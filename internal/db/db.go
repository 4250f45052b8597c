package db

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// DB is the process-wide connection pool. Init must run before any
// store method is called.
var DB *sqlx.DB

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Init connects to PostgreSQL, retrying while the database is still
// coming up alongside the server.
func Init(databaseURL string) error {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		DB, err = sqlx.Connect("postgres", databaseURL)
		if err == nil {
			log.Info().Msg("connected to database")
			return nil
		}
		log.Warn().Err(err).Int("attempt", attempt).
			Msgf("database not reachable, retrying in %s", connectBackoff)
		time.Sleep(connectBackoff)
	}
	return fmt.Errorf("could not connect to database after %d attempts: %w", connectAttempts, err)
}

// RunMigrations executes every "*.up.sql" file under migrationsPath in
// name order. Statements are expected to be idempotent; there is no
// version table.
func RunMigrations(migrationsPath string) error {
	files, err := filepath.Glob(filepath.Join(migrationsPath, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		stmt, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("could not read migration %q: %w", file, err)
		}
		if len(stmt) == 0 {
			continue
		}
		if _, err := DB.Exec(string(stmt)); err != nil {
			return fmt.Errorf("error executing migration %q: %w", file, err)
		}
		log.Debug().Str("file", filepath.Base(file)).Msg("migration applied")
	}
	return nil
}
