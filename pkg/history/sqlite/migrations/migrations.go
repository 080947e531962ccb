package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

// ErrDirty means a previous migration stopped halfway. The history is only a
// log, so deleting the database is the way out.
var ErrDirty = errors.New("history schema is dirty, delete the history database")

// Migrate brings the history schema in db up to date and returns the schema
// version it ends at.
func Migrate(db *sql.DB, log *zap.SugaredLogger) (uint, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return 0, fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(files, ".")
	if err != nil {
		return 0, fmt.Errorf("create migration source: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}

	from, err := schemaVersion(migrator)
	if err != nil {
		return 0, err
	}

	err = migrator.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate up from version %d: %w", from, err)
	}

	to, err := schemaVersion(migrator)
	if err != nil {
		return 0, err
	}

	if from == to {
		log.Debugw("history schema up to date", "version", to)
	} else {
		log.Infow("history schema migrated", "from", from, "to", to)
	}

	return to, nil
}

// schemaVersion returns 0 for a database that was never migrated.
func schemaVersion(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return 0, fmt.Errorf("version %d: %w", version, ErrDirty)
	}
	return version, nil
}
