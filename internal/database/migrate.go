package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"formcraft/internal/config"
	"formcraft/internal/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations.
type Migrator interface {
	// Up applies every pending migration.
	Up(ctx context.Context) error
	// Down rolls back steps migrations, or all of them when steps <= 0.
	Down(ctx context.Context, steps int) error
	// Version returns the current version; 0 means no migration applied.
	Version(ctx context.Context) (uint, bool, error)
}

// NewMigrator returns the migrator for db's driver.
func NewMigrator(db *sqlx.DB) (Migrator, error) {
	switch db.DriverName() {
	case config.DBDriverSQLite:
		return newSQLiteMigrator(db)
	case config.DBDriverOracle:
		return &oracleMigrator{db: db, dir: "migrations/oracle"}, nil
	}
	return nil, fmt.Errorf("no migrations for driver %q", db.DriverName())
}

// sqliteMigrator drives golang-migrate over the embedded sqlite files.
type sqliteMigrator struct {
	m *migrate.Migrate
}

func newSQLiteMigrator(db *sqlx.DB) (*sqliteMigrator, error) {
	src, err := iofs.New(migrationsFS, "migrations/sqlite")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	drv, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("init sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, config.DBDriverSQLite, drv)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return &sqliteMigrator{m: m}, nil
}

func (s *sqliteMigrator) Up(context.Context) error {
	if err := s.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func (s *sqliteMigrator) Down(_ context.Context, steps int) error {
	var err error
	if steps <= 0 {
		err = s.m.Down()
	} else {
		err = s.m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func (s *sqliteMigrator) Version(context.Context) (uint, bool, error) {
	v, dirty, err := s.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// oracleMigrator runs the embedded Oracle files itself; golang-migrate ships
// no driver for go-ora. It keeps the same schema_migrations layout.
type oracleMigrator struct {
	db  *sqlx.DB
	dir string
}

type migrationFile struct {
	version uint
	name    string
}

func (o *oracleMigrator) files(direction string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(migrationsFS, o.dir)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}
	var files []migrationFile
	suffix := "." + direction + ".sql"
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(prefix, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad migration file name %s: %w", e.Name(), err)
		}
		files = append(files, migrationFile{version: uint(v), name: e.Name()})
	}
	slices.SortFunc(files, func(a, b migrationFile) int { return int(a.version) - int(b.version) })
	return files, nil
}

func (o *oracleMigrator) ensureTable(ctx context.Context) error {
	var count int
	err := o.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`)
	if err != nil {
		return fmt.Errorf("check schema_migrations: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err = o.db.ExecContext(ctx, `CREATE TABLE schema_migrations (version NUMBER(19) NOT NULL PRIMARY KEY, dirty NUMBER(1) NOT NULL)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func (o *oracleMigrator) Version(ctx context.Context) (uint, bool, error) {
	if err := o.ensureTable(ctx); err != nil {
		return 0, false, err
	}
	var rows []struct {
		Version uint `db:"version"`
		Dirty   int  `db:"dirty"`
	}
	err := o.db.SelectContext(ctx, &rows, `SELECT version "version", dirty "dirty" FROM schema_migrations`)
	if err != nil {
		return 0, false, fmt.Errorf("read schema_migrations: %w", err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].Version, rows[0].Dirty != 0, nil
}

func (o *oracleMigrator) setVersion(ctx context.Context, version uint, dirty bool) error {
	if _, err := o.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return fmt.Errorf("reset schema_migrations: %w", err)
	}
	if version == 0 && !dirty {
		return nil
	}
	d := 0
	if dirty {
		d = 1
	}
	_, err := o.db.ExecContext(ctx, o.db.Rebind(`INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`), version, d)
	if err != nil {
		return fmt.Errorf("write schema_migrations: %w", err)
	}
	return nil
}

func (o *oracleMigrator) run(ctx context.Context, file migrationFile, target uint) error {
	content, err := fs.ReadFile(migrationsFS, path.Join(o.dir, file.name))
	if err != nil {
		return fmt.Errorf("could not read migration file %s: %w", file.name, err)
	}
	if err := o.setVersion(ctx, file.version, true); err != nil {
		return err
	}
	for _, stmt := range splitStatements(string(content)) {
		if _, err := o.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not execute migration %s: %w", file.name, err)
		}
	}
	if err := o.setVersion(ctx, target, false); err != nil {
		return err
	}
	logger.Get().Info("executed migration", zap.String("file", file.name))
	return nil
}

func (o *oracleMigrator) Up(ctx context.Context) error {
	current, dirty, err := o.Version(ctx)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is dirty at version %d; fix it manually", current)
	}
	files, err := o.files("up")
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.version <= current {
			continue
		}
		if err := o.run(ctx, f, f.version); err != nil {
			return err
		}
	}
	return nil
}

func (o *oracleMigrator) Down(ctx context.Context, steps int) error {
	current, dirty, err := o.Version(ctx)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is dirty at version %d; fix it manually", current)
	}
	files, err := o.files("down")
	if err != nil {
		return err
	}
	slices.Reverse(files)
	done := 0
	for i, f := range files {
		if f.version > current {
			continue
		}
		if steps > 0 && done == steps {
			break
		}
		var target uint
		if i+1 < len(files) {
			target = files[i+1].version
		}
		if err := o.run(ctx, f, target); err != nil {
			return err
		}
		done++
	}
	return nil
}

// splitStatements splits a migration file on semicolons. Oracle executes one
// statement per call and rejects the trailing semicolon.
func splitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
