package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	_ "github.com/sijms/go-ora/v2"  // Oracle driver
	"go.uber.org/zap"

	"formcraft/internal/config"
	"formcraft/internal/logger"
)

func init() {
	// go-ora registers as "oracle", which sqlx does not know; it takes
	// :name placeholders.
	sqlx.BindDriver(config.DBDriverOracle, sqlx.NAMED)
}

// Connect opens and pings a pool for the configured driver.
func Connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.DB.Driver {
	case config.DBDriverOracle, config.DBDriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DB.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, cfg.DB.Driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DB.Driver, err)
	}
	if cfg.DB.Driver == config.DBDriverSQLite {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	logger.Get().Info("connected to database", zap.String("driver", cfg.DB.Driver))
	return db, nil
}
