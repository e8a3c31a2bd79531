package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/l1jgo/pheromone/internal/config"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // SQLite driver
)

// OpenSQLite opens (creating if needed) the SQLite file named by cfg.DSN.
func OpenSQLite(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.DSN); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", cfg.DSN+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.DSN, err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", cfg.DSN, err)
	}
	log.Debug("sqlite ready", zap.String("path", cfg.DSN))
	return db, nil
}
