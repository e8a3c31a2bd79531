package persist

import (
	"context"
	"fmt"

	"github.com/l1jgo/pheromone/internal/config"
	"go.uber.org/zap"
)

// Open connects the snapshot store selected by cfg.Driver and applies
// pending migrations. The returned func releases the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (SnapshotStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		if err := RunMigrations(ctx, db.Pool); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return NewPgSnapshotRepo(db), db.Close, nil

	case config.DriverSQLite:
		db, err := OpenSQLite(ctx, cfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		if err := RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		return NewSQLiteSnapshotRepo(db), func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
