package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SQLiteSnapshotRepo stores snapshots in a local SQLite file.
type SQLiteSnapshotRepo struct {
	db *sql.DB
}

func NewSQLiteSnapshotRepo(db *sql.DB) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: db}
}

func (r *SQLiteSnapshotRepo) SaveSnapshot(ctx context.Context, row *SnapshotRow) error {
	prepareRow(row)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pheromone_snapshots
		   (snapshot_id, map_id, width, height, tick, populated, reason, grid_blob, taken_unix_nanos)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID.String(), row.MapID, row.Width, row.Height, row.Tick,
		row.Populated, row.Reason, row.Blob, row.TakenUnixNanos,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot map %d: %w", row.MapID, err)
	}
	return nil
}

func (r *SQLiteSnapshotRepo) LatestSnapshot(ctx context.Context, mapID int16) (*SnapshotRow, error) {
	var (
		row SnapshotRow
		id  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT snapshot_id, map_id, width, height, tick, populated, reason, grid_blob, taken_unix_nanos
		 FROM pheromone_snapshots WHERE map_id = ?
		 ORDER BY tick DESC, taken_unix_nanos DESC LIMIT 1`, mapID,
	).Scan(&id, &row.MapID, &row.Width, &row.Height, &row.Tick,
		&row.Populated, &row.Reason, &row.Blob, &row.TakenUnixNanos)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest snapshot map %d: %w", mapID, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot map %d: %w", mapID, err)
	}
	if row.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("latest snapshot map %d: parse id: %w", mapID, err)
	}
	return &row, nil
}

func (r *SQLiteSnapshotRepo) ListSnapshots(ctx context.Context, mapID int16, limit int) ([]SnapshotRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT snapshot_id, map_id, width, height, tick, populated, reason, taken_unix_nanos
		 FROM pheromone_snapshots WHERE map_id = ?
		 ORDER BY tick DESC, taken_unix_nanos DESC LIMIT ?`, mapID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots map %d: %w", mapID, err)
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var (
			s  SnapshotRow
			id string
		)
		if err := rows.Scan(&id, &s.MapID, &s.Width, &s.Height, &s.Tick,
			&s.Populated, &s.Reason, &s.TakenUnixNanos); err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("list snapshots map %d: parse id: %w", mapID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteSnapshotRepo) PruneSnapshots(ctx context.Context, mapID int16, keep int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pheromone_snapshots
		 WHERE map_id = ? AND snapshot_id NOT IN (
		   SELECT snapshot_id FROM pheromone_snapshots WHERE map_id = ?
		   ORDER BY tick DESC, taken_unix_nanos DESC LIMIT ?)`, mapID, mapID, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots map %d: %w", mapID, err)
	}
	return res.RowsAffected()
}
