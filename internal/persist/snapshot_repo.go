package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrSnapshotNotFound is returned when a map has never been saved.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRow is one saved pheromone grid. Blob is the encoded
// pheromone.Snapshot.
type SnapshotRow struct {
	ID             uuid.UUID `json:"snapshot_id"`
	MapID          int16     `json:"map_id"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Tick           int64     `json:"tick"` // simulation tick when taken
	Populated      int       `json:"populated"`
	Reason         string    `json:"reason"` // "auto", "shutdown", ...
	Blob           []byte    `json:"-"`
	TakenUnixNanos int64     `json:"taken_unix_nanos"`
}

// SnapshotStore saves and loads grid snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, row *SnapshotRow) error
	// LatestSnapshot returns the newest snapshot for a map by tick, or
	// ErrSnapshotNotFound.
	LatestSnapshot(ctx context.Context, mapID int16) (*SnapshotRow, error)
	// ListSnapshots returns up to limit rows newest first, without blobs.
	ListSnapshots(ctx context.Context, mapID int16, limit int) ([]SnapshotRow, error)
	// PruneSnapshots deletes all but the newest keep snapshots of a map.
	PruneSnapshots(ctx context.Context, mapID int16, keep int) (int64, error)
}

func prepareRow(row *SnapshotRow) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
}

// PgSnapshotRepo stores snapshots in PostgreSQL.
type PgSnapshotRepo struct {
	db *DB
}

func NewPgSnapshotRepo(db *DB) *PgSnapshotRepo {
	return &PgSnapshotRepo{db: db}
}

func (r *PgSnapshotRepo) SaveSnapshot(ctx context.Context, row *SnapshotRow) error {
	prepareRow(row)
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO pheromone_snapshots
		   (snapshot_id, map_id, width, height, tick, populated, reason, grid_blob, taken_unix_nanos)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		row.ID.String(), row.MapID, row.Width, row.Height, row.Tick,
		row.Populated, row.Reason, row.Blob, row.TakenUnixNanos,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot map %d: %w", row.MapID, err)
	}
	return nil
}

func (r *PgSnapshotRepo) LatestSnapshot(ctx context.Context, mapID int16) (*SnapshotRow, error) {
	var (
		row SnapshotRow
		id  string
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT snapshot_id::text, map_id, width, height, tick, populated, reason, grid_blob, taken_unix_nanos
		 FROM pheromone_snapshots WHERE map_id = $1
		 ORDER BY tick DESC, taken_unix_nanos DESC LIMIT 1`, mapID,
	).Scan(&id, &row.MapID, &row.Width, &row.Height, &row.Tick,
		&row.Populated, &row.Reason, &row.Blob, &row.TakenUnixNanos)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (r *PgSnapshotRepo) ListSnapshots(ctx context.Context, mapID int16, limit int) ([]SnapshotRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT snapshot_id::text, map_id, width, height, tick, populated, reason, taken_unix_nanos
		 FROM pheromone_snapshots WHERE map_id = $1
		 ORDER BY tick DESC, taken_unix_nanos DESC LIMIT $2`, mapID, limit)
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

func (r *PgSnapshotRepo) PruneSnapshots(ctx context.Context, mapID int16, keep int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM pheromone_snapshots
		 WHERE map_id = $1 AND snapshot_id NOT IN (
		   SELECT snapshot_id FROM pheromone_snapshots WHERE map_id = $1
		   ORDER BY tick DESC, taken_unix_nanos DESC LIMIT $2)`, mapID, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots map %d: %w", mapID, err)
	}
	return tag.RowsAffected(), nil
}
