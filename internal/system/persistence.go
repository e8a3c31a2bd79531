package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/l1jgo/pheromone/internal/config"
	coresys "github.com/l1jgo/pheromone/internal/core/system"
	"github.com/l1jgo/pheromone/internal/persist"
	"github.com/l1jgo/pheromone/internal/pheromone"
	"github.com/l1jgo/pheromone/internal/world"
	"go.uber.org/zap"
)

// PersistenceSystem periodically snapshots every map's pheromone grid.
// Phase 2 (Persist).
type PersistenceSystem struct {
	world     *world.State
	store     persist.SnapshotStore
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N ticks
	keep      int // snapshots retained per map, 0 = all
	now       func() time.Time
}

func NewPersistenceSystem(ws *world.State, store persist.SnapshotStore, log *zap.Logger, intervalTicks, keep int) *PersistenceSystem {
	return &PersistenceSystem{
		world:    ws,
		store:    store,
		log:      log,
		interval: intervalTicks,
		keep:     keep,
		now:      time.Now,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.SaveAll(ctx, "auto"); err != nil {
		s.log.Error("grid auto-save failed", zap.Error(err))
	}
}

// SaveAll snapshots every grid immediately. Every map is attempted; the
// first error is returned. Called for graceful shutdown.
func (s *PersistenceSystem) SaveAll(ctx context.Context, reason string) error {
	var firstErr error
	saved := 0
	for _, mapID := range s.world.Maps() {
		if err := s.save(ctx, mapID, reason); err != nil {
			s.log.Error("grid save failed", zap.Int16("map", mapID), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		saved++
	}
	if saved > 0 {
		s.log.Info("grids saved", zap.Int("maps", saved), zap.String("reason", reason),
			zap.Int64("tick", s.world.Clock().Tick()))
	}
	return firstErr
}

func (s *PersistenceSystem) save(ctx context.Context, mapID int16, reason string) error {
	g := s.world.Grid(mapID)
	blob, err := g.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode map %d: %w", mapID, err)
	}
	row := &persist.SnapshotRow{
		MapID:          mapID,
		Width:          g.Width(),
		Height:         g.Height(),
		Tick:           s.world.Clock().Tick(),
		Populated:      g.Populated(),
		Reason:         reason,
		Blob:           blob,
		TakenUnixNanos: s.now().UnixNano(),
	}
	if err := s.store.SaveSnapshot(ctx, row); err != nil {
		return err
	}
	if s.keep > 0 {
		n, err := s.store.PruneSnapshots(ctx, mapID, s.keep)
		if err != nil {
			// the new snapshot is safe; old ones linger until the next save
			s.log.Warn("snapshot prune failed", zap.Int16("map", mapID), zap.Error(err))
		} else if n > 0 {
			s.log.Debug("snapshots pruned", zap.Int16("map", mapID), zap.Int64("rows", n))
		}
	}
	return nil
}

// RestoreAll loads the latest snapshot of every map. A snapshot that does
// not fit its map (resized, or corrupt) is handled by policy: reject fails
// the restore, reset logs and leaves the grid empty. The clock is moved up
// to the newest restored tick so stored timestamps stay in the past. Agents
// are not persisted, so restored cell counts are rebuilt from the live ones.
func (s *PersistenceSystem) RestoreAll(ctx context.Context, policy string) (int, error) {
	restored := 0
	for _, mapID := range s.world.Maps() {
		row, err := s.store.LatestSnapshot(ctx, mapID)
		if errors.Is(err, persist.ErrSnapshotNotFound) {
			continue
		}
		if err != nil {
			return restored, fmt.Errorf("load map %d: %w", mapID, err)
		}

		err = s.world.Grid(mapID).UnmarshalBinary(row.Blob)
		if errors.Is(err, pheromone.ErrCorrupt) {
			if policy != config.MismatchReset {
				return restored, fmt.Errorf("restore map %d snapshot %s: %w", mapID, row.ID, err)
			}
			s.log.Warn("discarding unusable grid snapshot",
				zap.Int16("map", mapID), zap.String("snapshot", row.ID.String()), zap.Error(err))
			continue
		}
		if err != nil {
			return restored, fmt.Errorf("restore map %d: %w", mapID, err)
		}

		if err := s.world.RecountAgents(mapID); err != nil {
			return restored, err
		}
		s.world.Clock().Set(row.Tick)
		restored++
		s.log.Info("grid restored", zap.Int16("map", mapID),
			zap.Int("cells", row.Populated), zap.Int64("tick", row.Tick))
	}
	return restored, nil
}
