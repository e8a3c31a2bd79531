package pheromone

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
)

// Snapshot is the persisted form of a Grid. Slots is the length of the
// dense cell sequence; Cells lists only the populated slots, so an absent
// index is an unset slot.
type Snapshot struct {
	Width  int
	Height int
	Slots  int
	Cells  []SnapshotCell
}

// SnapshotCell is one populated slot.
type SnapshotCell struct {
	Index int
	Cell  Pheromone
}

// Coord converts the slot index back to (x, z).
func (s Snapshot) Coord(c SnapshotCell) (x, z int32) {
	return int32(c.Index % s.Width), int32(c.Index / s.Width)
}

// DimensionMismatchError reports a snapshot taken for a different map size.
type DimensionMismatchError struct {
	Width      int
	Height     int
	Slots      int
	SnapWidth  int
	SnapHeight int
	SnapSlots  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("snapshot %dx%d (%d slots) does not fit grid %dx%d (%d slots)",
		e.SnapWidth, e.SnapHeight, e.SnapSlots, e.Width, e.Height, e.Slots)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrCorrupt }

// Snapshot copies every populated slot in index order.
func (g *Grid) Snapshot() Snapshot {
	s := Snapshot{
		Width:  g.width,
		Height: g.height,
		Slots:  len(g.cells),
		Cells:  make([]SnapshotCell, 0, g.populated),
	}
	for i, cell := range g.cells {
		if cell != nil {
			s.Cells = append(s.Cells, SnapshotCell{Index: i, Cell: *cell})
		}
	}
	return s
}

// Restore replaces the grid contents with s. The snapshot must match the
// grid's dimensions exactly; on any error the grid is left untouched.
// Persisted values are taken as stored, except that a negative agent count
// is raised to zero.
func (g *Grid) Restore(s Snapshot) error {
	if s.Width != g.width || s.Height != g.height || s.Slots != len(g.cells) {
		return &DimensionMismatchError{
			Width: g.width, Height: g.height, Slots: len(g.cells),
			SnapWidth: s.Width, SnapHeight: s.Height, SnapSlots: s.Slots,
		}
	}
	for _, c := range s.Cells {
		if c.Index < 0 || c.Index >= s.Slots {
			return fmt.Errorf("restore slot %d of %d: %w", c.Index, s.Slots, ErrCorrupt)
		}
	}

	cells := make([]*Pheromone, len(g.cells))
	populated := 0
	for _, c := range s.Cells {
		p := c.Cell
		if p.AgentCount < 0 {
			p.AgentCount = 0
		}
		if cells[c.Index] == nil {
			populated++
		}
		cells[c.Index] = &p
	}
	g.cells = cells
	g.populated = populated
	return nil
}

// EncodeSnapshot compresses s using gob encoding and gzip compression.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(s); err != nil {
		gz.Close()
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(blob []byte) (Snapshot, error) {
	var s Snapshot
	if len(blob) == 0 {
		return s, fmt.Errorf("decode snapshot: empty blob: %w", ErrCorrupt)
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return s, fmt.Errorf("decompress snapshot: %v: %w", err, ErrCorrupt)
	}
	defer gz.Close()
	if err := gob.NewDecoder(gz).Decode(&s); err != nil {
		return s, fmt.Errorf("decode snapshot: %v: %w", err, ErrCorrupt)
	}
	if s.Width <= 0 {
		return s, fmt.Errorf("decode snapshot: width %d: %w", s.Width, ErrCorrupt)
	}
	return s, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (g *Grid) MarshalBinary() ([]byte, error) {
	return EncodeSnapshot(g.Snapshot())
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The grid must
// already be sized for the map the data was saved from.
func (g *Grid) UnmarshalBinary(data []byte) error {
	s, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	return g.Restore(s)
}
