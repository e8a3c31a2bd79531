// Package handle hands out generational agent handles.
package handle

import "fmt"

// ID packs a 32-bit slot index in the low bits and a 32-bit generation in
// the high bits. Releasing a slot bumps its generation, so stale IDs held
// by scripts or queued events stop resolving.
type ID uint64

func newID(index, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(index))
}

func (id ID) Index() uint32      { return uint32(id) }
func (id ID) Generation() uint32 { return uint32(id >> 32) }

func (id ID) String() string {
	return fmt.Sprintf("%d.%d", id.Index(), id.Generation())
}

// Pool allocates IDs with a free list. Generation starts at 1 so the
// zero ID never resolves.
type Pool struct {
	generations []uint32
	free        []uint32
	live        int
}

func NewPool() *Pool {
	return &Pool{
		generations: make([]uint32, 0, 256),
		free:        make([]uint32, 0, 64),
	}
}

// Acquire returns a fresh live ID.
func (p *Pool) Acquire() ID {
	p.live++
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return newID(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 1)
	return newID(idx, 1)
}

// Alive reports whether id was acquired and not yet released.
func (p *Pool) Alive(id ID) bool {
	idx := id.Index()
	return int(idx) < len(p.generations) && p.generations[idx] == id.Generation()
}

// Release retires id. Stale or unknown IDs are ignored.
func (p *Pool) Release(id ID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	p.generations[idx]++
	p.free = append(p.free, idx)
	p.live--
	return true
}

// Len returns the number of live IDs.
func (p *Pool) Len() int { return p.live }
