package ecs

import "fmt"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generations start at 1, so the zero ID never names a
// live entity and can be used as "none".
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("%d:%d", id.Index(), id.Generation())
}

// EntityPool hands out generational IDs and recycles freed indices LIFO.
// Allocation order is a pure function of the create/destroy sequence.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	live        int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 0, 1024),
		freeList:    make([]uint32, 0, 256),
	}
}

func (p *EntityPool) Create() EntityID {
	p.live++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 1)
	return NewEntityID(idx, 1)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == id.Generation()
}

// Destroy invalidates id. Stale or unknown IDs are ignored.
func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return
	}
	idx := id.Index()
	p.generations[idx]++
	if p.generations[idx] == 0 {
		p.generations[idx] = 1
	}
	p.freeList = append(p.freeList, idx)
	p.live--
}

// Live is the number of allocated, not yet destroyed entities.
func (p *EntityPool) Live() int { return p.live }
