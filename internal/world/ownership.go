package world

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hotspotworld/server/internal/core/ecs"
)

// Violation describes one broken ownership record.
type Violation struct {
	Entity ecs.EntityID
	Owner  Coord
	Reason string
}

// OwnershipError lists every violation found by one audit.
type OwnershipError struct {
	Violations []Violation
}

func (e *OwnershipError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s@(%d,%d): %s", v.Entity, v.Owner.X, v.Owner.Y, v.Reason))
	}
	return fmt.Sprintf("ownership violated for %d entities: %s", len(e.Violations), strings.Join(parts, "; "))
}

// CheckOwnership verifies that every live content entity is listed by exactly
// one loaded region and that region is its recorded owner. In debug mode a
// violation panics; otherwise orphans are destroyed, stale listings dropped
// and the error returned.
func (s *Streamer) CheckOwnership() error {
	var violations []Violation
	listed := make(map[ecs.EntityID]Coord)

	for _, c := range s.Loaded() {
		r := s.regions[c]
		for _, id := range r.Content() {
			content, ok := s.store.Get(id)
			switch {
			case !ok:
				violations = append(violations, Violation{Entity: id, Owner: c, Reason: "listed but not alive"})
			case content.Owner != c:
				violations = append(violations, Violation{Entity: id, Owner: c, Reason: "listed by non-owner"})
			}
			if prev, dup := listed[id]; dup {
				violations = append(violations, Violation{Entity: id, Owner: prev, Reason: "listed by two regions"})
			}
			listed[id] = c
		}
	}
	s.store.EachSorted(func(id ecs.EntityID, content *Content) {
		r, ok := s.regions[content.Owner]
		switch {
		case !ok:
			violations = append(violations, Violation{Entity: id, Owner: content.Owner, Reason: "owner not loaded"})
		case !r.content.Has(id):
			violations = append(violations, Violation{Entity: id, Owner: content.Owner, Reason: "owner does not list it"})
		}
	})

	if len(violations) == 0 {
		return nil
	}
	err := &OwnershipError{Violations: violations}
	if s.cfg.Debug {
		panic(err)
	}
	s.log.Error("region ownership violated, repairing", zap.Error(err))
	s.repair(violations)
	return err
}

// repair fails closed: anything without a valid owner is destroyed and every
// stale listing removed.
func (s *Streamer) repair(violations []Violation) {
	for _, r := range s.regions {
		for _, id := range r.Content() {
			content, ok := s.store.Get(id)
			if !ok || content.Owner != r.Coord {
				r.content.Remove(id)
			}
		}
	}
	for _, v := range violations {
		content, ok := s.store.Get(v.Entity)
		if !ok {
			continue
		}
		r, loaded := s.regions[content.Owner]
		if loaded && r.content.Has(v.Entity) {
			continue
		}
		if loaded {
			r.content.Put(v.Entity)
			continue
		}
		s.destroy(nil, v.Entity, content, true)
		s.pass.Orphans++
	}
}
