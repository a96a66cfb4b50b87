package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/hotspotworld/server/internal/core/system"
	"github.com/hotspotworld/server/internal/nav"
)

// NavSweepSystem evicts expired navigation paths and grids.
// Phase 4 (PostUpdate).
type NavSweepSystem struct {
	nav *nav.Navigator
	log *zap.Logger
}

func NewNavSweepSystem(n *nav.Navigator, log *zap.Logger) *NavSweepSystem {
	return &NavSweepSystem{nav: n, log: log}
}

func (s *NavSweepSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *NavSweepSystem) Update(_ time.Duration) {
	if n := s.nav.Sweep(); n > 0 {
		s.log.Debug("navigation cache swept", zap.Int("evicted", n))
	}
}
