package system

import (
	"errors"
	"time"

	"go.uber.org/zap"

	coresys "github.com/hotspotworld/server/internal/core/system"
	"github.com/hotspotworld/server/internal/world"
)

// StreamSystem polls the anchor and runs one complete streaming pass.
// Phase 2 (Stream).
type StreamSystem struct {
	streamer *world.Streamer
	anchor   world.AnchorProvider
	log      *zap.Logger
}

func NewStreamSystem(streamer *world.Streamer, anchor world.AnchorProvider, log *zap.Logger) *StreamSystem {
	return &StreamSystem{streamer: streamer, anchor: anchor, log: log}
}

func (s *StreamSystem) Phase() coresys.Phase { return coresys.PhaseStream }

func (s *StreamSystem) Update(_ time.Duration) {
	pos, ok := s.anchor.AnchorPosition()
	if !ok {
		return
	}
	stats, err := s.streamer.Update(pos)
	if err != nil {
		var oe *world.OwnershipError
		if errors.As(err, &oe) {
			s.log.Error("ownership repaired",
				zap.Int("violations", len(oe.Violations)),
				zap.Error(err))
		} else {
			s.log.Error("stream pass", zap.Error(err))
		}
	}
	if stats.Loaded > 0 || stats.Unloaded > 0 {
		c := s.streamer.Center()
		s.log.Debug("stream pass",
			zap.Int("center_x", c.X), zap.Int("center_y", c.Y),
			zap.Int("loaded", stats.Loaded),
			zap.Int("unloaded", stats.Unloaded),
			zap.Int("migrated", stats.Migrated),
			zap.Int("destroyed", stats.Destroyed),
		)
	}
}
