package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"move", PhaseUpdate, &log})
	r.Register(recorder{"stream", PhaseStream, &log})
	r.Register(recorder{"sweep", PhaseUpdate, &log})
	r.Register(recorder{"dispatch", PhasePreUpdate, &log})

	r.Tick(time.Second / 5)
	assert.Equal(t, []string{"dispatch", "stream", "move", "sweep", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())

	log = nil
	r.TickPhase(PhaseUpdate, 0)
	assert.Equal(t, []string{"move", "sweep"}, log)
	assert.Equal(t, "stream", PhaseStream.String())
}
