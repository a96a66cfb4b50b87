package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(e RegionLoaded) { got = append(got, "load") })
	Subscribe(b, func(e RegionUnloaded) { got = append(got, "unload") })

	Emit(b, RegionUnloaded{Coord: RegionCoord{1, 0}})
	Emit(b, RegionLoaded{Coord: RegionCoord{0, 0}})
	Emit(b, RegionUnloaded{Coord: RegionCoord{2, 0}})
	assert.Equal(t, 3, b.Pending())
	assert.Equal(t, 0, b.DispatchAll(), "nothing in front before swap")

	b.SwapBuffers()
	assert.Equal(t, 3, b.DispatchAll())
	assert.Equal(t, []string{"unload", "unload", "load"}, got)

	b.SwapBuffers()
	got = nil
	assert.Equal(t, 0, b.DispatchAll())
	assert.Empty(t, got)
}
