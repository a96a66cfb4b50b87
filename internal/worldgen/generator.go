package worldgen

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hotspotworld/server/internal/data"
	"github.com/hotspotworld/server/internal/geom"
	"github.com/hotspotworld/server/internal/rng"
)

// World is the immutable result of generation. Field queries are pure and
// safe to call from any goroutine once Generate returns.
type World struct {
	params   Params
	roles    *data.RoleTable
	pois     []POI
	poiRoles []*data.RoleEntry
	rivers   []River
	network  []Polyline
	mutators []data.Mutator
}

// Report summarises how closely generation met its targets.
type Report struct {
	TargetPOIs    int
	POIs          int
	FallbackEdges int
	Rivers        int
	Mutators      []string
}

// Degenerate is true when fewer POIs were placed than requested or some
// network edge fell back to a straight segment.
func (r Report) Degenerate() bool {
	return r.POIs < r.TargetPOIs || r.FallbackEdges > 0
}

func (r Report) String() string {
	return fmt.Sprintf("pois=%d/%d fallback_edges=%d rivers=%d mutators=%v",
		r.POIs, r.TargetPOIs, r.FallbackEdges, r.Rivers, r.Mutators)
}

// Generate folds muts into p and builds the world. Order is fixed: POIs,
// roles, rivers, path network. The same inputs always give the same world.
func Generate(p Params, roles *data.RoleTable, muts []data.Mutator, log *zap.Logger) (*World, Report) {
	p.Seed = rng.NormalizeSeed(p.Seed)
	p = p.Apply(muts)

	w := &World{params: p, roles: roles, mutators: muts}

	pts := samplePoisson(rng.New(p.Seed, "poi:placement"), p.Bounds, p.MinPOIDistance, p.TargetPOICount, p.PoissonRetries)
	w.pois = make([]POI, len(pts))
	for i, pt := range pts {
		w.pois[i] = POI{ID: i, Pos: pt}
	}
	if len(w.pois) > 0 {
		assignRoles(rng.New(p.Seed, "poi:roles"), w.pois, roles)
	}
	w.poiRoles = make([]*data.RoleEntry, len(w.pois))
	for i := range w.pois {
		entry, ok := roles.Get(w.pois[i].Role)
		if !ok {
			panic(fmt.Sprintf("worldgen: role %q missing from table", w.pois[i].Role))
		}
		w.poiRoles[i] = entry
	}

	w.rivers = generateRivers(p)

	network, fallbacks := buildNetwork(w)
	w.network = network

	rep := Report{
		TargetPOIs:    p.TargetPOICount,
		POIs:          len(w.pois),
		FallbackEdges: fallbacks,
		Rivers:        len(w.rivers),
	}
	for _, m := range muts {
		rep.Mutators = append(rep.Mutators, m.ID)
	}

	log.Info("world generated",
		zap.String("seed", p.Seed),
		zap.Int("pois", rep.POIs),
		zap.Int("edges", len(w.network)),
		zap.Int("rivers", rep.Rivers),
		zap.Strings("mutators", rep.Mutators),
	)
	if rep.Degenerate() {
		log.Warn("world generation degenerate",
			zap.Int("target_pois", rep.TargetPOIs),
			zap.Int("pois", rep.POIs),
			zap.Int("fallback_edges", rep.FallbackEdges),
		)
	}
	return w, rep
}

func (w *World) Params() Params           { return w.params }
func (w *World) Seed() string             { return w.params.Seed }
func (w *World) Roles() *data.RoleTable   { return w.roles }
func (w *World) POIs() []POI              { return w.pois }
func (w *World) Rivers() []River          { return w.rivers }
func (w *World) Network() []Polyline      { return w.network }
func (w *World) Mutators() []data.Mutator { return w.mutators }
func (w *World) CorridorWidth() float64   { return w.params.PathCorridorWidth }

// RoleOf returns the role entry of a POI.
func (w *World) RoleOf(poiID int) *data.RoleEntry {
	if poiID < 0 || poiID >= len(w.poiRoles) {
		return nil
	}
	return w.poiRoles[poiID]
}

// POIsIn returns the POIs whose position lies inside r, in ID order.
func (w *World) POIsIn(r geom.Rect) []POI {
	var out []POI
	for _, p := range w.pois {
		if r.Contains(p.Pos) {
			out = append(out, p)
		}
	}
	return out
}
