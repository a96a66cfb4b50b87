package worldgen

import (
	"container/heap"
	"math"

	"github.com/hotspotworld/server/internal/geom"
)

// Polyline is one path-network edge between two POIs.
type Polyline struct {
	From, To int
	Points   []geom.Vec2
	Fallback bool // no grid path existed; straight segment
	bounds   geom.Rect
}

// mstEdges connects all POIs greedily: repeatedly add the shortest edge from
// any visited POI to any unvisited one. Ties keep the first pair found.
func mstEdges(pois []POI) [][2]int {
	n := len(pois)
	if n < 2 {
		return nil
	}
	visited := make([]bool, n)
	visited[0] = true
	edges := make([][2]int, 0, n-1)
	for len(edges) < n-1 {
		bi, bj := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !visited[i] {
				continue
			}
			for j := 0; j < n; j++ {
				if visited[j] {
					continue
				}
				if d := pois[i].Pos.DistSq(pois[j].Pos); d < best {
					best, bi, bj = d, i, j
				}
			}
		}
		visited[bj] = true
		edges = append(edges, [2]int{bi, bj})
	}
	return edges
}

// costGrid is the coarse traversal-cost raster used to route the network.
type costGrid struct {
	origin     geom.Vec2
	cell       float64
	cols, rows int
	cost       []float64
	passable   []bool
}

func newCostGrid(w *World) *costGrid {
	p := w.params
	cols := max(1, int(math.Ceil(p.Bounds.Width()/p.PathGridCell)))
	rows := max(1, int(math.Ceil(p.Bounds.Height()/p.PathGridCell)))
	g := &costGrid{
		origin:   p.Bounds.Min,
		cell:     p.PathGridCell,
		cols:     cols,
		rows:     rows,
		cost:     make([]float64, cols*rows),
		passable: make([]bool, cols*rows),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := g.center(col, row)
			h := w.Height(c.X, c.Y)
			i := row*cols + col
			g.cost[i] = 1 + w.Danger(c.X, c.Y)*8 + math.Max(0, h)*4
			g.passable[i] = h >= p.SubmersionThreshold
		}
	}
	return g
}

func (g *costGrid) center(col, row int) geom.Vec2 {
	return geom.Vec2{
		X: g.origin.X + (float64(col)+0.5)*g.cell,
		Y: g.origin.Y + (float64(row)+0.5)*g.cell,
	}
}

func (g *costGrid) locate(p geom.Vec2) (int, int) {
	col := int((p.X - g.origin.X) / g.cell)
	row := int((p.Y - g.origin.Y) / g.cell)
	return max(0, min(col, g.cols-1)), max(0, min(row, g.rows-1))
}

func (g *costGrid) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

type gridStep struct {
	dc, dr int
	length float64
}

var gridSteps = [...]gridStep{
	{0, -1, 1}, {1, 0, 1}, {0, 1, 1}, {-1, 0, 1},
	{1, -1, math.Sqrt2}, {1, 1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {-1, -1, math.Sqrt2},
}

type openNode struct {
	idx   int
	f     float64
	seq   int
	index int
}

type openQueue []*openNode

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *openQueue) Push(x any) {
	n := x.(*openNode)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *openQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

// route runs A* between two cells. Start and goal are always treated as
// passable so POIs inside craters still connect. Returns cell indices from
// start to goal, or nil.
func (g *costGrid) route(sc, sr, gc, gr int) []int {
	start := sr*g.cols + sc
	goal := gr*g.cols + gc
	if start == goal {
		return []int{start}
	}
	n := g.cols * g.rows
	gScore := make([]float64, n)
	parent := make([]int32, n)
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		parent[i] = -1
	}
	passable := func(i int) bool { return g.passable[i] || i == start || i == goal }
	h := func(i int) float64 {
		dx := math.Abs(float64(i%g.cols - gc))
		dy := math.Abs(float64(i/g.cols - gr))
		return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
	}

	open := &openQueue{}
	seq := 0
	gScore[start] = 0
	heap.Push(open, &openNode{idx: start, f: h(start), seq: seq})
	budget := n * 4

	for open.Len() > 0 && budget > 0 {
		budget--
		cur := heap.Pop(open).(*openNode).idx
		if closed[cur] {
			continue
		}
		if cur == goal {
			return tracePath(parent, goal)
		}
		closed[cur] = true
		cc, cr := cur%g.cols, cur/g.cols
		for _, s := range gridSteps {
			nc, nr := cc+s.dc, cr+s.dr
			if !g.inBounds(nc, nr) {
				continue
			}
			ni := nr*g.cols + nc
			if closed[ni] || !passable(ni) {
				continue
			}
			if s.dc != 0 && s.dr != 0 {
				if !passable(cr*g.cols+nc) || !passable(nr*g.cols+cc) {
					continue
				}
			}
			tentative := gScore[cur] + s.length*g.cost[ni]
			if tentative >= gScore[ni] {
				continue
			}
			gScore[ni] = tentative
			parent[ni] = int32(cur)
			seq++
			heap.Push(open, &openNode{idx: ni, f: tentative + h(ni), seq: seq})
		}
	}
	return nil
}

func tracePath(parent []int32, goal int) []int {
	var out []int
	for i := goal; i >= 0; i = int(parent[i]) {
		out = append(out, i)
	}
	for a, b := 0, len(out)-1; a < b; a, b = a+1, b-1 {
		out[a], out[b] = out[b], out[a]
	}
	return out
}

// buildNetwork routes every MST edge over the coarse cost grid. It must run
// while w.network is still empty so corridor terms do not feed back into the
// routing cost.
func buildNetwork(w *World) ([]Polyline, int) {
	edges := mstEdges(w.pois)
	if len(edges) == 0 {
		return nil, 0
	}
	grid := newCostGrid(w)
	out := make([]Polyline, 0, len(edges))
	fallbacks := 0
	for _, e := range edges {
		a, b := w.pois[e[0]], w.pois[e[1]]
		sc, sr := grid.locate(a.Pos)
		gc, gr := grid.locate(b.Pos)
		cells := grid.route(sc, sr, gc, gr)
		pl := Polyline{From: a.ID, To: b.ID}
		if cells == nil {
			pl.Points = []geom.Vec2{a.Pos, b.Pos}
			pl.Fallback = true
			fallbacks++
		} else {
			pl.Points = grid.polyline(cells, a.Pos, b.Pos)
		}
		pl.bounds = geom.Bounds(pl.Points)
		out = append(out, pl)
	}
	return out, fallbacks
}

// polyline converts a cell route into world points, replacing the end cells
// with the exact POI positions and dropping cells on straight runs.
func (g *costGrid) polyline(cells []int, from, to geom.Vec2) []geom.Vec2 {
	pts := []geom.Vec2{from}
	for i := 1; i+1 < len(cells); i++ {
		pc, pr := cells[i-1]%g.cols, cells[i-1]/g.cols
		cc, cr := cells[i]%g.cols, cells[i]/g.cols
		nc, nr := cells[i+1]%g.cols, cells[i+1]/g.cols
		if cc-pc == nc-cc && cr-pr == nr-cr {
			continue
		}
		pts = append(pts, g.center(cc, cr))
	}
	return append(pts, to)
}

// distanceToNetwork returns the distance from p to the nearest network edge,
// skipping edges whose padded bounds cannot be within limit.
func (w *World) distanceToNetwork(p geom.Vec2, limit float64) float64 {
	best := math.Inf(1)
	for i := range w.network {
		pl := &w.network[i]
		if !pl.bounds.Expand(limit).Contains(p) {
			continue
		}
		if d, _ := geom.PolylineDistance(p, pl.Points); d < best {
			best = d
		}
	}
	return best
}

func (w *World) nearPath(p geom.Vec2) bool {
	if len(w.network) == 0 {
		return false
	}
	return w.distanceToNetwork(p, w.params.PathCorridorWidth) <= w.params.PathCorridorWidth
}
