package nav

const (
	costStraight = 10
	costDiagonal = 14
)

type step struct {
	dc, dr   int
	cost     int32
	diagonal bool
}

var steps = [...]step{
	{0, -1, costStraight, false},
	{1, 0, costStraight, false},
	{0, 1, costStraight, false},
	{-1, 0, costStraight, false},
	{1, -1, costDiagonal, true},
	{1, 1, costDiagonal, true},
	{-1, 1, costDiagonal, true},
	{-1, -1, costDiagonal, true},
}

const (
	nodeNew uint8 = iota
	nodeOpen
	nodeClosed
)

// arena holds A* scratch state indexed by cell. It is reused across searches
// and only grows.
type arena struct {
	g      []int32
	f      []int32
	parent []int32
	state  []uint8
	open   []int32
}

func (a *arena) reset(n int) {
	if cap(a.g) < n {
		a.g = make([]int32, n)
		a.f = make([]int32, n)
		a.parent = make([]int32, n)
		a.state = make([]uint8, n)
	}
	a.g = a.g[:n]
	a.f = a.f[:n]
	a.parent = a.parent[:n]
	a.state = a.state[:n]
	for i := range a.state {
		a.state[i] = nodeNew
		a.parent[i] = -1
	}
	a.open = a.open[:0]
}

// octile is 10·max + 4·min over the cell deltas: the exact cost of the
// cheapest obstacle-free route under 10/14 steps.
func octile(dc, dr int) int32 {
	if dc < 0 {
		dc = -dc
	}
	if dr < 0 {
		dr = -dr
	}
	hi, lo := max(dc, dr), min(dc, dr)
	return int32(costStraight*hi + (costDiagonal-costStraight)*lo)
}

// search runs A* from start to goal cell indices. The open list is scanned
// linearly and the first entry with the lowest f wins. Returns the cell
// route, its cost and whether the goal was reached within maxIter
// expansions.
func (a *arena) search(g *Grid, start, goal, maxIter int) ([]int, int32, bool) {
	a.reset(g.Cols * g.Rows)
	gc, gr := goal%g.Cols, goal/g.Cols
	h := func(i int) int32 { return octile(i%g.Cols-gc, i/g.Cols-gr) }

	a.g[start] = 0
	a.f[start] = h(start)
	a.state[start] = nodeOpen
	a.open = append(a.open, int32(start))

	for iter := 0; len(a.open) > 0 && iter < maxIter; iter++ {
		best := 0
		for i := 1; i < len(a.open); i++ {
			if a.f[a.open[i]] < a.f[a.open[best]] {
				best = i
			}
		}
		cur := int(a.open[best])
		a.open = append(a.open[:best], a.open[best+1:]...)
		if cur == goal {
			return a.trace(goal), a.g[goal], true
		}
		a.state[cur] = nodeClosed

		cc, cr := cur%g.Cols, cur/g.Cols
		for _, s := range steps {
			nc, nr := cc+s.dc, cr+s.dr
			if !g.walkable(nc, nr) {
				continue
			}
			if s.diagonal && (!g.walkable(nc, cr) || !g.walkable(cc, nr)) {
				continue
			}
			ni := g.index(nc, nr)
			if a.state[ni] == nodeClosed {
				continue
			}
			tentative := a.g[cur] + s.cost
			if a.state[ni] == nodeOpen && tentative >= a.g[ni] {
				continue
			}
			a.g[ni] = tentative
			a.f[ni] = tentative + h(ni)
			a.parent[ni] = int32(cur)
			if a.state[ni] != nodeOpen {
				a.state[ni] = nodeOpen
				a.open = append(a.open, int32(ni))
			}
		}
	}
	return nil, 0, false
}

func (a *arena) trace(goal int) []int {
	var out []int
	for i := goal; i >= 0; i = int(a.parent[i]) {
		out = append(out, i)
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}
