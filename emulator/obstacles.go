package emulator

import (
	"math"
	"slices"

	"github.com/nstehr/ringfall/geom"
)

// CellKey identifies a unit-sized grid cell.
type CellKey struct {
	X int
	Y int
}

func cellOf(p geom.Vec2) CellKey {
	return CellKey{X: int(math.Floor(p.X)), Y: int(math.Floor(p.Y))}
}

// ObstacleIndex buckets obstacles into every grid cell touched by their
// bounding box grown by the unit radius, so any unit whose center lies in a
// cell can only collide with obstacles listed for that cell.
type ObstacleIndex struct {
	obstacles []Obstacle
	cells     map[CellKey][]int
}

// NewObstacleIndex builds the index once for a match.
func NewObstacleIndex(obstacles []Obstacle, unitRadius float64) *ObstacleIndex {
	idx := &ObstacleIndex{
		obstacles: obstacles,
		cells:     make(map[CellKey][]int),
	}
	for i, o := range obstacles {
		reach := o.Radius + unitRadius
		lo := cellOf(o.Center.Sub(geom.V(reach, reach)))
		hi := cellOf(o.Center.Add(geom.V(reach, reach)))
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				key := CellKey{X: x, Y: y}
				idx.cells[key] = append(idx.cells[key], i)
			}
		}
	}
	return idx
}

// Obstacle returns obstacle i.
func (idx *ObstacleIndex) Obstacle(i int) Obstacle { return idx.obstacles[i] }

// IntersectingIDs returns candidate obstacles sharing p's cell. The result is
// nil on a miss and must not be modified.
func (idx *ObstacleIndex) IntersectingIDs(p geom.Vec2) []int {
	return idx.cells[cellOf(p)]
}

// ObstacleAt returns the obstacle whose disk contains p, if any.
func (idx *ObstacleIndex) ObstacleAt(p geom.Vec2) (int, bool) {
	for _, id := range idx.IntersectingIDs(p) {
		o := idx.obstacles[id]
		if o.Center.Dist2(p) < o.Radius*o.Radius {
			return id, true
		}
	}
	return 0, false
}

// SegmentIntersectsObstacle reports whether a projectile travelling from p1
// to p2 would hit an obstacle that blocks projectiles.
func (idx *ObstacleIndex) SegmentIntersectsObstacle(p1, p2 geom.Vec2) bool {
	return idx.segmentHits(p1, p2, func(o Obstacle) bool { return !o.CanShootThrough })
}

// SightBlocked reports whether an obstacle that blocks vision lies between
// p1 and p2.
func (idx *ObstacleIndex) SightBlocked(p1, p2 geom.Vec2) bool {
	return idx.segmentHits(p1, p2, func(o Obstacle) bool { return !o.CanSeeThrough })
}

type span struct {
	a, b  geom.Vec2
	depth int
}

// segmentHits checks the cells around both endpoints, then bisects the
// segment until every midpoint falls into an already-checked endpoint cell.
// Depth is capped by the number of cells the segment can cross.
func (idx *ObstacleIndex) segmentHits(p1, p2 geom.Vec2, blocks func(Obstacle) bool) bool {
	var checked []int
	nearPoint := func(p geom.Vec2) bool {
		for _, id := range idx.IntersectingIDs(p) {
			if slices.Contains(checked, id) {
				continue
			}
			checked = append(checked, id)
			o := idx.obstacles[id]
			if blocks(o) && geom.SegmentIntersectsCircle(p1, p2, o.Center, o.Radius) {
				return true
			}
		}
		return false
	}

	if nearPoint(p1) || nearPoint(p2) {
		return true
	}

	maxDepth := int(math.Ceil(math.Log2(p1.Dist(p2)+1))) + 2
	stack := []span{{a: p1, b: p2}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		m := s.a.Add(s.b).Scale(0.5)
		cm := cellOf(m)
		if cm == cellOf(s.a) || cm == cellOf(s.b) {
			continue
		}
		if nearPoint(m) {
			return true
		}
		if s.depth >= maxDepth {
			continue
		}
		stack = append(stack, span{a: s.a, b: m, depth: s.depth + 1}, span{a: m, b: s.b, depth: s.depth + 1})
	}
	return false
}
