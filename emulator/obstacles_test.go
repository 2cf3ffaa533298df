package emulator

import (
	"testing"

	"github.com/nstehr/ringfall/geom"
)

func testIndex() *ObstacleIndex {
	return NewObstacleIndex([]Obstacle{
		{Center: geom.V(10, 0), Radius: 2},
		{Center: geom.V(0, 10), Radius: 2, CanShootThrough: true, CanSeeThrough: true},
		{Center: geom.V(-10, 0), Radius: 2, CanShootThrough: true},
	}, 1)
}

func TestIntersectingIDsMiss(t *testing.T) {
	idx := testIndex()
	if got := idx.IntersectingIDs(geom.V(50, 50)); len(got) != 0 {
		t.Errorf("IntersectingIDs far away = %v, want empty", got)
	}
	got := idx.IntersectingIDs(geom.V(12.5, 0))
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("IntersectingIDs next to obstacle = %v, want [0]", got)
	}
}

func TestObstacleAt(t *testing.T) {
	idx := testIndex()
	tests := []struct {
		name string
		p    geom.Vec2
		want int
		ok   bool
	}{
		{"inside", geom.V(10.5, 0.5), 0, true},
		{"in cell but outside disk", geom.V(12.5, 0), 0, false},
		{"empty space", geom.V(30, 30), 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := idx.ObstacleAt(tc.p)
			if ok != tc.ok || (ok && got != tc.want) {
				t.Errorf("ObstacleAt(%v) = %d, %v, want %d, %v", tc.p, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestSegmentIntersectsObstacle(t *testing.T) {
	idx := testIndex()
	tests := []struct {
		name   string
		p1, p2 geom.Vec2
		shot   bool
		sight  bool
	}{
		{"long segment through the middle", geom.V(0, 0), geom.V(40, 0.5), true, true},
		{"ends inside obstacle", geom.V(0, 0), geom.V(10, 0), true, true},
		{"passes beside", geom.V(0, 5), geom.V(20, 5), false, false},
		{"shoot-through and see-through", geom.V(-20, 10), geom.V(20, 10), false, false},
		{"shoot-through but opaque", geom.V(-20, 0.3), geom.V(-3, 0.3), false, true},
		{"diagonal across many cells", geom.V(-3, -7), geom.V(23, 7), true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := idx.SegmentIntersectsObstacle(tc.p1, tc.p2); got != tc.shot {
				t.Errorf("SegmentIntersectsObstacle = %v, want %v", got, tc.shot)
			}
			if got := idx.SightBlocked(tc.p1, tc.p2); got != tc.sight {
				t.Errorf("SightBlocked = %v, want %v", got, tc.sight)
			}
		})
	}
}
