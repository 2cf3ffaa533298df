package geom

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNormZero(t *testing.T) {
	if got := (Vec2{}).Norm(); !got.IsZero() {
		t.Errorf("Norm of zero = %v, want zero", got)
	}
	got := V(3, 4).Norm()
	if !near(got.Len(), 1) || !near(got.X, 0.6) {
		t.Errorf("Norm(3,4) = %v, want (0.6, 0.8)", got)
	}
}

func TestSegmentIntersectsCircle(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Vec2
		center Vec2
		radius float64
		want   bool
	}{
		{"crosses", V(-5, 0), V(5, 0), V(0, 0.5), 1, true},
		{"misses above", V(-5, 0), V(5, 0), V(0, 2), 1, false},
		{"endpoint inside", V(0, 0), V(5, 0), V(0, 0), 1, true},
		{"beyond segment end", V(-5, 0), V(5, 0), V(8, 0.5), 1, false},
		{"degenerate segment outside", V(3, 3), V(3, 3), V(0, 0), 1, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SegmentIntersectsCircle(tc.p1, tc.p2, tc.center, tc.radius)
			if got != tc.want {
				t.Errorf("SegmentIntersectsCircle = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSegmentsCross(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 Vec2
		want           bool
	}{
		{"cross", V(0, 0), V(10, 0), V(5, -5), V(5, 5), true},
		{"stops short", V(0, 0), V(10, 0), V(5, 1), V(5, 5), false},
		{"touching endpoint", V(0, 0), V(10, 0), V(10, 0), V(10, 5), false},
		{"parallel", V(0, 0), V(10, 0), V(0, 1), V(10, 1), false},
		{"collinear overlap", V(0, 0), V(10, 0), V(5, 0), V(15, 0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SegmentsCross(tc.a1, tc.a2, tc.b1, tc.b2); got != tc.want {
				t.Errorf("SegmentsCross = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCropDirection(t *testing.T) {
	base := V(1, 0)

	inside := CropDirection(V(1, 0.1), base, math.Pi/4)
	if !near(inside.X, V(1, 0.1).Norm().X) {
		t.Errorf("direction within the cone was changed: %v", inside)
	}

	cropped := CropDirection(V(0, 1), base, math.Pi/6)
	if !near(Angle(cropped, base), math.Pi/6) {
		t.Errorf("cropped angle = %v, want %v", Angle(cropped, base), math.Pi/6)
	}
	if cropped.Y <= 0 {
		t.Errorf("cropped direction switched sides: %v", cropped)
	}

	opposite := CropDirection(V(-1, 0), base, math.Pi/6)
	if !near(Angle(opposite, base), math.Pi/6) {
		t.Errorf("opposite crop angle = %v, want %v", Angle(opposite, base), math.Pi/6)
	}
}

func TestInterceptDirection(t *testing.T) {
	// Stationary target: aim straight at it.
	d := InterceptDirection(V(0, 0), V(10, 0), V(0, 0), 5)
	if !near(d.X, 1) || !near(d.Y, 0) {
		t.Errorf("stationary intercept = %v, want (1, 0)", d)
	}

	// Target crossing: the shot must lead it.
	d = InterceptDirection(V(0, 0), V(10, 0), V(0, 3), 5)
	if d.Y <= 0 {
		t.Errorf("moving target intercept = %v, want positive lead", d)
	}
	// Verify the projectile actually meets the target.
	tHit := 10 / (d.X * 5)
	hit := V(0, 0).Add(d.Scale(5 * tHit))
	target := V(10, 0).Add(V(0, 3).Scale(tHit))
	if hit.Dist(target) > 1e-6 {
		t.Errorf("intercept misses by %v", hit.Dist(target))
	}

	// Target faster than the projectile and running away: fall back to direct aim.
	d = InterceptDirection(V(0, 0), V(10, 0), V(20, 0), 5)
	if !near(d.X, 1) {
		t.Errorf("unreachable intercept = %v, want direct aim", d)
	}
}

func TestRotate(t *testing.T) {
	got := V(1, 0).Rotate(math.Pi / 2)
	if !near(got.X, 0) || !near(got.Y, 1) {
		t.Errorf("Rotate(pi/2) = %v, want (0, 1)", got)
	}
	if r := V(2, 3).Rot90(); r != V(-3, 2) {
		t.Errorf("Rot90 = %v, want (-3, 2)", r)
	}
}
