package geom

import "math"

// SegmentIntersectsCircle reports whether the segment p1-p2 passes within
// radius of center. Endpoints inside the circle count as intersecting.
func SegmentIntersectsCircle(p1, p2, center Vec2, radius float64) bool {
	r2 := radius * radius
	c1 := center.Sub(p1)
	c2 := center.Sub(p2)
	if c1.Len2() < r2 || c2.Len2() < r2 {
		return true
	}

	t := p2.Sub(p1)
	l := t.Len()
	if l == 0 {
		return false
	}
	// Closest point lies outside the segment when both projections agree in sign.
	if (c1.Dot(t) > 0) == (c2.Dot(t) > 0) {
		return false
	}
	return math.Abs(t.Cross(c1))/l < radius
}

// SegmentsCross reports whether segments a1-a2 and b1-b2 cross at a point
// interior to both. Touching and collinear segments do not count.
func SegmentsCross(a1, a2, b1, b2 Vec2) bool {
	b := b2.Sub(b1)
	a := a2.Sub(a1)
	d1 := b.Cross(a1.Sub(b1))
	d2 := b.Cross(a2.Sub(b1))
	d3 := a.Cross(b1.Sub(a1))
	d4 := a.Cross(b2.Sub(a1))
	return d1*d2 < 0 && d3*d4 < 0
}

// CropDirection returns direction clamped to lie within angle radians of
// base. Both inputs are normalised first; a zero base leaves direction as is.
func CropDirection(direction, base Vec2, angle float64) Vec2 {
	direction = direction.Norm()
	base = base.Norm()
	if base.IsZero() || direction.IsZero() {
		return direction
	}
	if direction.Dot(base) >= math.Cos(angle) {
		return direction
	}

	side := direction.Sub(base.Scale(direction.Dot(base))).Norm()
	if side.IsZero() {
		// direction is exactly opposite base; pick a side deterministically.
		side = base.Rot90()
	}
	return base.Scale(math.Cos(angle)).Add(side.Scale(math.Sin(angle)))
}

// InterceptDirection returns the direction a projectile of the given speed
// fired from origin must travel to meet a target moving with constant
// velocity. When no intercept exists the direct line to the target is used.
func InterceptDirection(origin, target, velocity Vec2, speed float64) Vec2 {
	r := target.Sub(origin)
	if speed <= 0 {
		return r.Norm()
	}
	a := velocity.Len2() - speed*speed
	b := 2 * r.Dot(velocity)
	c := r.Len2()

	var t float64
	if math.Abs(a) < 1e-9 {
		if b >= 0 {
			return r.Norm()
		}
		t = -c / b
	} else {
		disc := b*b - 4*a*c
		if disc < 0 {
			return r.Norm()
		}
		sq := math.Sqrt(disc)
		t1 := (-b - sq) / (2 * a)
		t2 := (-b + sq) / (2 * a)
		t = math.Inf(1)
		for _, cand := range []float64{t1, t2} {
			if cand > 0 && cand < t {
				t = cand
			}
		}
		if math.IsInf(t, 1) {
			return r.Norm()
		}
	}
	return r.Add(velocity.Scale(t)).Norm()
}
