// pkg/physics/geometry.go
package physics

import "math"

// Polygon is an ordered list of vertices describing a convex shape
type Polygon []Vector2D

// Segment is a line segment used as a visibility blocker. Tolerance trims
// both ends of the segment as a fraction of its length when testing for
// intersection, so rays that only graze an endpoint pass through.
type Segment struct {
	A         Vector2D
	B         Vector2D
	Tolerance float64
}

// Transform rotates every vertex about the origin and then translates it
func (p Polygon) Transform(rotation float64, position Vector2D) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Rotate(rotation).Add(position)
	}
	return out
}

// Bounds returns the axis-aligned bounding rectangle of the polygon
func (p Polygon) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range p {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	return Rect{Min: Vector2D{X: minX, Y: minY}, Max: Vector2D{X: maxX, Y: maxY}}
}

// Edges returns the closed outline of the polygon as segments
func (p Polygon) Edges(tolerance float64) []Segment {
	edges := make([]Segment, len(p))
	for i := range p {
		edges[i] = Segment{A: p[i], B: p[(i+1)%len(p)], Tolerance: tolerance}
	}
	return edges
}

// RegularPolygon returns n vertices evenly spaced on a circle of the given
// radius, starting on the positive X axis.
func RegularPolygon(n int, radius float64) Polygon {
	step := 2 * math.Pi / float64(n)
	out := make(Polygon, n)
	for i := range out {
		out[i] = FromAngle(float64(i)*step, radius)
	}
	return out
}

// BoxPolygon returns the rectangle with the given half extents centered at
// the origin, listed starting from the (+x, +y) corner.
func BoxPolygon(halfWidth, halfHeight float64) Polygon {
	return Polygon{
		{X: halfWidth, Y: halfHeight},
		{X: halfWidth, Y: -halfHeight},
		{X: -halfWidth, Y: -halfHeight},
		{X: -halfWidth, Y: halfHeight},
	}
}

// ExpandPolygon pushes each vertex of a polygon given in local space away
// from both axes by the matching half extent. For boxes this is the
// axis-aligned Minkowski sum with a box of the given half extents.
func ExpandPolygon(local Polygon, halfExtents Vector2D) Polygon {
	out := make(Polygon, len(local))
	for i, v := range local {
		out[i] = Vector2D{
			X: v.X + math.Copysign(halfExtents.X, v.X),
			Y: v.Y + math.Copysign(halfExtents.Y, v.Y),
		}
	}
	return out
}

// Project returns the interval covered by the polygon on the given axis
func Project(polygon Polygon, axis Vector2D) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range polygon {
		d := v.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// OverlapOnAxis reports whether the projections of both polygons on axis
// overlap. Touching intervals count as overlapping.
func OverlapOnAxis(p1, p2 Polygon, axis Vector2D) bool {
	min1, max1 := Project(p1, axis)
	min2, max2 := Project(p2, axis)
	return max1 >= min2 && max2 >= min1
}

// Axes returns the unit normal of every edge of the polygon.
// A zero-length edge panics.
func Axes(polygon Polygon) []Vector2D {
	axes := make([]Vector2D, len(polygon))
	for i := range polygon {
		edge := polygon[(i+1)%len(polygon)].Sub(polygon[i])
		axes[i] = edge.Perpendicular().Normalize()
	}
	return axes
}

func satAxes(p1, p2 Polygon) []Vector2D {
	return append(Axes(p1), Axes(p2)...)
}

// PolygonsIntersect runs the separating axis test on two convex polygons
func PolygonsIntersect(p1, p2 Polygon) bool {
	for _, axis := range satAxes(p1, p2) {
		if !OverlapOnAxis(p1, p2, axis) {
			return false
		}
	}
	return true
}

// IntervalMTV returns the signed distance the first interval must move to
// stop overlapping the second, picking whichever direction is shorter.
// The second result is false when the intervals are already apart.
func IntervalMTV(min1, max1, min2, max2 float64) (float64, bool) {
	right := max2 - min1
	left := max1 - min2
	if left < 0 || right < 0 {
		return 0, false
	}
	if right < left {
		return right, true
	}
	return -left, true
}

// MinimumTranslationVector returns the shortest displacement of p1 that
// separates it from p2. The zero vector is returned when no axis overlaps.
func MinimumTranslationVector(p1, p2 Polygon) Vector2D {
	var mtv Vector2D
	overlap := math.Inf(1)
	for _, axis := range satAxes(p1, p2) {
		min1, max1 := Project(p1, axis)
		min2, max2 := Project(p2, axis)
		push, ok := IntervalMTV(min1, max1, min2, max2)
		if ok && math.Abs(push) < overlap {
			overlap = math.Abs(push)
			mtv = axis.Scale(push)
		}
	}
	return mtv
}

// PointInConvexPolygon reports whether point lies strictly inside the
// polygon. Points on an edge are outside.
func PointInConvexPolygon(point Vector2D, polygon Polygon) bool {
	sign := 0
	for i := range polygon {
		a := polygon[i]
		normal := polygon[(i+1)%len(polygon)].Sub(a).Perpendicular()
		dot := point.Sub(a).Dot(normal)
		var s int
		switch {
		case dot > 0:
			s = 1
		case dot < 0:
			s = -1
		default:
			return false
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return true
}

// SegmentIntersection returns the numerators of the intersection
// parameters along a and b and their shared denominator. ok is false
// for parallel segments.
func SegmentIntersection(a1, a2, b1, b2 Vector2D) (tNum, uNum, denom float64, ok bool) {
	denom = (a1.X-a2.X)*(b1.Y-b2.Y) - (a1.Y-a2.Y)*(b1.X-b2.X)
	if denom == 0 {
		return 0, 0, 0, false
	}
	tNum = (a1.X-b1.X)*(b1.Y-b2.Y) - (a1.Y-b1.Y)*(b1.X-b2.X)
	uNum = (a1.X-b1.X)*(a1.Y-a2.Y) - (a1.Y-b1.Y)*(a1.X-a2.X)
	return tNum, uNum, denom, true
}

// SegmentsIntersect reports whether segments a and b cross. The tolerance
// excludes that fraction of both segments at each end.
func SegmentsIntersect(a1, a2, b1, b2 Vector2D, tolerance float64) bool {
	tNum, uNum, denom, ok := SegmentIntersection(a1, a2, b1, b2)
	if !ok {
		return false
	}
	lower := denom * tolerance
	upper := denom - lower
	if denom < 0 && (tNum > lower || tNum < upper || uNum > lower || uNum < upper) {
		return false
	}
	if denom > 0 && (tNum < lower || tNum > upper || uNum < lower || uNum > upper) {
		return false
	}
	return true
}

// Raycast reports whether the segment from origin to target crosses any of
// the segments. Segments with an endpoint within eps of origin are ignored
// so a ray leaving a polygon corner does not hit its own edges. A ray of
// zero length hits nothing.
func Raycast(origin, target Vector2D, segments []Segment, eps float64) bool {
	if origin.ApproxEqual(target, eps) {
		return false
	}
	for _, s := range segments {
		if s.A.ApproxEqual(origin, eps) || s.B.ApproxEqual(origin, eps) {
			continue
		}
		if SegmentsIntersect(origin, target, s.A, s.B, s.Tolerance) {
			return true
		}
	}
	return false
}

// CanSee reports whether nothing in segments blocks the line from a to b
func CanSee(a, b Vector2D, segments []Segment, eps float64) bool {
	return !Raycast(a, b, segments, eps)
}
