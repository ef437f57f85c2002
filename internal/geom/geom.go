// Package geom provides the 2D computational-geometry primitives used by
// shape matching and operator-territory resolution: shoelace area, centroids,
// point-in-polygon, convex hull, polygon clipping and IoU similarity.
//
// All functions are pure and never mutate their inputs. Polygons are open
// rings: the last vertex implicitly connects back to the first, and callers
// must not duplicate the first vertex at the end. Degenerate polygons (fewer
// than 3 vertices) degrade gracefully instead of failing: zero area, empty
// clip, false containment.
package geom

import (
	"math"
	"sort"
)

// Point is a 2D coordinate. Whether it carries projected metres or lat/lng
// degrees is the caller's convention; a single operation must not mix the two.
type Point struct {
	X float64
	Y float64
}

// Polygon is an ordered vertex ring without explicit closure.
type Polygon []Point

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// signedArea returns the shoelace sum divided by two. Positive for
// counter-clockwise winding.
func signedArea(p Polygon) float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// Area returns the unsigned polygon area via the shoelace formula.
// Polygons with fewer than 3 vertices have zero area.
func Area(p Polygon) float64 {
	return math.Abs(signedArea(p))
}

// VertexCentroid returns the arithmetic mean of a point set. Use this for
// seed/cloud points; for a ring treated as a filled region use RingCentroid.
func VertexCentroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, pt := range pts {
		sx += pt.X
		sy += pt.Y
	}
	n := float64(len(pts))
	return Point{X: sx / n, Y: sy / n}
}

// RingCentroid returns the area-weighted centroid of the filled region
// bounded by the ring. Rings with (near-)zero area fall back to the vertex
// mean, as do degenerate rings.
func RingCentroid(p Polygon) Point {
	if len(p) < 3 {
		return VertexCentroid(p)
	}
	var cx, cy, a float64
	for i := range p {
		j := (i + 1) % len(p)
		cross := p[i].X*p[j].Y - p[j].X*p[i].Y
		a += cross
		cx += (p[i].X + p[j].X) * cross
		cy += (p[i].Y + p[j].Y) * cross
	}
	a /= 2
	if math.Abs(a) < 1e-12 {
		return VertexCentroid(p)
	}
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}
}

// ContainsPoint reports whether pt lies inside the polygon, using the
// ray-casting parity test. A point exactly on an edge has
// implementation-defined inclusion. Degenerate polygons contain nothing.
func ContainsPoint(p Polygon, pt Point) bool {
	if len(p) < 3 {
		return false
	}
	inside := false
	j := len(p) - 1
	for i := 0; i < len(p); i++ {
		pi, pj := p[i], p[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			xAt := pi.X + (pt.Y-pi.Y)/(pj.Y-pi.Y)*(pj.X-pi.X)
			if pt.X < xAt {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// cross returns the z component of (b-a) x (c-a).
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// ConvexHull returns the convex hull of a point set using Andrew's monotone
// chain, in counter-clockwise winding with no duplicate endpoints. Inputs
// with fewer than 3 distinct points are returned as-is (deduplicated and
// sorted); collinear interior points are dropped from the hull.
func ConvexHull(pts []Point) Polygon {
	if len(pts) < 3 {
		return append(Polygon(nil), pts...)
	}

	sorted := append([]Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	// Drop exact duplicates so the hull never repeats a vertex.
	unique := sorted[:1]
	for _, pt := range sorted[1:] {
		last := unique[len(unique)-1]
		if pt.X != last.X || pt.Y != last.Y {
			unique = append(unique, pt)
		}
	}
	if len(unique) < 3 {
		return append(Polygon(nil), unique...)
	}

	var lower Polygon
	for _, pt := range unique {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], pt) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, pt)
	}

	var upper Polygon
	for i := len(unique) - 1; i >= 0; i-- {
		pt := unique[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], pt) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, pt)
	}

	// The last vertex of each chain is the first of the other.
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// Clip trims the subject polygon against a convex clip polygon using
// Sutherland-Hodgman and returns the intersection ring. The clipper must be
// convex; that precondition is not checked and a concave clipper yields an
// undefined result. The subject may be concave. Parallel or degenerate edge
// pairs fall back to keeping the unclipped endpoint instead of producing NaN
// vertices. An empty result means no overlap.
func Clip(subject, clipper Polygon) Polygon {
	if len(subject) < 3 || len(clipper) < 3 {
		return nil
	}

	// The half-plane test below assumes counter-clockwise clip winding.
	clip := clipper
	if signedArea(clip) < 0 {
		clip = make(Polygon, len(clipper))
		for i, pt := range clipper {
			clip[len(clipper)-1-i] = pt
		}
	}

	out := append(Polygon(nil), subject...)
	for i := range clip {
		if len(out) == 0 {
			return nil
		}
		a := clip[i]
		b := clip[(i+1)%len(clip)]

		in := out
		out = nil
		for j := range in {
			cur := in[j]
			prev := in[(j+len(in)-1)%len(in)]
			curInside := cross(a, b, cur) >= 0
			prevInside := cross(a, b, prev) >= 0

			switch {
			case curInside && prevInside:
				out = append(out, cur)
			case curInside && !prevInside:
				out = append(out, edgeIntersect(prev, cur, a, b), cur)
			case !curInside && prevInside:
				out = append(out, edgeIntersect(prev, cur, a, b))
			}
		}
	}
	return out
}

// edgeIntersect returns the intersection of line p1-p2 with line a-b.
// When the lines are parallel or degenerate it returns p2, the endpoint that
// survives unclipped.
func edgeIntersect(p1, p2, a, b Point) Point {
	dx1 := p2.X - p1.X
	dy1 := p2.Y - p1.Y
	dx2 := b.X - a.X
	dy2 := b.Y - a.Y

	denom := dx1*dy2 - dy1*dx2
	if denom == 0 {
		return p2
	}
	t := ((a.X-p1.X)*dy2 - (a.Y-p1.Y)*dx2) / denom
	return Point{X: p1.X + t*dx1, Y: p1.Y + t*dy1}
}

// IntersectArea returns the area of the intersection of a and b, computed by
// clipping a against b. Exact when b is convex; for concave pairs this is a
// best-effort approximation inherited from Sutherland-Hodgman.
func IntersectArea(a, b Polygon) float64 {
	return Area(Clip(a, b))
}

// UnionArea returns area(a) + area(b) - intersectArea(a, b). This is exact
// only when a, b, or their intersection is convex; concave pairs with
// multiple intersection components over- or under-count. Known limitation.
func UnionArea(a, b Polygon) float64 {
	return Area(a) + Area(b) - IntersectArea(a, b)
}

// IoU returns the intersection-over-union similarity of two polygons in
// [0, 1]. A zero-area union scores 0.
func IoU(a, b Polygon) float64 {
	inter := IntersectArea(a, b)
	union := Area(a) + Area(b) - inter
	if union <= 0 {
		return 0
	}
	ratio := inter / union
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// BoundsOf returns the axis-aligned bounding box of a polygon. An empty
// polygon yields an inverted box that intersects nothing.
func BoundsOf(p Polygon) Bounds {
	if len(p) == 0 {
		return Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	}
	b := Bounds{MinX: p[0].X, MinY: p[0].Y, MaxX: p[0].X, MaxY: p[0].Y}
	for _, pt := range p[1:] {
		if pt.X < b.MinX {
			b.MinX = pt.X
		}
		if pt.Y < b.MinY {
			b.MinY = pt.Y
		}
		if pt.X > b.MaxX {
			b.MaxX = pt.X
		}
		if pt.Y > b.MaxY {
			b.MaxY = pt.Y
		}
	}
	return b
}

// Extend grows b to cover o and returns the result.
func (b Bounds) Extend(o Bounds) Bounds {
	if o.MinX < b.MinX {
		b.MinX = o.MinX
	}
	if o.MinY < b.MinY {
		b.MinY = o.MinY
	}
	if o.MaxX > b.MaxX {
		b.MaxX = o.MaxX
	}
	if o.MaxY > b.MaxY {
		b.MaxY = o.MaxY
	}
	return b
}

// Intersects reports whether two bounding boxes overlap or touch.
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}
