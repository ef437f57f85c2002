package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func square(x, y, side float64) Polygon {
	return Polygon{
		{X: x, Y: y},
		{X: x + side, Y: y},
		{X: x + side, Y: y + side},
		{X: x, Y: y + side},
	}
}

func TestArea(t *testing.T) {
	tests := []struct {
		name     string
		poly     Polygon
		expected float64
	}{
		{
			name:     "unit square",
			poly:     square(0, 0, 1),
			expected: 1,
		},
		{
			name:     "clockwise square is unsigned",
			poly:     Polygon{{0, 0}, {0, 2}, {2, 2}, {2, 0}},
			expected: 4,
		},
		{
			name:     "triangle",
			poly:     Polygon{{0, 0}, {4, 0}, {0, 3}},
			expected: 6,
		},
		{
			name:     "empty polygon",
			poly:     nil,
			expected: 0,
		},
		{
			name:     "single point",
			poly:     Polygon{{1, 1}},
			expected: 0,
		},
		{
			name:     "two points",
			poly:     Polygon{{0, 0}, {5, 5}},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Area(tt.poly); !almostEqual(got, tt.expected, 1e-9) {
				t.Errorf("Area() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// The two centroid primitives disagree on any polygon whose vertices are not
// evenly distributed around its mass. Mixing them up is the classic bug, so
// pin both results on a shape where they differ.
func TestCentroidPrimitivesDiffer(t *testing.T) {
	// L-shaped hexagon: area-weighted centroid is pulled into the thick arm,
	// the vertex mean is not.
	ell := Polygon{{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 4}, {0, 4}}

	ring := RingCentroid(ell)
	mean := VertexCentroid(ell)

	// Area-weighted centroid of this L: area 7, centroid (9.5/7, 9.5/7).
	wantRing := Point{X: 9.5 / 7, Y: 9.5 / 7}
	if !almostEqual(ring.X, wantRing.X, 1e-9) || !almostEqual(ring.Y, wantRing.Y, 1e-9) {
		t.Errorf("RingCentroid() = %+v, want %+v", ring, wantRing)
	}

	wantMean := Point{X: 10.0 / 6, Y: 10.0 / 6}
	if !almostEqual(mean.X, wantMean.X, 1e-9) || !almostEqual(mean.Y, wantMean.Y, 1e-9) {
		t.Errorf("VertexCentroid() = %+v, want %+v", mean, wantMean)
	}

	if almostEqual(ring.X, mean.X, 1e-9) && almostEqual(ring.Y, mean.Y, 1e-9) {
		t.Error("expected the two centroid primitives to disagree on an L-shape")
	}
}

func TestRingCentroidDegenerateFallsBack(t *testing.T) {
	// Collinear ring has zero area; must fall back to the vertex mean
	// instead of dividing by zero.
	line := Polygon{{0, 0}, {1, 1}, {2, 2}}
	got := RingCentroid(line)
	if !almostEqual(got.X, 1, 1e-9) || !almostEqual(got.Y, 1, 1e-9) {
		t.Errorf("RingCentroid(collinear) = %+v, want {1 1}", got)
	}

	if got := VertexCentroid(nil); got != (Point{}) {
		t.Errorf("VertexCentroid(nil) = %+v, want zero point", got)
	}
}

func TestContainsPoint(t *testing.T) {
	poly := square(0, 0, 4)
	concave := Polygon{{0, 0}, {4, 0}, {4, 4}, {2, 2}, {0, 4}}

	tests := []struct {
		name string
		poly Polygon
		pt   Point
		want bool
	}{
		{name: "inside square", poly: poly, pt: Point{2, 2}, want: true},
		{name: "outside square", poly: poly, pt: Point{5, 2}, want: false},
		{name: "outside above", poly: poly, pt: Point{2, 9}, want: false},
		{name: "inside concave arm", poly: concave, pt: Point{1, 1}, want: true},
		{name: "in concave notch", poly: concave, pt: Point{2, 3.5}, want: false},
		{name: "degenerate polygon", poly: Polygon{{0, 0}, {1, 1}}, pt: Point{0, 0}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsPoint(tt.poly, tt.pt); got != tt.want {
				t.Errorf("ContainsPoint(%+v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
}

func TestConvexHull(t *testing.T) {
	t.Run("square with interior point", func(t *testing.T) {
		pts := []Point{{0, 0}, {4, 0}, {2, 2}, {4, 4}, {0, 4}}
		hull := ConvexHull(pts)
		if len(hull) != 4 {
			t.Fatalf("hull has %d vertices, want 4: %+v", len(hull), hull)
		}
		if !almostEqual(Area(hull), 16, 1e-9) {
			t.Errorf("hull area = %v, want 16", Area(hull))
		}
		if signedArea(hull) <= 0 {
			t.Error("hull winding is not counter-clockwise")
		}
	})

	t.Run("duplicates removed", func(t *testing.T) {
		pts := []Point{{0, 0}, {0, 0}, {1, 0}, {1, 0}, {1, 1}, {0, 1}}
		hull := ConvexHull(pts)
		seen := make(map[Point]bool)
		for _, pt := range hull {
			if seen[pt] {
				t.Fatalf("duplicate hull vertex %+v", pt)
			}
			seen[pt] = true
		}
	})

	t.Run("collinear points collapse", func(t *testing.T) {
		pts := []Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
		hull := ConvexHull(pts)
		if len(hull) != 2 {
			t.Fatalf("collinear hull has %d vertices, want 2: %+v", len(hull), hull)
		}
	})

	t.Run("small inputs unchanged", func(t *testing.T) {
		if got := ConvexHull([]Point{{3, 7}}); len(got) != 1 || got[0] != (Point{3, 7}) {
			t.Errorf("single point hull = %+v", got)
		}
		if got := ConvexHull([]Point{{0, 0}, {1, 2}}); len(got) != 2 {
			t.Errorf("two point hull = %+v", got)
		}
		if got := ConvexHull(nil); len(got) != 0 {
			t.Errorf("empty hull = %+v", got)
		}
	})

	t.Run("hull never shrinks area", func(t *testing.T) {
		concave := Polygon{{0, 0}, {4, 0}, {4, 4}, {2, 1}, {0, 4}}
		hull := ConvexHull(concave)
		if Area(hull) < Area(concave) {
			t.Errorf("hull area %v < polygon area %v", Area(hull), Area(concave))
		}
	})
}

func TestClip(t *testing.T) {
	t.Run("half overlapping squares", func(t *testing.T) {
		a := square(0, 0, 2)
		b := square(1, 0, 2)
		got := Clip(a, b)
		if !almostEqual(Area(got), 2, 1e-9) {
			t.Errorf("clip area = %v, want 2", Area(got))
		}
	})

	t.Run("disjoint squares", func(t *testing.T) {
		got := Clip(square(0, 0, 1), square(5, 5, 1))
		if Area(got) != 0 {
			t.Errorf("disjoint clip area = %v, want 0", Area(got))
		}
	})

	t.Run("subject inside clipper", func(t *testing.T) {
		got := Clip(square(1, 1, 1), square(0, 0, 4))
		if !almostEqual(Area(got), 1, 1e-9) {
			t.Errorf("contained clip area = %v, want 1", Area(got))
		}
	})

	t.Run("clockwise clipper normalized", func(t *testing.T) {
		cw := Polygon{{0, 0}, {0, 2}, {2, 2}, {2, 0}}
		got := Clip(square(1, 1, 2), cw)
		if !almostEqual(Area(got), 1, 1e-9) {
			t.Errorf("clip with cw clipper area = %v, want 1", Area(got))
		}
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		if got := Clip(nil, square(0, 0, 1)); got != nil {
			t.Errorf("nil subject clip = %+v", got)
		}
		if got := Clip(square(0, 0, 1), Polygon{{0, 0}, {1, 1}}); got != nil {
			t.Errorf("degenerate clipper clip = %+v", got)
		}
	})

	t.Run("result area bounded and finite", func(t *testing.T) {
		a := Polygon{{0, 0}, {3, 0}, {3, 3}, {1.5, 1}, {0, 3}} // concave subject
		b := square(0.5, 0.5, 2)
		got := Clip(a, b)
		area := Area(got)
		if math.IsNaN(area) || math.IsInf(area, 0) {
			t.Fatalf("clip area is not finite: %v", area)
		}
		min := math.Min(Area(a), Area(b))
		if area > min+1e-9 {
			t.Errorf("clip area %v exceeds min input area %v", area, min)
		}
	})
}

func TestIoU(t *testing.T) {
	t.Run("identical squares", func(t *testing.T) {
		q := square(0, 0, 2)
		if got := IoU(q, q); !almostEqual(got, 1, 1e-9) {
			t.Errorf("IoU(A,A) = %v, want 1", got)
		}
	})

	t.Run("shifted square is one third", func(t *testing.T) {
		// Intersection 2, union 6.
		a := square(0, 0, 2)
		b := square(1, 0, 2)
		if got := IoU(a, b); !almostEqual(got, 1.0/3, 1e-9) {
			t.Errorf("IoU = %v, want 1/3", got)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := square(0, 0, 3)
		b := Polygon{{1, 1}, {5, 1}, {5, 4}, {1, 4}}
		if !almostEqual(IoU(a, b), IoU(b, a), 1e-9) {
			t.Errorf("IoU not symmetric: %v vs %v", IoU(a, b), IoU(b, a))
		}
	})

	t.Run("disjoint", func(t *testing.T) {
		if got := IoU(square(0, 0, 1), square(9, 9, 1)); got != 0 {
			t.Errorf("disjoint IoU = %v, want 0", got)
		}
	})

	t.Run("zero union", func(t *testing.T) {
		if got := IoU(nil, nil); got != 0 {
			t.Errorf("empty IoU = %v, want 0", got)
		}
	})
}

func TestUnionArea(t *testing.T) {
	a := square(0, 0, 2)
	b := square(1, 0, 2)
	if got := UnionArea(a, b); !almostEqual(got, 6, 1e-9) {
		t.Errorf("UnionArea = %v, want 6", got)
	}
}

func TestBounds(t *testing.T) {
	t.Run("of polygon", func(t *testing.T) {
		b := BoundsOf(Polygon{{1, 2}, {5, -1}, {3, 7}})
		want := Bounds{MinX: 1, MinY: -1, MaxX: 5, MaxY: 7}
		if b != want {
			t.Errorf("BoundsOf = %+v, want %+v", b, want)
		}
	})

	t.Run("intersects", func(t *testing.T) {
		a := BoundsOf(square(0, 0, 2))
		if !a.Intersects(BoundsOf(square(1, 1, 2))) {
			t.Error("overlapping bounds reported disjoint")
		}
		if a.Intersects(BoundsOf(square(5, 5, 1))) {
			t.Error("disjoint bounds reported overlapping")
		}
		// Touching edges count as intersecting.
		if !a.Intersects(BoundsOf(square(2, 0, 2))) {
			t.Error("touching bounds reported disjoint")
		}
	})

	t.Run("empty polygon intersects nothing", func(t *testing.T) {
		if BoundsOf(nil).Intersects(BoundsOf(square(0, 0, 1))) {
			t.Error("empty bounds intersects a real box")
		}
	})

	t.Run("extend", func(t *testing.T) {
		got := BoundsOf(square(0, 0, 1)).Extend(BoundsOf(square(3, 3, 1)))
		want := Bounds{MinX: 0, MinY: 0, MaxX: 4, MaxY: 4}
		if got != want {
			t.Errorf("Extend = %+v, want %+v", got, want)
		}
	})
}
