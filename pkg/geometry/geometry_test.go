package geometry

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	t.Run("3-4-5 triangle in the XY plane", func(t *testing.T) {
		a := Point{0, 0, 0}
		b := Point{3, 4, 0}
		if got := a.Distance(b); math.Abs(got-5.0) > 1e-9 {
			t.Errorf("expected distance 5.0, got %f", got)
		}
	})

	t.Run("coincident points have zero distance", func(t *testing.T) {
		p := Point{10, 20, 30}
		if got := p.Distance(p); got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
	})
}

func TestLerp(t *testing.T) {
	a := Point{0, 0, 0}
	b := Point{10, 0, 0}

	t.Run("t=0 returns a", func(t *testing.T) {
		if got := Lerp(a, b, 0); got != a {
			t.Errorf("expected %v, got %v", a, got)
		}
	})

	t.Run("t=1 returns b", func(t *testing.T) {
		if got := Lerp(a, b, 1); got != b {
			t.Errorf("expected %v, got %v", b, got)
		}
	})

	t.Run("t=0.5 returns midpoint", func(t *testing.T) {
		want := Point{5, 0, 0}
		if got := Lerp(a, b, 0.5); got != want {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

func TestClamp(t *testing.T) {
	cases := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%f, %f, %f) = %f, want %f", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestBoundingBox(t *testing.T) {
	a := Point{10, -5, 3}
	b := Point{-2, 8, 1}
	box := BoundingBox(a, b)

	want := AABB{Min: Point{-2, -5, 1}, Max: Point{10, 8, 3}}
	if box != want {
		t.Errorf("expected %v, got %v", want, box)
	}
}
