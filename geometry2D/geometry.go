package geometry2D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

const NODETOL = 1.e-12

// Linspace returns n evenly spaced values covering [lo, hi]
func Linspace(lo, hi float64, n int) (x []float64) {
	x = make([]float64, n)
	if n == 1 {
		x[0] = lo
		return
	}
	return floats.Span(x, lo, hi)
}

// MinSpacing is the smallest gap between consecutive values of each lattice axis
func MinSpacing(axes ...[]float64) (delta float64) {
	delta = math.Inf(1)
	for _, x := range axes {
		for i := 1; i < len(x); i++ {
			delta = math.Min(delta, math.Abs(x[i]-x[i-1]))
		}
	}
	return
}

// RotateCCW rotates v by +90 degrees
func RotateCCW(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// OutwardNormal turns the tangent of a boundary segment into a unit normal
// pointing away from interior, the vector from a point of the segment to a
// point inside the domain.
func OutwardNormal(tangent, interior r2.Vec) (n r2.Vec, err error) {
	if r2.Norm(tangent) < NODETOL {
		err = fmt.Errorf("degenerate tangent %v", tangent)
		return
	}
	n = RotateCCW(tangent)
	if r2.Dot(n, interior) > 0 { // pointing inward
		n = r2.Scale(-1, n)
	}
	n = r2.Unit(n)
	return
}

// BoundingBox is the axis aligned extent of a set of points
type BoundingBox struct {
	Min, Max r2.Vec
}

func NewBoundingBox(pts []r2.Vec) (bb BoundingBox) {
	bb.Min = r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	bb.Max = r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range pts {
		bb.Min.X, bb.Min.Y = math.Min(bb.Min.X, p.X), math.Min(bb.Min.Y, p.Y)
		bb.Max.X, bb.Max.Y = math.Max(bb.Max.X, p.X), math.Max(bb.Max.Y, p.Y)
	}
	return
}

func (bb BoundingBox) Size() r2.Vec { return r2.Sub(bb.Max, bb.Min) }

func (bb BoundingBox) Centroid() r2.Vec {
	return r2.Scale(0.5, r2.Add(bb.Min, bb.Max))
}

func (bb BoundingBox) Contains(p r2.Vec) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X && p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}
