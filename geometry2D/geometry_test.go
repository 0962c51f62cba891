package geometry2D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestLinspace(t *testing.T) {
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5), 1.e-14)
	assert.Equal(t, []float64{0, 1}, Linspace(0, 1, 2))
	assert.Equal(t, []float64{3}, Linspace(3, 4, 1))
	assert.InDelta(t, 0.25, MinSpacing(Linspace(0, 1, 5), Linspace(0, 1, 3)), 1.e-14)
	assert.True(t, math.IsInf(MinSpacing([]float64{1}), 1))
}

func TestOutwardNormal(t *testing.T) {
	// Bottom edge of the unit square, interior above
	n, err := OutwardNormal(r2.Vec{X: 1}, r2.Vec{X: 0.5, Y: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0., n.X, 1.e-14)
	assert.InDelta(t, -1., n.Y, 1.e-14)
	// Same edge traversed backwards gives the same normal
	n, err = OutwardNormal(r2.Vec{X: -2}, r2.Vec{X: -0.5, Y: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, -1., n.Y, 1.e-14)
	// Slanted edge, unit length
	n, err = OutwardNormal(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1, Y: -1})
	require.NoError(t, err)
	assert.InDelta(t, 1., r2.Norm(n), 1.e-14)
	assert.Less(t, r2.Dot(n, r2.Vec{X: 1, Y: -1}), 0.)

	_, err = OutwardNormal(r2.Vec{}, r2.Vec{X: 1})
	assert.Error(t, err)
}

func TestBoundingBox(t *testing.T) {
	bb := NewBoundingBox([]r2.Vec{{X: 0, Y: 1}, {X: 2, Y: -1}, {X: 1, Y: 0}})
	assert.Equal(t, r2.Vec{X: 0, Y: -1}, bb.Min)
	assert.Equal(t, r2.Vec{X: 2, Y: 1}, bb.Max)
	assert.Equal(t, r2.Vec{X: 2, Y: 2}, bb.Size())
	assert.Equal(t, r2.Vec{X: 1, Y: 0}, bb.Centroid())
	assert.True(t, bb.Contains(r2.Vec{X: 1, Y: 1}))
	assert.False(t, bb.Contains(r2.Vec{X: 3, Y: 0}))
}
