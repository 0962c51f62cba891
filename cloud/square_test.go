package cloud

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/rbfcloud/utils"
)

func TestSquareBuilder(t *testing.T) {
	var (
		D = utils.BCDirichlet
		N = utils.BCNeumann
		R = utils.BCRobin
	)
	{ // 3 x 3 all dirichlet: one internal node in the middle
		c, err := New(&SquareBuilder{Nx: 3, Ny: 3,
			Facets: squareFacetSpecs(D, D, D, D), SupportSize: SupportMax, Logger: quietLogger()})
		require.NoError(t, err)
		assert.Equal(t, Counts{N: 9, Ni: 1, Nd: 8}, c.Counts())
		assert.Equal(t, 8, c.SupportSize())
		assert.Equal(t, utils.BCInternal, c.Tag(0))
		assert.Equal(t, r2.Vec{X: 0.5, Y: 0.5}, c.Coord(0))
		for i := 1; i < 9; i++ {
			_, ok := c.Normal(i)
			assert.False(t, ok)
		}
		checkCloudInvariants(t, c)

		assert.Equal(t, 2, c.Dim())
		lo, hi := c.Block(utils.BCType(9))
		assert.Equal(t, 0, lo)
		assert.Equal(t, 0, hi)
		lo, hi = c.Block(utils.BCDirichlet)
		assert.Equal(t, 1, lo)
		assert.Equal(t, 9, hi)

		m := c.Coordinates()
		r, cols := m.Dims()
		assert.Equal(t, 9, r)
		assert.Equal(t, 2, cols)
		for i := 0; i < 9; i++ {
			assert.Equal(t, c.Coord(i).X, m.At(i, 0))
			assert.Equal(t, c.Coord(i).Y, m.At(i, 1))
		}
		m.Set(0, 0, 99)
		assert.Equal(t, r2.Vec{X: 0.5, Y: 0.5}, c.Coord(0))
		assert.Equal(t, 0.5, c.Coordinates().At(0, 0))
	}
	{ // Corner ownership follows West, North, East, South
		c, err := New(&SquareBuilder{Nx: 3, Ny: 3,
			Facets: squareFacetSpecs(N, N, D, D), SupportSize: 4, Logger: quietLogger()})
		require.NoError(t, err)
		assert.Equal(t, Counts{N: 9, Ni: 1, Nd: 3, Nn: 5}, c.Counts())
		assert.Equal(t, [][2]float64{{0, 0}, {0, 0.5}, {0, 1}}, facetCoords(c, West))
		assert.Equal(t, [][2]float64{{0.5, 1}, {1, 1}}, facetCoords(c, North))
		assert.Equal(t, [][2]float64{{1, 0}, {1, 0.5}}, facetCoords(c, East))
		assert.Equal(t, [][2]float64{{0.5, 0}}, facetCoords(c, South))
		for i := 0; i < c.N(); i++ {
			n, ok := c.Normal(i)
			if !ok {
				continue
			}
			if c.Coord(i).X == 0 {
				assert.Equal(t, r2.Vec{X: -1}, n)
			} else {
				assert.Equal(t, r2.Vec{Y: 1}, n)
			}
		}
		// The center node's four nearest are the side midpoints
		center := -1
		for i := 0; i < c.N(); i++ {
			if c.Tag(i) == utils.BCInternal {
				center = i
			}
		}
		require.Equal(t, 0, center)
		var mids [][2]float64
		for _, j := range c.Stencil(center) {
			mids = append(mids, coordKey(c.Coord(j)))
		}
		assert.ElementsMatch(t, [][2]float64{{0.5, 0}, {1, 0.5}, {0.5, 1}, {0, 0.5}}, mids)
		checkCloudInvariants(t, c)
	}
	{ // Every boundary type present, rectangular lattice
		c, err := New(&SquareBuilder{Nx: 7, Ny: 5,
			Facets: squareFacetSpecs(R, N, D, R), SupportSize: 6, Logger: quietLogger()})
		require.NoError(t, err)
		cn := c.Counts()
		assert.Equal(t, 35, cn.N)
		assert.Equal(t, 15, cn.Ni)
		assert.Equal(t, 5+5, cn.Nr) // West column and the inner South nodes
		assert.Equal(t, 6, cn.Nn)
		assert.Equal(t, 4, cn.Nd)
		checkCloudInvariants(t, c)
		gi := c.GridIndex()
		require.NotNil(t, gi)
		for k := 0; k < 7; k++ {
			for l := 0; l < 5; l++ {
				p := c.Coord(gi.ID(k, l))
				assert.InDelta(t, float64(k)/6, p.X, 1.e-12)
				assert.InDelta(t, float64(l)/4, p.Y, 1.e-12)
			}
		}
	}
	{ // Smallest lattice
		c, err := New(&SquareBuilder{Nx: 2, Ny: 2,
			Facets: squareFacetSpecs(N, D, D, D), SupportSize: SupportMax, Logger: quietLogger()})
		require.NoError(t, err)
		assert.Equal(t, Counts{N: 4, Nd: 2, Nn: 2}, c.Counts())
		assert.Equal(t, 3, c.SupportSize())
		checkCloudInvariants(t, c)
	}
}

func TestSquareBuilderJitter(t *testing.T) {
	var (
		seed  = uint64(42)
		other = uint64(7)
		specs = squareFacetSpecs(utils.BCDirichlet, utils.BCNeumann, utils.BCRobin, utils.BCRobin)
	)
	build := func(seed *uint64) *Cloud {
		c, err := New(&SquareBuilder{Nx: 6, Ny: 6, Seed: seed,
			Facets: specs, SupportSize: 5, Logger: quietLogger()})
		require.NoError(t, err)
		checkCloudInvariants(t, c)
		return c
	}
	var (
		lattice = build(nil)
		a       = build(&seed)
		b       = build(&seed)
		c       = build(&other)
	)
	delta := 0.2 / 2
	var moved, differs int
	gl, ga, gc := lattice.GridIndex(), a.GridIndex(), c.GridIndex()
	for k := 0; k < 6; k++ {
		for l := 0; l < 6; l++ {
			var (
				p0 = lattice.Coord(gl.ID(k, l))
				pa = a.Coord(ga.ID(k, l))
				pc = c.Coord(gc.ID(k, l))
			)
			switch a.Tag(ga.ID(k, l)) {
			case utils.BCDirichlet, utils.BCNeumann:
				assert.Equal(t, p0, pa)
			default:
				assert.LessOrEqual(t, math.Abs(pa.X-p0.X), delta)
				assert.LessOrEqual(t, math.Abs(pa.Y-p0.Y), delta)
				if pa != p0 {
					moved++
				}
				if pa != pc {
					differs++
				}
			}
		}
	}
	assert.Greater(t, moved, 0)
	assert.Greater(t, differs, 0)
	// Same seed, same cloud
	for i := 0; i < a.N(); i++ {
		assert.Equal(t, a.Coord(i), b.Coord(i))
		assert.Equal(t, a.Stencil(i), b.Stencil(i))
	}
}

func TestSquareBuilderErrors(t *testing.T) {
	D := utils.BCDirichlet
	specs := squareFacetSpecs(D, D, D, D)
	{
		_, err := New(&SquareBuilder{Nx: 1, Ny: 3, Facets: specs, SupportSize: SupportMax})
		errorContains(t, err, ConfigurationError, "at least 2 x 2")
	}
	{
		_, err := New(&SquareBuilder{Nx: 3, Ny: 3, Facets: specs[:3], SupportSize: SupportMax})
		errorContains(t, err, ConfigurationError, "exactly the facets")
	}
	{
		bad := append([]FacetSpec(nil), specs...)
		bad[3].Name = "Bottom"
		_, err := New(&SquareBuilder{Nx: 3, Ny: 3, Facets: bad, SupportSize: SupportMax})
		errorContains(t, err, ConfigurationError, `"South" is missing`)
	}
	{
		bad := append([]FacetSpec(nil), specs...)
		bad[1].Type = utils.BCType(9)
		_, err := New(&SquareBuilder{Nx: 3, Ny: 3, Facets: bad, SupportSize: SupportMax})
		errorContains(t, err, ConfigurationError, "invalid boundary type")
	}
	{
		_, err := New(&SquareBuilder{Nx: 3, Ny: 3, Facets: specs, SupportSize: 0})
		errorContains(t, err, ConfigurationError, "support size")
	}
	{ // N-1 is the largest stencil
		_, err := New(&SquareBuilder{Nx: 2, Ny: 2, Facets: specs, SupportSize: 4, Logger: quietLogger()})
		errorContains(t, err, ConfigurationError, "strictly between")
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.NotErrorIs(t, err, ErrParse)
	}
}
