package cloud

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/rbfcloud/utils"
)

// Unit square, one curve per side, corners only
const square2x2Msh = `$MeshFormat
4 0 8
$EndMeshFormat
$PhysicalNames
4
1 1 "West"
1 2 "North"
1 3 "East"
1 4 "South"
$EndPhysicalNames
$Entities
4 4 0 0
1 0 0 0 0 0 0 0
2 1 0 0 1 0 0 0
3 1 1 0 1 1 0 0
4 0 1 0 0 1 0 0
1 0 0 0 1 0 0 1 4 2 1 -2
2 1 0 0 1 1 0 1 3 2 2 -3
3 0 1 0 1 1 0 1 2 2 3 -4
4 0 0 0 0 1 0 1 1 2 4 -1
$EndEntities
$Nodes
4 4
1 0 0 1
1 0 0 0
2 0 0 1
2 1 0 0
3 0 0 1
3 1 1 0
4 0 0 1
4 0 1 0
$EndNodes
$Elements
4 4
1 1 1 1
1 1 2
2 1 1 1
2 2 3
3 1 1 1
3 3 4
4 1 1 1
4 4 1
$EndElements
`

// Unit square with a node at the middle of each side and one in the center,
// the same node positions as a 3 x 3 lattice.
const square3x3Msh = `$MeshFormat
4 0 8
$EndMeshFormat
$PhysicalNames
5
1 1 "West"
1 2 "North"
1 3 "East"
1 4 "South"
2 5 "Domain"
$EndPhysicalNames
$Entities
4 4 1 0
1 0 0 0 0 0 0 0
2 1 0 0 1 0 0 0
3 1 1 0 1 1 0 0
4 0 1 0 0 1 0 0
1 0 0 0 1 0 0 1 4 2 1 -2
2 1 0 0 1 1 0 1 3 2 2 -3
3 0 1 0 1 1 0 1 2 2 3 -4
4 0 0 0 0 1 0 1 1 2 4 -1
1 0 0 0 1 1 0 1 5 4 1 2 3 4
$EndEntities
$Nodes
9 9
1 0 0 1
1 0 0 0
2 0 0 1
2 1 0 0
3 0 0 1
3 1 1 0
4 0 0 1
4 0 1 0
1 1 0 1
5 0.5 0 0
2 1 0 1
6 1 0.5 0
3 1 0 1
7 0.5 1 0
4 1 0 1
8 0 0.5 0
1 2 0 1
9 0.5 0.5 0
$EndNodes
$Elements
9 20
1 0 15 1
1 1
2 0 15 1
2 2
3 0 15 1
3 3
4 0 15 1
4 4
1 1 1 2
5 1 5
6 5 2
2 1 1 2
7 2 6
8 6 3
3 1 1 2
9 3 7
10 7 4
4 1 1 2
11 4 8
12 8 1
1 2 2 8
13 1 5 9
14 5 2 9
15 2 6 9
16 6 3 9
17 3 7 9
18 7 4 9
19 4 8 9
20 8 1 9
$EndElements
`

func createTempMshFile(t *testing.T, content string) string {
	t.Helper()
	fileName := filepath.Join(t.TempDir(), "mesh.msh")
	require.NoError(t, os.WriteFile(fileName, []byte(content), 0644))
	return fileName
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.ErrorLevel})
}

// squareFacetSpecs declares the four sides with the given types, West first
func squareFacetSpecs(west, north, east, south utils.BCType) []FacetSpec {
	return []FacetSpec{
		{Name: West, Type: west},
		{Name: North, Type: north},
		{Name: East, Type: east},
		{Name: South, Type: south},
	}
}

// coordKey identifies a node by position across differently numbered clouds
func coordKey(p r2.Vec) [2]float64 {
	return [2]float64{math.Round(p.X*1e9) / 1e9, math.Round(p.Y*1e9) / 1e9}
}

func facetCoords(c *Cloud, name string) (keys [][2]float64) {
	f, ok := c.Facet(name)
	if !ok {
		return nil
	}
	for _, id := range f.Nodes {
		keys = append(keys, coordKey(c.Coord(id)))
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return
}

// checkCloudInvariants asserts the properties every finished cloud has
func checkCloudInvariants(t *testing.T, c *Cloud) {
	t.Helper()
	var (
		cn = c.Counts()
		N  = c.N()
	)
	assert.Equal(t, N, cn.N)
	assert.Equal(t, N, cn.Ni+cn.Nd+cn.Nn+cn.Nr)
	{ // Contiguous blocks in order internal < dirichlet < neumann < robin
		var lo int
		for _, bc := range utils.BCTypes {
			blo, bhi := c.Block(bc)
			assert.Equal(t, lo, blo, bc.String())
			assert.Equal(t, cn.Of(bc), bhi-blo, bc.String())
			for i := blo; i < bhi; i++ {
				assert.Equal(t, bc, c.Tag(i), "node %d", i)
			}
			lo = bhi
		}
		assert.Equal(t, N, lo)
	}
	{ // Facets are disjoint and agree with node tags
		owner := make(map[int]string)
		for _, f := range c.Facets() {
			for _, id := range f.Nodes {
				prev, dup := owner[id]
				assert.False(t, dup, "node %d in facets %s and %s", id, prev, f.Name)
				owner[id] = f.Name
				assert.Equal(t, f.Type, c.Tag(id))
			}
		}
	}
	{ // Stencils
		k := c.SupportSize()
		assert.True(t, k > 0 && k < N)
		for i := 0; i < N; i++ {
			s := c.Stencil(i)
			assert.Len(t, s, k)
			seen := make(map[int]bool)
			for _, j := range s {
				assert.True(t, j >= 0 && j < N)
				assert.NotEqual(t, i, j)
				assert.False(t, seen[j])
				seen[j] = true
			}
			// Nearest first, and nothing outside the stencil is strictly closer
			p := c.Coord(i)
			var last float64
			for _, j := range s {
				d := r2.Norm(r2.Sub(c.Coord(j), p))
				assert.GreaterOrEqual(t, d+1.e-12, last)
				last = d
			}
			for j := 0; j < N; j++ {
				if j != i && !seen[j] {
					assert.GreaterOrEqual(t, r2.Norm(r2.Sub(c.Coord(j), p))+1.e-12, last)
				}
			}
		}
	}
	{ // Unit normals exactly on flux nodes
		for i := 0; i < N; i++ {
			n, ok := c.Normal(i)
			assert.Equal(t, c.Tag(i).IsFlux(), ok, "node %d", i)
			if ok {
				assert.InDelta(t, 1., r2.Norm(n), 1.e-12)
			}
		}
	}
	{ // Renumbering map is a bijection and rerunning the partition is the identity
		m := c.RenumberingMap()
		assert.Len(t, m, N)
		seen := make([]bool, N)
		for _, nid := range m {
			assert.False(t, seen[nid])
			seen[nid] = true
		}
		for i, nid := range BlockPartition(c.Tags()) {
			assert.Equal(t, i, nid)
		}
	}
}

func errorContains(t *testing.T, err error, kind Kind, substr string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, IsKind(err, kind), "expected %s, got %v", kind, err)
	assert.True(t, strings.Contains(err.Error(), substr), "%q does not contain %q", err.Error(), substr)
}
