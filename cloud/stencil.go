package cloud

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/rbfcloud/utils"
)

// stencilPoint is a node coordinate that remembers its id, the kd-tree
// reorders its input while building.
type stencilPoint struct {
	id int
	r2.Vec
}

func (p stencilPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(stencilPoint)
	if d == 0 {
		return p.X - q.X
	}
	return p.Y - q.Y
}

func (p stencilPoint) Dims() int { return 2 }

// Distance is the squared euclidean distance
func (p stencilPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(stencilPoint)
	return r2.Norm2(r2.Sub(p.Vec, q.Vec))
}

type stencilPoints []stencilPoint

func (p stencilPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p stencilPoints) Len() int                      { return len(p) }
func (p stencilPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p stencilPoints) Pivot(d kdtree.Dim) int {
	pl := stencilPlane{Dim: d, points: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

// stencilPlane sorts points along one axis
type stencilPlane struct {
	kdtree.Dim
	points stencilPoints
}

func (pl stencilPlane) Len() int { return len(pl.points) }
func (pl stencilPlane) Less(i, j int) bool {
	return pl.points[i].Compare(pl.points[j], pl.Dim) < 0
}
func (pl stencilPlane) Swap(i, j int) {
	pl.points[i], pl.points[j] = pl.points[j], pl.points[i]
}
func (pl stencilPlane) Slice(start, end int) kdtree.SortSlicer {
	return stencilPlane{Dim: pl.Dim, points: pl.points[start:end]}
}

// defineLocalSupports finds the supportSize nearest neighbors of every
// node. Each query asks for one extra point and removes the query node by
// id, so a node sharing its coordinate with others still gets a stencil
// without itself.
func (c *Cloud) defineLocalSupports() error {
	var (
		N   = c.N()
		k   = c.supportSize
		pts = make(stencilPoints, N)
	)
	if k <= 0 || k >= N {
		return newError(ConfigurationError, "support size %d must be strictly between 0 and %d", k, N)
	}
	for i, nd := range c.nodes {
		pts[i] = stencilPoint{id: i, Vec: nd.Coord}
	}
	query := make([]stencilPoint, N)
	copy(query, pts)
	tree := kdtree.New(pts, false)

	c.stencils = make([][]int, N)
	pm := utils.NewCPUPartitionMap(N)
	pm.Run(func(bn, kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			c.stencils[i] = nearest(tree, query[i], k)
		}
	})
	return nil
}

// nearest returns the k nearest neighbors of q other than q itself,
// closest first, ties broken by id.
func nearest(tree *kdtree.Tree, q stencilPoint, k int) (ids []int) {
	keep := kdtree.NewNKeeper(k + 1)
	tree.NearestSet(keep, q)
	found := make([]kdtree.ComparableDist, 0, len(keep.Heap))
	for _, cd := range keep.Heap {
		if cd.Comparable != nil {
			found = append(found, cd)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Dist != found[j].Dist {
			return found[i].Dist < found[j].Dist
		}
		return found[i].Comparable.(stencilPoint).id < found[j].Comparable.(stencilPoint).id
	})
	ids = make([]int, 0, k)
	for _, cd := range found {
		if id := cd.Comparable.(stencilPoint).id; id != q.id {
			ids = append(ids, id)
		}
	}
	// The query point was crowded out by coincident nodes: drop the farthest
	if len(ids) > k {
		ids = ids[:k]
	}
	return
}
