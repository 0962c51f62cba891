package cloud

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/rbfcloud/geometry2D"
	"github.com/notargets/rbfcloud/types"
	"github.com/notargets/rbfcloud/utils"
)

// Node is one record of the node arena, indexed by node id
type Node struct {
	Coord r2.Vec
	Tag   utils.BCType
}

// Facet is a named boundary region. Rank is its precedence: when a node
// touches several facets it belongs to the one with the lowest rank.
type Facet struct {
	Name  string
	Type  utils.BCType
	Rank  int
	Nodes []int
}

// FacetSpec declares a facet and its boundary type. A list of FacetSpec is
// ordered; the position in the list is the precedence rank.
type FacetSpec struct {
	Name string       `json:"Name"`
	Type utils.BCType `json:"Type"`
}

// Counts are the node totals per boundary type
type Counts struct {
	N, Ni, Nd, Nn, Nr int
}

// Of returns the count of nodes tagged bc
func (cn Counts) Of(bc utils.BCType) int {
	switch bc {
	case utils.BCInternal:
		return cn.Ni
	case utils.BCDirichlet:
		return cn.Nd
	case utils.BCNeumann:
		return cn.Nn
	case utils.BCRobin:
		return cn.Nr
	}
	return 0
}

// Cloud is the discretization cloud handed to the meshfree solver: nodes
// numbered in contiguous boundary blocks (internal, dirichlet, neumann,
// robin), their facets, support stencils and outward normals. A Cloud
// returned by a Builder is never modified again; all accessors return
// copies.
type Cloud struct {
	dim         int
	nodes       []Node
	facets      []Facet // In precedence order
	stencils    [][]int
	normals     []r2.Vec
	hasNormal   []bool
	grid        *types.GridIndex // Only for structured clouds
	renumbering []int            // Old id -> new id
	counts      Counts
	blocks      [utils.NumBCTypes + 1]int
	supportSize int
	coords      *mat.Dense // N x Dim, by final node id
}

func newCloud(N int) (c *Cloud) {
	c = &Cloud{
		dim:       2,
		nodes:     make([]Node, N),
		normals:   make([]r2.Vec, N),
		hasNormal: make([]bool, N),
	}
	return
}

func (c *Cloud) N() int { return len(c.nodes) }

func (c *Cloud) Counts() Counts { return c.counts }

func (c *Cloud) SupportSize() int { return c.supportSize }

func (c *Cloud) Coord(i int) r2.Vec { return c.nodes[i].Coord }

func (c *Cloud) Tag(i int) utils.BCType { return c.nodes[i].Tag }

// Tags returns the boundary tag of every node, by node id
func (c *Cloud) Tags() (tags []utils.BCType) {
	tags = make([]utils.BCType, len(c.nodes))
	for i, nd := range c.nodes {
		tags[i] = nd.Tag
	}
	return
}

// Stencil returns the support of node i, nearest neighbor first
func (c *Cloud) Stencil(i int) []int {
	return append([]int(nil), c.stencils[i]...)
}

// Normal returns the outward unit normal of node i; ok is false for nodes
// that are not neumann or robin.
func (c *Cloud) Normal(i int) (n r2.Vec, ok bool) {
	if !c.hasNormal[i] {
		return
	}
	return c.normals[i], true
}

// Facets returns copies of all facets in precedence order
func (c *Cloud) Facets() (facets []Facet) {
	facets = make([]Facet, len(c.facets))
	for i, f := range c.facets {
		facets[i] = f
		facets[i].Nodes = append([]int(nil), f.Nodes...)
	}
	return
}

// Facet looks up a facet by name
func (c *Cloud) Facet(name string) (f Facet, ok bool) {
	for _, ff := range c.facets {
		if ff.Name == name {
			f = ff
			f.Nodes = append([]int(nil), ff.Nodes...)
			return f, true
		}
	}
	return
}

// Dim is the problem dimension, always 2
func (c *Cloud) Dim() int { return c.dim }

// RenumberingMap maps construction ids to final ids
func (c *Cloud) RenumberingMap() []int {
	return append([]int(nil), c.renumbering...)
}

// Block returns the id range [lo, hi) holding the nodes tagged bc
func (c *Cloud) Block(bc utils.BCType) (lo, hi int) {
	if !bc.Valid() {
		return 0, 0
	}
	return c.blocks[bc], c.blocks[bc+1]
}

// GridIndex returns the lattice lookup of a structured cloud, nil otherwise
func (c *Cloud) GridIndex() *types.GridIndex {
	if c.grid == nil {
		return nil
	}
	return c.grid.Clone()
}

// Coordinates is the N x 2 matrix of node coordinates ordered by node id
func (c *Cloud) Coordinates() *mat.Dense {
	return mat.DenseCopyOf(c.coords)
}

func (c *Cloud) BoundingBox() geometry2D.BoundingBox {
	pts := make([]r2.Vec, len(c.nodes))
	for i, nd := range c.nodes {
		pts[i] = nd.Coord
	}
	return geometry2D.NewBoundingBox(pts)
}

// tally recomputes the counts from the node tags
func (c *Cloud) tally() {
	var cn = Counts{N: len(c.nodes)}
	for _, nd := range c.nodes {
		switch nd.Tag {
		case utils.BCInternal:
			cn.Ni++
		case utils.BCDirichlet:
			cn.Nd++
		case utils.BCNeumann:
			cn.Nn++
		case utils.BCRobin:
			cn.Nr++
		}
	}
	c.counts = cn
}

// freeze materializes the read-only views once construction is complete
func (c *Cloud) freeze() {
	var (
		N    = len(c.nodes)
		data = make([]float64, N*c.dim)
	)
	for i, nd := range c.nodes {
		data[i*c.dim], data[i*c.dim+1] = nd.Coord.X, nd.Coord.Y
	}
	if N > 0 {
		c.coords = mat.NewDense(N, c.dim, data)
	}
	c.blocks[0] = 0
	for j, bc := range utils.BCTypes {
		c.blocks[j+1] = c.blocks[j] + c.counts.Of(bc)
	}
}

// clone is a deep copy, used to rerun construction stages in tests
func (c *Cloud) clone() (cc *Cloud) {
	cc = &Cloud{
		dim:         c.dim,
		nodes:       append([]Node(nil), c.nodes...),
		facets:      c.Facets(),
		normals:     append([]r2.Vec(nil), c.normals...),
		hasNormal:   append([]bool(nil), c.hasNormal...),
		renumbering: append([]int(nil), c.renumbering...),
		counts:      c.counts,
		blocks:      c.blocks,
		supportSize: c.supportSize,
	}
	if c.stencils != nil {
		cc.stencils = make([][]int, len(c.stencils))
		for i, s := range c.stencils {
			cc.stencils[i] = append([]int(nil), s...)
		}
	}
	if c.grid != nil {
		cc.grid = c.grid.Clone()
	}
	if c.coords != nil {
		cc.coords = mat.DenseCopyOf(c.coords)
	}
	return
}
