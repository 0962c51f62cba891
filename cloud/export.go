package cloud

import (
	"io"

	"github.com/ghodss/yaml"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/rbfcloud/utils"
)

// StencilMatrix is the N x N connectivity of the support stencils: entry
// (i,j) is 1 when j is in the stencil of node i.
func (c *Cloud) StencilMatrix() *sparse.CSR {
	N := c.N()
	dok := sparse.NewDOK(N, N)
	for i, s := range c.stencils {
		for _, j := range s {
			dok.Set(i, j, 1)
		}
	}
	return dok.ToCSR()
}

// AverageSpacing is the mean distance over all distinct pairs of nodes
func (c *Cloud) AverageSpacing() float64 {
	N := c.N()
	if N < 2 {
		return 0
	}
	dists := make([]float64, 0, N*(N-1)/2)
	for i := 0; i < N; i++ {
		for j := i + 1; j < N; j++ {
			dists = append(dists, r2.Norm(r2.Sub(c.nodes[i].Coord, c.nodes[j].Coord)))
		}
	}
	return stat.Mean(dists, nil)
}

type facetDump struct {
	Name  string       `json:"Name"`
	Type  utils.BCType `json:"Type"`
	Rank  int          `json:"Rank"`
	Nodes []int        `json:"Nodes"`
}

type cloudDump struct {
	N              int                `json:"N"`
	Ni             int                `json:"Ni"`
	Nd             int                `json:"Nd"`
	Nn             int                `json:"Nn"`
	Nr             int                `json:"Nr"`
	Dim            int                `json:"Dim"`
	SupportSize    int                `json:"SupportSize"`
	Nodes          [][2]float64       `json:"Nodes"`
	Tags           []utils.BCType     `json:"Tags"`
	Facets         []facetDump        `json:"Facets"`
	Stencils       [][]int            `json:"Stencils"`
	Normals        map[int][2]float64 `json:"Normals"`
	RenumberingMap []int              `json:"RenumberingMap"`
}

// WriteYAML writes the cloud, ordered by final node id
func (c *Cloud) WriteYAML(w io.Writer) (err error) {
	var (
		cn = c.counts
		d  = cloudDump{
			N: cn.N, Ni: cn.Ni, Nd: cn.Nd, Nn: cn.Nn, Nr: cn.Nr,
			Dim:            c.dim,
			SupportSize:    c.supportSize,
			Nodes:          make([][2]float64, c.N()),
			Tags:           c.Tags(),
			Stencils:       c.stencils,
			Normals:        make(map[int][2]float64),
			RenumberingMap: c.renumbering,
		}
		b []byte
	)
	for i, nd := range c.nodes {
		d.Nodes[i] = [2]float64{nd.Coord.X, nd.Coord.Y}
		if c.hasNormal[i] {
			d.Normals[i] = [2]float64{c.normals[i].X, c.normals[i].Y}
		}
	}
	for _, f := range c.facets {
		d.Facets = append(d.Facets, facetDump{Name: f.Name, Type: f.Type, Rank: f.Rank, Nodes: f.Nodes})
	}
	if b, err = yaml.Marshal(d); err != nil {
		return
	}
	_, err = w.Write(b)
	return
}
