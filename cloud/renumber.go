package cloud

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/rbfcloud/utils"
)

// BlockPartition builds the old -> new id map that stable-partitions the
// nodes into internal, dirichlet, neumann then robin blocks. For tags that
// are already in block order the map is the identity.
func BlockPartition(tags []utils.BCType) (newID []int) {
	var (
		buckets [utils.NumBCTypes][]int
		next    int
	)
	for id, tag := range tags {
		buckets[tag] = append(buckets[tag], id)
	}
	newID = make([]int, len(tags))
	for _, bucket := range buckets {
		for _, id := range bucket {
			newID[id] = next
			next++
		}
	}
	return
}

// renumber relabels every node indexed table through newID: coordinates,
// tags, facet members, stencil keys and neighbor ids, normals and the grid
// lookup.
func (c *Cloud) renumber(newID []int) {
	var (
		N         = c.N()
		nodes     = make([]Node, N)
		normals   = c.normals
		hasNormal = c.hasNormal
	)
	for old, nd := range c.nodes {
		nodes[newID[old]] = nd
	}
	c.nodes = nodes
	c.normals, c.hasNormal = make([]r2.Vec, N), make([]bool, N)
	for old := range normals {
		c.normals[newID[old]], c.hasNormal[newID[old]] = normals[old], hasNormal[old]
	}
	if c.stencils != nil {
		stencils := make([][]int, N)
		for old, s := range c.stencils {
			ns := make([]int, len(s))
			for j, nb := range s {
				ns[j] = newID[nb]
			}
			stencils[newID[old]] = ns
		}
		c.stencils = stencils
	}
	for fi := range c.facets {
		for j, id := range c.facets[fi].Nodes {
			c.facets[fi].Nodes[j] = newID[id]
		}
	}
	if c.grid != nil {
		c.grid.Remap(newID)
	}
	c.renumbering = newID
}
