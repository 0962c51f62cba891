package cloud

import (
	"io"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/rbfcloud/geometry2D"
	"github.com/notargets/rbfcloud/readfiles"
	"github.com/notargets/rbfcloud/utils"
)

// GmshBuilder reads an unstructured cloud from a Gmsh 4.0 ASCII mesh.
// Curves are assigned to facets through their physical group names; the
// order of Facets is the precedence used to give each corner node to
// exactly one facet.
type GmshBuilder struct {
	FileName    string
	Reader      io.Reader // Read instead of FileName when set
	Facets      []FacetSpec
	SupportSize SupportSize
	Logger      *log.Logger
}

func (gb *GmshBuilder) validate() error {
	if gb.Reader == nil && gb.FileName == "" {
		return newError(ConfigurationError, "no mesh file given")
	}
	if err := validateFacets(gb.Facets); err != nil {
		return err
	}
	return gb.SupportSize.validate()
}

func (gb *GmshBuilder) Build() (c *Cloud, err error) {
	var (
		gm *readfiles.GmshMesh
	)
	if err = gb.validate(); err != nil {
		return nil, err
	}
	logger := loggerOrDefault(gb.Logger)
	if gb.Reader != nil {
		gm, err = readfiles.ReadGmsh4(gb.Reader)
	} else {
		gm, err = readfiles.ReadGmsh4File(gb.FileName)
	}
	if err != nil {
		return nil, wrapError(ParseError, err, "reading mesh %q", gb.FileName)
	}
	logger.Debug("mesh parsed", "file", gb.FileName, "nodes", gm.NumNodes, "elements", gm.NumElements)
	if c, err = newCloudFromGmsh(gm, gb.Facets); err != nil {
		return nil, err
	}
	normals := func(c *Cloud) error { return meshOutwardNormals(c, logger) }
	if err = c.finish(gb.SupportSize, normals, logger); err != nil {
		return nil, err
	}
	return
}

type gmshClassifier struct {
	gm     *readfiles.GmshMesh
	c      *Cloud
	fIndex map[string]int
}

// newCloudFromGmsh tags nodes from the dimension of the entity holding
// them: surfaces are internal, curves take their facet's type, points are
// corners resolved afterwards from the line elements.
func newCloudFromGmsh(gm *readfiles.GmshMesh, specs []FacetSpec) (c *Cloud, err error) {
	var (
		N        = gm.NumNodes
		assigned = make([]bool, N)
		isCorner = make([]bool, N)
		corners  []int
	)
	if N == 0 {
		return nil, newError(ParseError, "mesh has no nodes")
	}
	c = newCloud(N)
	gc := &gmshClassifier{gm: gm, c: c, fIndex: make(map[string]int, len(specs))}
	c.facets = make([]Facet, len(specs))
	for i, fs := range specs {
		c.facets[i] = Facet{Name: fs.Name, Type: fs.Type, Rank: i}
		gc.fIndex[fs.Name] = i
	}
	for _, nb := range gm.NodeBlocks {
		var fi int
		if nb.EntityDim == 1 {
			if fi, err = gc.curveFacet(nb.EntityTag); err != nil {
				return nil, err
			}
		}
		for _, nd := range nb.Nodes {
			id := nd.Tag - 1
			if id < 0 || id >= N {
				return nil, newError(ParseError, "node tag %d outside 1..%d", nd.Tag, N)
			}
			if assigned[id] {
				return nil, newError(ParseError, "node tag %d appears twice", nd.Tag)
			}
			assigned[id] = true
			c.nodes[id].Coord = r2.Vec{X: nd.X[0], Y: nd.X[1]}
			switch nb.EntityDim {
			case 0:
				isCorner[id] = true
				corners = append(corners, id)
			case 1:
				c.nodes[id].Tag = c.facets[fi].Type
				c.facets[fi].Nodes = append(c.facets[fi].Nodes, id)
			case 2:
				c.nodes[id].Tag = utils.BCInternal
			default:
				return nil, newError(ParseError, "node tag %d lies on a %d-dimensional entity, only 2-D meshes are supported",
					nd.Tag, nb.EntityDim)
			}
		}
	}
	for id, ok := range assigned {
		if !ok {
			return nil, newError(ParseError, "node tag %d is never defined", id+1)
		}
	}
	if err = gc.resolveCorners(corners, isCorner); err != nil {
		return nil, err
	}
	return
}

// curveFacet maps a curve entity to the index of its facet
func (gc *gmshClassifier) curveFacet(tag int) (fi int, err error) {
	var (
		ent  *readfiles.GmshEntity
		name string
		ok   bool
	)
	if ent, ok = gc.gm.Entity(1, tag); !ok {
		return 0, newError(ParseError, "curve entity %d is not declared", tag)
	}
	if len(ent.PhysicalTags) == 0 {
		return 0, newError(ParseError, "curve entity %d belongs to no physical group", tag)
	}
	if name, ok = gc.gm.PhysicalName(1, ent.PhysicalTags[0]); !ok {
		return 0, newError(ParseError, "curve entity %d references undeclared physical group %d",
			tag, ent.PhysicalTags[0])
	}
	if fi, ok = gc.fIndex[name]; !ok {
		return 0, newError(ParseError, "facet %q of curve entity %d has no boundary type", name, tag)
	}
	return
}

// resolveCorners gives each corner to the lowest ranked facet among the
// curves having a line element that joins the corner to another node.
func (gc *gmshClassifier) resolveCorners(corners []int, isCorner []bool) (err error) {
	var (
		c    = gc.c
		N    = c.N()
		best = make([]int, N)
	)
	for i := range best {
		best[i] = -1
	}
	for _, eb := range gc.gm.ElementBlocks {
		if eb.EntityDim != 1 {
			continue
		}
		var fi int
		if fi, err = gc.curveFacet(eb.EntityTag); err != nil {
			return
		}
		for _, el := range eb.Elements {
			for _, tag := range el.Nodes {
				if tag < 1 || tag > N {
					return newError(ParseError, "element %d references node tag %d outside 1..%d", el.Tag, tag, N)
				}
			}
			for _, tag := range el.Nodes {
				id := tag - 1
				if !isCorner[id] || !hasOtherNode(el.Nodes, tag) {
					continue
				}
				if best[id] == -1 || c.facets[fi].Rank < c.facets[best[id]].Rank {
					best[id] = fi
				}
			}
		}
	}
	for _, id := range corners {
		fi := best[id]
		if fi == -1 {
			return newError(ParseError, "corner node %d is not an endpoint of any boundary curve", id+1)
		}
		c.nodes[id].Tag = c.facets[fi].Type
		c.facets[fi].Nodes = append(c.facets[fi].Nodes, id)
	}
	return
}

func hasOtherNode(nodes []int, tag int) bool {
	for _, t := range nodes {
		if t != tag {
			return true
		}
	}
	return false
}

// meshOutwardNormals gives every node of a neumann or robin facet the
// facet's single normal, from the tangent between the facet's first two
// nodes, oriented away from a reference point inside the domain.
func meshOutwardNormals(c *Cloud, logger *log.Logger) (err error) {
	var (
		ref   r2.Vec
		found bool
	)
	for _, nd := range c.nodes {
		if nd.Tag == utils.BCInternal {
			ref, found = nd.Coord, true
			break
		}
	}
	if !found {
		ref = c.BoundingBox().Centroid()
		logger.Warn("no internal node, orienting normals from the bounding box centroid", "centroid", ref)
	}
	for _, f := range c.facets {
		if !f.Type.IsFlux() {
			continue
		}
		switch len(f.Nodes) {
		case 0:
			logger.Debug("flux facet owns no nodes", "facet", f.Name)
			continue
		case 1:
			return newError(GeometryError, "facet %q has %d nodes, need at least 2 to compute a normal",
				f.Name, len(f.Nodes))
		}
		var (
			p0      = c.nodes[f.Nodes[0]].Coord
			tangent = r2.Sub(c.nodes[f.Nodes[1]].Coord, p0)
			n       r2.Vec
		)
		if n, err = geometry2D.OutwardNormal(tangent, r2.Sub(ref, p0)); err != nil {
			return wrapError(GeometryError, err, "facet %q", f.Name)
		}
		for _, id := range f.Nodes {
			c.normals[id], c.hasNormal[id] = n, true
		}
	}
	return
}
