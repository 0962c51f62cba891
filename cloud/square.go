package cloud

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/notargets/rbfcloud/geometry2D"
	"github.com/notargets/rbfcloud/types"
	"github.com/notargets/rbfcloud/utils"
)

// The four facets of the unit square, in classification order: a corner
// belongs to the first facet of this list that contains it.
const (
	West  = "West"
	North = "North"
	East  = "East"
	South = "South"
)

var squareFacets = [4]string{West, North, East, South}

var squareNormals = map[string]r2.Vec{
	West:  {X: -1, Y: 0},
	North: {X: 0, Y: 1},
	East:  {X: 1, Y: 0},
	South: {X: 0, Y: -1},
}

// SquareBuilder synthesizes an Nx x Ny lattice on the unit square
type SquareBuilder struct {
	Nx, Ny      int
	Seed        *uint64 // Jitters nodes that are not dirichlet or neumann when set
	Facets      []FacetSpec
	SupportSize SupportSize
	Logger      *log.Logger
}

func (sb *SquareBuilder) validate() error {
	if sb.Nx < 2 || sb.Ny < 2 {
		return newError(ConfigurationError, "grid must be at least 2 x 2, have %d x %d", sb.Nx, sb.Ny)
	}
	if err := validateFacets(sb.Facets); err != nil {
		return err
	}
	if len(sb.Facets) != len(squareFacets) {
		return newError(ConfigurationError, "square needs exactly the facets %v, have %d facets",
			squareFacets, len(sb.Facets))
	}
	byName := facetTypes(sb.Facets)
	for _, name := range squareFacets {
		if _, ok := byName[name]; !ok {
			return newError(ConfigurationError, "square facet %q is missing", name)
		}
	}
	return sb.SupportSize.validate()
}

func (sb *SquareBuilder) Build() (c *Cloud, err error) {
	if err = sb.validate(); err != nil {
		return nil, err
	}
	logger := loggerOrDefault(sb.Logger)
	c = newCloud(sb.Nx * sb.Ny)
	c.grid = types.NewGridIndex(sb.Nx, sb.Ny)
	sb.defineNodeBoundaryTypes(c)
	sb.defineNodeCoordinates(c)
	logger.Debug("lattice built", "Nx", sb.Nx, "Ny", sb.Ny, "jitter", sb.Seed != nil)
	if err = c.finish(sb.SupportSize, squareOutwardNormals, logger); err != nil {
		return nil, err
	}
	return
}

// defineNodeBoundaryTypes classifies by lattice position. The order of the
// checks is what makes corner ownership exclusive: West, then North, then
// East, then South.
func (sb *SquareBuilder) defineNodeBoundaryTypes(c *Cloud) {
	var (
		byName = facetTypes(sb.Facets)
		fIndex = make(map[string]int, len(squareFacets))
	)
	c.facets = make([]Facet, len(squareFacets))
	for i, name := range squareFacets {
		c.facets[i] = Facet{Name: name, Type: byName[name], Rank: i}
		fIndex[name] = i
	}
	for id := 0; id < c.N(); id++ {
		var (
			k, l = c.grid.Position(id)
			name string
		)
		switch {
		case k == 0:
			name = West
		case l == sb.Ny-1:
			name = North
		case k == sb.Nx-1:
			name = East
		case l == 0:
			name = South
		default:
			c.nodes[id].Tag = utils.BCInternal
			continue
		}
		f := &c.facets[fIndex[name]]
		f.Nodes = append(f.Nodes, id)
		c.nodes[id].Tag = f.Type
	}
}

func (sb *SquareBuilder) defineNodeCoordinates(c *Cloud) {
	var (
		x     = geometry2D.Linspace(0, 1, sb.Nx)
		y     = geometry2D.Linspace(0, 1, sb.Ny)
		noise distuv.Uniform
	)
	if sb.Seed != nil {
		// Half the spacing keeps jittered nodes from crossing each other
		delta := geometry2D.MinSpacing(x, y) / 2
		noise = distuv.Uniform{Min: -delta, Max: delta, Src: rand.NewPCG(*sb.Seed, *sb.Seed)}
	}
	for id := 0; id < c.N(); id++ {
		k, l := c.grid.Position(id)
		c.nodes[id].Coord = r2.Vec{X: x[k], Y: y[l]}
		tag := c.nodes[id].Tag
		if sb.Seed != nil && tag != utils.BCDirichlet && tag != utils.BCNeumann {
			c.nodes[id].Coord.X += noise.Rand()
			c.nodes[id].Coord.Y += noise.Rand()
		}
	}
}

// squareOutwardNormals gives every flux node the axis normal of the facet
// that owns it; corners are not averaged.
func squareOutwardNormals(c *Cloud) error {
	for _, f := range c.facets {
		if !f.Type.IsFlux() {
			continue
		}
		n := squareNormals[f.Name]
		for _, id := range f.Nodes {
			c.normals[id], c.hasNormal[id] = n, true
		}
	}
	return nil
}
