package cloud

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/notargets/rbfcloud/utils"
)

// Builder is a strategy producing a complete Cloud. Both strategies share
// the same finishing stages: support stencils, outward normals, then
// renumbering into boundary blocks. A failing stage returns no Cloud.
type Builder interface {
	Build() (*Cloud, error)
}

// New builds a Cloud with b
func New(b Builder) (*Cloud, error) {
	return b.Build()
}

// SupportSize is the number of neighbors in each node's stencil, or
// SupportMax for every other node of the cloud.
type SupportSize int

const SupportMax SupportSize = -1

func ParseSupportSize(s string) (ss SupportSize, err error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "max") {
		return SupportMax, nil
	}
	var n int
	if n, err = strconv.Atoi(s); err != nil {
		return 0, newError(ConfigurationError, "support size %q is neither a positive integer nor \"max\"", s)
	}
	ss = SupportSize(n)
	err = ss.validate()
	return
}

func (ss SupportSize) String() string {
	if ss == SupportMax {
		return "max"
	}
	return strconv.Itoa(int(ss))
}

func (ss SupportSize) MarshalJSON() ([]byte, error) {
	if ss == SupportMax {
		return []byte(`"max"`), nil
	}
	return []byte(strconv.Itoa(int(ss))), nil
}

// UnmarshalJSON accepts a number or the string "max"
func (ss *SupportSize) UnmarshalJSON(b []byte) (err error) {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err = json.Unmarshal(b, &s); err != nil {
			return
		}
	} else {
		s = string(b)
	}
	*ss, err = ParseSupportSize(s)
	return
}

func (ss SupportSize) validate() error {
	if ss == SupportMax || ss > 0 {
		return nil
	}
	return newError(ConfigurationError, "support size must be positive or \"max\", have %d", int(ss))
}

// Resolve turns the sentinel into N-1 and checks 0 < size < N
func (ss SupportSize) Resolve(N int) (size int, err error) {
	if err = ss.validate(); err != nil {
		return
	}
	size = int(ss)
	if ss == SupportMax {
		size = N - 1
	}
	if size <= 0 || size >= N {
		return 0, newError(ConfigurationError,
			"support size %d must be strictly between 0 and the number of nodes %d", size, N)
	}
	return
}

// validateFacets checks names are unique and non-empty and types are known
func validateFacets(specs []FacetSpec) error {
	if len(specs) == 0 {
		return newError(ConfigurationError, "no facets declared")
	}
	seen := make(map[string]bool, len(specs))
	for _, fs := range specs {
		if fs.Name == "" {
			return newError(ConfigurationError, "facet with empty name")
		}
		if seen[fs.Name] {
			return newError(ConfigurationError, "facet %q declared twice", fs.Name)
		}
		if !fs.Type.Valid() {
			return newError(ConfigurationError, "facet %q has invalid boundary type %d", fs.Name, uint8(fs.Type))
		}
		seen[fs.Name] = true
	}
	return nil
}

func loggerOrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}

// finish runs the stages shared by every builder, in order, on a cloud
// whose nodes, tags and facets are populated.
func (c *Cloud) finish(ss SupportSize, normals func(*Cloud) error, logger *log.Logger) (err error) {
	c.tally()
	if c.counts.Ni+c.counts.Nd+c.counts.Nn+c.counts.Nr != c.counts.N {
		return newError(GeometryError, "node tags do not cover all %d nodes", c.counts.N)
	}
	if c.supportSize, err = ss.Resolve(c.N()); err != nil {
		return
	}
	if err = c.defineLocalSupports(); err != nil {
		return
	}
	logger.Debug("support stencils defined", "size", c.supportSize)
	if err = normals(c); err != nil {
		return
	}
	c.renumber(BlockPartition(c.Tags()))
	c.freeze()
	logger.Info("cloud ready", "N", c.counts.N, "Ni", c.counts.Ni, "Nd", c.counts.Nd,
		"Nn", c.counts.Nn, "Nr", c.counts.Nr)
	return
}

func (cn Counts) String() string {
	return fmt.Sprintf("N=%d Ni=%d Nd=%d Nn=%d Nr=%d", cn.N, cn.Ni, cn.Nd, cn.Nn, cn.Nr)
}

// facetTypes indexes the specs by name
func facetTypes(specs []FacetSpec) (byName map[string]utils.BCType) {
	byName = make(map[string]utils.BCType, len(specs))
	for _, fs := range specs {
		byName[fs.Name] = fs.Type
	}
	return
}
