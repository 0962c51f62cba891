package InputParameters

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ghodss/yaml"

	"github.com/notargets/rbfcloud/cloud"
)

// Construction methods
const (
	MethodSquare = "square"
	MethodGmsh   = "gmsh"
)

// Parameters obtained from the YAML input file
type CloudParameters struct {
	Title       string            `yaml:"Title"`
	Method      string            `yaml:"Method"` // square or gmsh
	Nx          int               `yaml:"Nx"`
	Ny          int               `yaml:"Ny"`
	Seed        *uint64           `yaml:"Seed"` // Jitter the lattice when present
	MeshFile    string            `yaml:"MeshFile"`
	SupportSize cloud.SupportSize `yaml:"SupportSize"` // Integer or "max", defaults to max
	Facets      []cloud.FacetSpec `yaml:"Facets"`      // In precedence order
}

func (cp *CloudParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, cp); err != nil {
		return
	}
	if cp.SupportSize == 0 {
		cp.SupportSize = cloud.SupportMax
	}
	cp.Method = strings.ToLower(cp.Method)
	return
}

// Builder selects the construction strategy named by Method
func (cp *CloudParameters) Builder(logger *log.Logger) (b cloud.Builder, err error) {
	ss := cp.SupportSize
	if ss == 0 {
		ss = cloud.SupportMax
	}
	switch strings.ToLower(cp.Method) {
	case MethodSquare:
		b = &cloud.SquareBuilder{
			Nx: cp.Nx, Ny: cp.Ny, Seed: cp.Seed,
			Facets: cp.Facets, SupportSize: ss, Logger: logger,
		}
	case MethodGmsh:
		b = &cloud.GmshBuilder{
			FileName: cp.MeshFile,
			Facets:   cp.Facets, SupportSize: ss, Logger: logger,
		}
	default:
		err = &cloud.Error{Kind: cloud.ConfigurationError,
			Message: fmt.Sprintf("unknown method %q, need %s or %s", cp.Method, MethodSquare, MethodGmsh)}
	}
	return
}

func (cp *CloudParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", cp.Title)
	fmt.Printf("[%s]\t\t\t= Method\n", cp.Method)
	switch cp.Method {
	case MethodSquare:
		fmt.Printf("[%d x %d]\t\t= Lattice\n", cp.Nx, cp.Ny)
		if cp.Seed != nil {
			fmt.Printf("[%d]\t\t\t= Jitter Seed\n", *cp.Seed)
		}
	case MethodGmsh:
		fmt.Printf("[%s]\t= Mesh File\n", cp.MeshFile)
	}
	fmt.Printf("[%s]\t\t\t= Support Size\n", cp.SupportSize)
	for i, fs := range cp.Facets {
		fmt.Printf("Facets[%d] = %s (%s)\n", i, fs.Name, fs.Type)
	}
}
