package utils

import (
	"fmt"
	"strings"
)

// BCType is the boundary role of a cloud node. The ordering of the
// constants is the block order used when nodes are renumbered.
type BCType uint8

const (
	BCInternal  BCType = iota // Interior node, not on any boundary
	BCDirichlet               // Fixed value
	BCNeumann                 // Fixed gradient/flux
	BCRobin                   // Mixed/Robin condition
)

// NumBCTypes is the number of boundary blocks in a renumbered cloud
const NumBCTypes = 4

// BCTypes lists every boundary type in block order
var BCTypes = [NumBCTypes]BCType{BCInternal, BCDirichlet, BCNeumann, BCRobin}

// String returns the string representation of a BCType
func (bc BCType) String() string {
	switch bc {
	case BCInternal:
		return "internal"
	case BCDirichlet:
		return "dirichlet"
	case BCNeumann:
		return "neumann"
	case BCRobin:
		return "robin"
	}
	return "unknown"
}

// IsFlux is true for boundary types that need an outward normal
func (bc BCType) IsFlux() bool {
	return bc == BCNeumann || bc == BCRobin
}

// Valid reports whether bc is one of the four known types
func (bc BCType) Valid() bool {
	return bc < NumBCTypes
}

// BCNameMap provides a mapping from boundary names to BCType
// Keys are lowercase for case-insensitive matching
var BCNameMap = map[string]BCType{
	"internal":  BCInternal,
	"interior":  BCInternal,
	"i":         BCInternal,
	"dirichlet": BCDirichlet,
	"d":         BCDirichlet,
	"neumann":   BCNeumann,
	"n":         BCNeumann,
	"robin":     BCRobin,
	"r":         BCRobin,
}

// ParseBCName converts a boundary type name to BCType
// The matching is case-insensitive and trims whitespace
func ParseBCName(name string) (bc BCType, err error) {
	var ok bool
	lowerName := strings.ToLower(strings.TrimSpace(name))
	if bc, ok = BCNameMap[lowerName]; !ok {
		err = fmt.Errorf("unknown boundary type %q", name)
	}
	return
}

func (bc BCType) MarshalText() ([]byte, error) {
	if !bc.Valid() {
		return nil, fmt.Errorf("invalid boundary type %d", uint8(bc))
	}
	return []byte(bc.String()), nil
}

func (bc *BCType) UnmarshalText(text []byte) (err error) {
	*bc, err = ParseBCName(string(text))
	return
}
