package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/rbfcloud/utils"
)

// Gmsh ASCII format 4.0 (http://gmsh.info/doc/texinfo/gmsh.html#MSH-file-format-version-4)
// Only the 4.0 layout is understood, the 4.1 node and entity blocks differ.

// GmshPhysicalName is one entry of the $PhysicalNames section
type GmshPhysicalName struct {
	Dim, Tag int
	Name     string
}

// GmshEntity is a geometric entity (point, curve, surface, volume)
type GmshEntity struct {
	Tag, Dim     int
	Min, Max     [3]float64 // Bounding box
	PhysicalTags []int
	BoundingTags []int // Bounding entities of dimension Dim-1, signed by orientation
}

type GmshNode struct {
	Tag int
	X   [3]float64
}

type GmshNodeBlock struct {
	EntityTag, EntityDim int
	Nodes                []GmshNode
}

type GmshElement struct {
	Tag   int
	Nodes []int // Node tags
}

type GmshElementBlock struct {
	EntityTag, EntityDim, ElementType int
	Elements                          []GmshElement
}

// GmshMesh holds the raw tables of a Gmsh 4.0 file, tags as written in the file
type GmshMesh struct {
	Version       string
	PhysicalNames []GmshPhysicalName
	Entities      [4]map[int]*GmshEntity // dim -> tag -> entity
	NumNodes      int
	NodeBlocks    []GmshNodeBlock
	NumElements   int
	ElementBlocks []GmshElementBlock
}

func NewGmshMesh() (gm *GmshMesh) {
	gm = &GmshMesh{}
	for dim := range gm.Entities {
		gm.Entities[dim] = make(map[int]*GmshEntity)
	}
	return
}

// Entity returns the entity of dimension dim with the given tag
func (gm *GmshMesh) Entity(dim, tag int) (e *GmshEntity, ok bool) {
	if dim < 0 || dim > 3 {
		return
	}
	e, ok = gm.Entities[dim][tag]
	return
}

// PhysicalName looks up the name of physical group tag of dimension dim
func (gm *GmshMesh) PhysicalName(dim, tag int) (name string, ok bool) {
	for _, pn := range gm.PhysicalNames {
		if pn.Dim == dim && pn.Tag == tag {
			return pn.Name, true
		}
	}
	return
}

// ParseError reports a malformed or incomplete mesh file
type ParseError struct {
	Line    int // 1-based line number, 0 when the error is at end of input
	Section string
	Msg     string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("gmsh: $%s: %s", e.Section, e.Msg)
	}
	return fmt.Sprintf("gmsh: line %d ($%s): %s", e.Line, e.Section, e.Msg)
}

type gmshState uint8

const (
	statePhysicalNames gmshState = iota
	stateEntities
	stateNodes
	stateElements
	stateDone
)

func (s gmshState) String() string {
	return [...]string{"PhysicalNames", "Entities", "Nodes", "Elements", "Done"}[s]
}

// ReadGmsh4File reads a Gmsh 4.0 ASCII file
func ReadGmsh4File(filename string) (gm *GmshMesh, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(filename); err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadGmsh4(file)
}

// ReadGmsh4 scans the four required sections strictly in order:
// $PhysicalNames, $Entities, $Nodes, $Elements. Unknown sections and
// stray lines between them are skipped. Reaching the end of input while a
// section is still expected is an error naming that section; there is no
// backtracking.
func ReadGmsh4(r io.Reader) (gm *GmshMesh, err error) {
	var (
		gs    = newGmshScanner(r)
		state = statePhysicalNames
	)
	gm = NewGmshMesh()
	for state != stateDone {
		line, ok := gs.next()
		if !ok {
			if err = gs.sc.Err(); err != nil {
				return nil, fmt.Errorf("gmsh: reading line %d: %w", gs.line, err)
			}
			return nil, &ParseError{Section: state.String(), Msg: "section not found before end of input"}
		}
		switch {
		case line == "$MeshFormat" && state == statePhysicalNames && gm.Version == "":
			err = gs.readMeshFormat(gm)
		case line == "$"+state.String():
			switch state {
			case statePhysicalNames:
				err = gs.readPhysicalNames(gm)
			case stateEntities:
				err = gs.readEntities(gm)
			case stateNodes:
				err = gs.readNodes(gm)
			case stateElements:
				err = gs.readElements(gm)
			}
			state++
		}
		if err != nil {
			return nil, err
		}
	}
	return
}

type gmshScanner struct {
	sc      *bufio.Scanner
	line    int
	section string
}

func newGmshScanner(r io.Reader) (gs *gmshScanner) {
	gs = &gmshScanner{sc: bufio.NewScanner(r)}
	// Increase scanner buffer for long element lines
	const maxScanTokenSize = 1024 * 1024
	gs.sc.Buffer(make([]byte, 64*1024), maxScanTokenSize)
	return
}

func (gs *gmshScanner) next() (line string, ok bool) {
	for gs.sc.Scan() {
		gs.line++
		if line = strings.TrimSpace(gs.sc.Text()); line != "" {
			return line, true
		}
	}
	return "", false
}

func (gs *gmshScanner) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: gs.line, Section: gs.section, Msg: fmt.Sprintf(format, args...)}
}

// fields returns the next line split on white space, requiring at least minFields
func (gs *gmshScanner) fields(minFields int) (f []string, err error) {
	line, ok := gs.next()
	if !ok {
		return nil, &ParseError{Section: gs.section, Msg: "unexpected end of input"}
	}
	if f = strings.Fields(line); len(f) < minFields {
		return nil, gs.errorf("expected at least %d fields, found %d in %q", minFields, len(f), line)
	}
	return
}

func (gs *gmshScanner) atoi(field string) (int, error) {
	i, err := strconv.Atoi(field)
	if err != nil {
		return 0, gs.errorf("malformed integer %q", field)
	}
	return i, nil
}

func (gs *gmshScanner) atof(field string) (float64, error) {
	f, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, gs.errorf("malformed number %q", field)
	}
	return f, nil
}

func (gs *gmshScanner) ints(fields []string) (vals []int, err error) {
	vals = make([]int, len(fields))
	for i, f := range fields {
		if vals[i], err = gs.atoi(f); err != nil {
			return nil, err
		}
	}
	return
}

func (gs *gmshScanner) count(field, what string) (n int, err error) {
	if n, err = gs.atoi(field); err != nil {
		return
	}
	if n < 0 {
		err = gs.errorf("negative %s count %d", what, n)
	}
	return
}

func (gs *gmshScanner) expectEnd() error {
	line, ok := gs.next()
	if !ok {
		return &ParseError{Section: gs.section, Msg: "missing $End" + gs.section}
	}
	if line != "$End"+gs.section {
		return gs.errorf("expected $End%s, found %q", gs.section, line)
	}
	return nil
}

func (gs *gmshScanner) readMeshFormat(gm *GmshMesh) (err error) {
	var f []string
	gs.section = "MeshFormat"
	if f, err = gs.fields(3); err != nil {
		return
	}
	gm.Version = f[0]
	if !(gm.Version == "4" || strings.HasPrefix(gm.Version, "4.0")) {
		return gs.errorf("unsupported format version %s, need 4.0", gm.Version)
	}
	if f[1] != "0" {
		return gs.errorf("binary files are not supported")
	}
	return gs.expectEnd()
}

func (gs *gmshScanner) readPhysicalNames(gm *GmshMesh) (err error) {
	var (
		f []string
		n int
	)
	gs.section = statePhysicalNames.String()
	if f, err = gs.fields(1); err != nil {
		return
	}
	if n, err = gs.count(f[0], "physical name"); err != nil {
		return
	}
	// Grown as entries are read, the header count is untrusted
	for i := 0; i < n; i++ {
		var (
			pn   GmshPhysicalName
			line string
			ok   bool
		)
		if line, ok = gs.next(); !ok {
			return &ParseError{Section: gs.section, Msg: "unexpected end of input"}
		}
		// dim tag "name with spaces"
		q0, q1 := strings.IndexByte(line, '"'), strings.LastIndexByte(line, '"')
		if q0 < 0 || q1 <= q0 {
			return gs.errorf("physical name is not quoted: %q", line)
		}
		f = strings.Fields(line[:q0])
		if len(f) != 2 {
			return gs.errorf("expected dimension and tag before name: %q", line)
		}
		if pn.Dim, err = gs.atoi(f[0]); err != nil {
			return
		}
		if pn.Tag, err = gs.atoi(f[1]); err != nil {
			return
		}
		pn.Name = line[q0+1 : q1]
		gm.PhysicalNames = append(gm.PhysicalNames, pn)
	}
	return gs.expectEnd()
}

func (gs *gmshScanner) readEntities(gm *GmshMesh) (err error) {
	var (
		f      []string
		counts [4]int
	)
	gs.section = stateEntities.String()
	// numPoints numCurves numSurfaces numVolumes
	if f, err = gs.fields(4); err != nil {
		return
	}
	for dim := 0; dim < 4; dim++ {
		if counts[dim], err = gs.count(f[dim], "entity"); err != nil {
			return
		}
	}
	for dim := 0; dim < 4; dim++ {
		for i := 0; i < counts[dim]; i++ {
			var e *GmshEntity
			if e, err = gs.readEntity(dim); err != nil {
				return
			}
			if _, dup := gm.Entities[dim][e.Tag]; dup {
				return gs.errorf("duplicate entity %d of dimension %d", e.Tag, dim)
			}
			gm.Entities[dim][e.Tag] = e
		}
	}
	return gs.expectEnd()
}

// readEntity parses
//
//	tag minX minY minZ maxX maxY maxZ numPhysicals physicalTag... [numBounding boundingTag...]
//
// Points carry no bounding list.
func (gs *gmshScanner) readEntity(dim int) (e *GmshEntity, err error) {
	var (
		f []string
		n int
	)
	if f, err = gs.fields(8); err != nil {
		return
	}
	e = &GmshEntity{Dim: dim}
	if e.Tag, err = gs.atoi(f[0]); err != nil {
		return
	}
	for j := 0; j < 3; j++ {
		if e.Min[j], err = gs.atof(f[1+j]); err != nil {
			return
		}
		if e.Max[j], err = gs.atof(f[4+j]); err != nil {
			return
		}
	}
	offset := 7
	if n, err = gs.count(f[offset], "physical tag"); err != nil {
		return
	}
	offset++
	if len(f) < offset+n {
		return nil, gs.errorf("entity %d lists %d physical tags, found %d", e.Tag, n, len(f)-offset)
	}
	if e.PhysicalTags, err = gs.ints(f[offset : offset+n]); err != nil {
		return
	}
	offset += n
	if dim == 0 || len(f) == offset {
		return
	}
	if n, err = gs.count(f[offset], "bounding entity"); err != nil {
		return
	}
	offset++
	if len(f) < offset+n {
		return nil, gs.errorf("entity %d lists %d bounding entities, found %d", e.Tag, n, len(f)-offset)
	}
	e.BoundingTags, err = gs.ints(f[offset : offset+n])
	return
}

func (gs *gmshScanner) readNodes(gm *GmshMesh) (err error) {
	var (
		f         []string
		numBlocks int
		total     int
	)
	gs.section = stateNodes.String()
	// numEntityBlocks numNodes
	if f, err = gs.fields(2); err != nil {
		return
	}
	if numBlocks, err = gs.count(f[0], "node block"); err != nil {
		return
	}
	if gm.NumNodes, err = gs.count(f[1], "node"); err != nil {
		return
	}
	for b := 0; b < numBlocks; b++ {
		var (
			nb GmshNodeBlock
			n  int
		)
		// tagEntity dimEntity parametric numNodes
		if f, err = gs.fields(4); err != nil {
			return
		}
		if nb.EntityTag, err = gs.atoi(f[0]); err != nil {
			return
		}
		if nb.EntityDim, err = gs.atoi(f[1]); err != nil {
			return
		}
		if _, ok := gm.Entity(nb.EntityDim, nb.EntityTag); !ok {
			return gs.errorf("node block references undeclared entity %d of dimension %d",
				nb.EntityTag, nb.EntityDim)
		}
		if n, err = gs.count(f[3], "node"); err != nil {
			return
		}
		for i := 0; i < n; i++ {
			var nd GmshNode
			// tag x y z [u v w]
			if f, err = gs.fields(4); err != nil {
				return
			}
			if nd.Tag, err = gs.atoi(f[0]); err != nil {
				return
			}
			for j := 0; j < 3; j++ {
				if nd.X[j], err = gs.atof(f[1+j]); err != nil {
					return
				}
			}
			if !utils.IsFinite(nd.X) {
				return gs.errorf("node %d has a non-finite coordinate", nd.Tag)
			}
			nb.Nodes = append(nb.Nodes, nd)
		}
		gm.NodeBlocks = append(gm.NodeBlocks, nb)
		total += n
	}
	if total != gm.NumNodes {
		return gs.errorf("header declares %d nodes, blocks contain %d", gm.NumNodes, total)
	}
	return gs.expectEnd()
}

func (gs *gmshScanner) readElements(gm *GmshMesh) (err error) {
	var (
		f         []string
		numBlocks int
		total     int
	)
	gs.section = stateElements.String()
	// numEntityBlocks numElements
	if f, err = gs.fields(2); err != nil {
		return
	}
	if numBlocks, err = gs.count(f[0], "element block"); err != nil {
		return
	}
	if gm.NumElements, err = gs.count(f[1], "element"); err != nil {
		return
	}
	for b := 0; b < numBlocks; b++ {
		var (
			eb GmshElementBlock
			n  int
		)
		// tagEntity dimEntity typeEle numElements
		if f, err = gs.fields(4); err != nil {
			return
		}
		if eb.EntityTag, err = gs.atoi(f[0]); err != nil {
			return
		}
		if eb.EntityDim, err = gs.atoi(f[1]); err != nil {
			return
		}
		if _, ok := gm.Entity(eb.EntityDim, eb.EntityTag); !ok {
			return gs.errorf("element block references undeclared entity %d of dimension %d",
				eb.EntityTag, eb.EntityDim)
		}
		if eb.ElementType, err = gs.atoi(f[2]); err != nil {
			return
		}
		if n, err = gs.count(f[3], "element"); err != nil {
			return
		}
		for i := 0; i < n; i++ {
			var el GmshElement
			// elementTag nodeTag...
			if f, err = gs.fields(2); err != nil {
				return
			}
			if el.Tag, err = gs.atoi(f[0]); err != nil {
				return
			}
			if el.Nodes, err = gs.ints(f[1:]); err != nil {
				return
			}
			eb.Elements = append(eb.Elements, el)
		}
		gm.ElementBlocks = append(gm.ElementBlocks, eb)
		total += n
	}
	if total != gm.NumElements {
		return gs.errorf("header declares %d elements, blocks contain %d", gm.NumElements, total)
	}
	return gs.expectEnd()
}
