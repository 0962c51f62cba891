package types

import "fmt"

// GridIndex is the lookup between lattice positions (k,l) of an Nx x Ny
// structured grid and 1-D node ids, in both directions.
type GridIndex struct {
	Nx, Ny int
	ids    []int    // ids[k*Ny+l] = node id at (k,l)
	pos    [][2]int // pos[id] = (k,l)
}

// NewGridIndex numbers the lattice column by column: id = k*Ny + l
func NewGridIndex(Nx, Ny int) (gi *GridIndex) {
	gi = &GridIndex{
		Nx:  Nx,
		Ny:  Ny,
		ids: make([]int, Nx*Ny),
		pos: make([][2]int, Nx*Ny),
	}
	var count int
	for k := 0; k < Nx; k++ {
		for l := 0; l < Ny; l++ {
			gi.ids[k*Ny+l] = count
			gi.pos[count] = [2]int{k, l}
			count++
		}
	}
	return
}

func (gi *GridIndex) Len() int { return len(gi.pos) }

// ID returns the node id stored at lattice position (k,l)
func (gi *GridIndex) ID(k, l int) int {
	if k < 0 || k >= gi.Nx || l < 0 || l >= gi.Ny {
		panic(fmt.Sprintf("lattice position (%d,%d) out of range [%d,%d)", k, l, gi.Nx, gi.Ny))
	}
	return gi.ids[k*gi.Ny+l]
}

// Position returns the lattice position of node id
func (gi *GridIndex) Position(id int) (k, l int) {
	p := gi.pos[id]
	return p[0], p[1]
}

// Remap relabels every node id through newID (old id -> new id), keeping
// both directions of the lookup consistent.
func (gi *GridIndex) Remap(newID []int) {
	if len(newID) != len(gi.pos) {
		panic(fmt.Sprintf("renumbering map has %d entries, grid has %d nodes", len(newID), len(gi.pos)))
	}
	pos := make([][2]int, len(gi.pos))
	for old, p := range gi.pos {
		nid := newID[old]
		pos[nid] = p
		gi.ids[p[0]*gi.Ny+p[1]] = nid
	}
	gi.pos = pos
}

// Clone returns an independent copy
func (gi *GridIndex) Clone() *GridIndex {
	c := &GridIndex{
		Nx:  gi.Nx,
		Ny:  gi.Ny,
		ids: make([]int, len(gi.ids)),
		pos: make([][2]int, len(gi.pos)),
	}
	copy(c.ids, gi.ids)
	copy(c.pos, gi.pos)
	return c
}
