// Package board models the simulation grid: per-cell blob mass, food
// markers, and the touched flag recording that a cell ever carried
// blob.
package board

import "fmt"

// Cell is one grid square.
type Cell struct {
	Blob    float64
	Food    bool
	Touched bool
}

// Board is a fixed-size grid of cells, indexed [x][y].
type Board struct {
	width  int
	height int
	cells  [][]Cell
}

// New returns an empty board of the given dimensions.
func New(width, height int) (*Board, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("board: invalid dimensions %dx%d", width, height)
	}
	cells := make([][]Cell, width)
	for x := range cells {
		cells[x] = make([]Cell, height)
	}
	return &Board{width: width, height: height, cells: cells}, nil
}

// Width returns the horizontal cell count.
func (b *Board) Width() int { return b.width }

// Height returns the vertical cell count.
func (b *Board) Height() int { return b.height }

// Size returns both dimensions.
func (b *Board) Size() (width, height int) { return b.width, b.height }

// InBounds reports whether (x, y) lies on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// HasFood reports whether the cell bears food. Out-of-bounds cells
// bear nothing.
func (b *Board) HasFood(x, y int) bool {
	return b.InBounds(x, y) && b.cells[x][y].Food
}

// IsTouched reports whether the cell has ever carried blob.
func (b *Board) IsTouched(x, y int) bool {
	return b.InBounds(x, y) && b.cells[x][y].Touched
}

// Blob returns the blob mass on the cell, zero off-board.
func (b *Board) Blob(x, y int) float64 {
	if !b.InBounds(x, y) {
		return 0
	}
	return b.cells[x][y].Blob
}

// SetFood marks or clears food on a cell.
func (b *Board) SetFood(x, y int, food bool) {
	if b.InBounds(x, y) {
		b.cells[x][y].Food = food
	}
}

// AddBlob deposits mass on a cell and marks it touched. Negative
// deposits are ignored.
func (b *Board) AddBlob(x, y int, qt float64) {
	if !b.InBounds(x, y) || qt < 0 {
		return
	}
	c := &b.cells[x][y]
	c.Blob += qt
	c.Touched = true
}

// SetCell overwrites a cell wholesale. Used by loaders.
func (b *Board) SetCell(x, y int, c Cell) {
	if b.InBounds(x, y) {
		b.cells[x][y] = c
	}
}

// Cell returns a copy of the cell at (x, y).
func (b *Board) Cell(x, y int) Cell {
	if !b.InBounds(x, y) {
		return Cell{}
	}
	return b.cells[x][y]
}

// BlobTotal returns the summed blob mass over the whole board.
func (b *Board) BlobTotal() float64 {
	var total float64
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			total += b.cells[x][y].Blob
		}
	}
	return total
}

// Cover returns the number of touched cells.
func (b *Board) Cover() int {
	var n int
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			if b.cells[x][y].Touched {
				n++
			}
		}
	}
	return n
}

// ManageBlob applies one tick of global decay: every touched cell
// loses globalDecrease mass, clamped at zero, except that food cells
// keep at least minOnFood so a discovered source never starves out of
// the trail network.
func (b *Board) ManageBlob(globalDecrease, minOnFood float64) {
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			c := &b.cells[x][y]
			if !c.Touched {
				continue
			}
			c.Blob -= globalDecrease
			floor := 0.0
			if c.Food {
				floor = minOnFood
			}
			if c.Blob < floor {
				c.Blob = floor
			}
		}
	}
}
