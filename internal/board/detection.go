package board

import "fmt"

// Rect is a detected food region in cell coordinates: the image
// pipeline reports each food source as a bounding box.
type Rect struct {
	X, Y          int
	Width, Height int
}

// FromDetection builds an initial board from the output of the image
// preprocessing stage: food bounding boxes and a blob bitmask with one
// row per board row, '1' marking cells where blob was detected. Masked
// cells start with initBlob mass and are marked touched. A nil mask is
// allowed when only food was detected.
func FromDetection(width, height int, foods []Rect, mask []string, initBlob float64) (*Board, error) {
	b, err := New(width, height)
	if err != nil {
		return nil, err
	}

	for _, r := range foods {
		if r.Width < 1 || r.Height < 1 {
			return nil, fmt.Errorf("board: degenerate food region %+v", r)
		}
		for x := r.X; x < r.X+r.Width; x++ {
			for y := r.Y; y < r.Y+r.Height; y++ {
				b.SetFood(x, y, true)
			}
		}
	}

	if mask == nil {
		return b, nil
	}
	if len(mask) != height {
		return nil, fmt.Errorf("board: mask has %d rows, board height is %d", len(mask), height)
	}
	for y, row := range mask {
		if len(row) != width {
			return nil, fmt.Errorf("board: mask row %d has %d cells, board width is %d", y, len(row), width)
		}
		for x, ch := range row {
			if ch == '1' {
				b.AddBlob(x, y, initBlob)
			}
		}
	}
	return b, nil
}
