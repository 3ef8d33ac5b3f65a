package board

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Board file format: a header line "width height", then one line per
// non-empty cell:
//
//	x y touched food blob
//
// with touched and food as 0/1. Cells absent from the file are empty.
// Write emits cells in x-major order so output is deterministic.

// Read parses a board from r.
func Read(r io.Reader) (*Board, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)

	if !scanner.Scan() {
		return nil, fmt.Errorf("board: empty input")
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 {
		return nil, fmt.Errorf("board: bad header %q", scanner.Text())
	}
	width, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("board: bad width %q", header[0])
	}
	height, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("board: bad height %q", header[1])
	}
	b, err := New(width, height)
	if err != nil {
		return nil, err
	}

	line := 1
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 5 {
			return nil, fmt.Errorf("board: line %d: want 5 fields, got %d", line, len(fields))
		}
		x, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("board: line %d: bad x %q", line, fields[0])
		}
		y, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("board: line %d: bad y %q", line, fields[1])
		}
		if !b.InBounds(x, y) {
			return nil, fmt.Errorf("board: line %d: cell (%d,%d) outside %dx%d", line, x, y, width, height)
		}
		touched, err := parseBit(fields[2])
		if err != nil {
			return nil, fmt.Errorf("board: line %d: %v", line, err)
		}
		food, err := parseBit(fields[3])
		if err != nil {
			return nil, fmt.Errorf("board: line %d: %v", line, err)
		}
		blob, err := strconv.ParseFloat(fields[4], 64)
		if err != nil || blob < 0 {
			return nil, fmt.Errorf("board: line %d: bad blob %q", line, fields[4])
		}
		b.SetCell(x, y, Cell{Blob: blob, Food: food, Touched: touched})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("board: scan: %w", err)
	}
	return b, nil
}

func parseBit(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("bad flag %q", s)
}

// Write serializes the board to w.
func (b *Board) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", b.width, b.height)
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			c := b.cells[x][y]
			if !c.Touched && !c.Food && c.Blob == 0 {
				continue
			}
			fmt.Fprintf(bw, "%d %d %s %s %s\n",
				x, y, bit(c.Touched), bit(c.Food),
				strconv.FormatFloat(c.Blob, 'g', -1, 64))
		}
	}
	return bw.Flush()
}

func bit(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// Load reads a board file from disk.
func Load(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("board: open %s: %w", path, err)
	}
	defer f.Close()
	b, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Save writes a board file to disk.
func (b *Board) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("board: create %s: %w", path, err)
	}
	defer f.Close()
	if err := b.Write(f); err != nil {
		return fmt.Errorf("board: write %s: %w", path, err)
	}
	return nil
}
