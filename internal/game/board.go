package game

import "strconv"

// Position names the cell at row (0-based) and col (1-based): row letter
// then column number, so (0,1) is "A1" and (2,3) is "C3".
func Position(row, col int) string {
	return string(rune('A'+row)) + strconv.Itoa(col)
}

// ValidPosition reports whether the label names a cell on a size board.
func ValidPosition(position string, size int) bool {
	if size <= 0 || len(position) < 2 {
		return false
	}
	row := int(position[0] - 'A')
	if row < 0 || row >= size {
		return false
	}
	col, err := strconv.Atoi(position[1:])
	if err != nil {
		return false
	}
	return col >= 1 && col <= size
}

// BuildPositionGrid returns the size*size position labels in row-major
// order. Size 3 yields A1 A2 A3 B1 B2 B3 C1 C2 C3.
func BuildPositionGrid(size int) []string {
	if size <= 0 {
		return nil
	}
	grid := make([]string, 0, size*size)
	for r := 0; r < size; r++ {
		for c := 1; c <= size; c++ {
			grid = append(grid, Position(r, c))
		}
	}
	return grid
}

// DetectWinPattern reports the first complete line among the marked
// positions. Rows are checked top to bottom, then columns left to right,
// then the top-left diagonal, then the top-right diagonal; the first hit
// wins and later lines are not considered. Fewer than size marks can never
// complete a line, so the scan is skipped outright.
func DetectWinPattern(marked []string, size int) ([]string, bool) {
	if size <= 0 || len(marked) < size {
		return nil, false
	}
	set := make(map[string]struct{}, len(marked))
	for _, p := range marked {
		set[p] = struct{}{}
	}
	line := func(at func(i int) string) ([]string, bool) {
		out := make([]string, size)
		for i := 0; i < size; i++ {
			pos := at(i)
			if _, ok := set[pos]; !ok {
				return nil, false
			}
			out[i] = pos
		}
		return out, true
	}
	for r := 0; r < size; r++ {
		r := r
		if out, ok := line(func(i int) string { return Position(r, i+1) }); ok {
			return out, true
		}
	}
	for c := 1; c <= size; c++ {
		c := c
		if out, ok := line(func(i int) string { return Position(i, c) }); ok {
			return out, true
		}
	}
	if out, ok := line(func(i int) string { return Position(i, i+1) }); ok {
		return out, true
	}
	if out, ok := line(func(i int) string { return Position(i, size-i) }); ok {
		return out, true
	}
	return nil, false
}
