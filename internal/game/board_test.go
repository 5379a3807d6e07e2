package game

import (
	"reflect"
	"testing"
)

func TestBuildPositionGrid3(t *testing.T) {
	want := []string{"A1", "A2", "A3", "B1", "B2", "B3", "C1", "C2", "C3"}
	got := BuildPositionGrid(3)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBuildPositionGridUnique(t *testing.T) {
	for _, size := range []int{3, 4, 5, 6} {
		grid := BuildPositionGrid(size)
		if len(grid) != size*size {
			t.Fatalf("size %d: expected %d labels, got %d", size, size*size, len(grid))
		}
		seen := make(map[string]bool, len(grid))
		for _, p := range grid {
			if seen[p] {
				t.Fatalf("size %d: duplicate label %q", size, p)
			}
			seen[p] = true
		}
		if grid[0] != "A1" {
			t.Fatalf("size %d: expected first label A1, got %q", size, grid[0])
		}
	}
}

func TestDetectWinPatternTopRow(t *testing.T) {
	pattern, ok := DetectWinPattern([]string{"A1", "A2", "A3"}, 3)
	if !ok {
		t.Fatalf("expected win, got none")
	}
	if !reflect.DeepEqual(pattern, []string{"A1", "A2", "A3"}) {
		t.Fatalf("expected top row, got %v", pattern)
	}
}

func TestDetectWinPatternRowBeforeColumn(t *testing.T) {
	// Top row and first column are both complete; the row wins.
	marked := []string{"A1", "A2", "A3", "B1", "C1"}
	pattern, ok := DetectWinPattern(marked, 3)
	if !ok || !reflect.DeepEqual(pattern, []string{"A1", "A2", "A3"}) {
		t.Fatalf("expected row tie-break, got %v ok=%v", pattern, ok)
	}
}

func TestDetectWinPatternColumnBeforeDiagonal(t *testing.T) {
	// First column and the top-left diagonal are both complete; the column wins.
	marked := []string{"A1", "B1", "C1", "B2", "C3"}
	pattern, ok := DetectWinPattern(marked, 3)
	if !ok || !reflect.DeepEqual(pattern, []string{"A1", "B1", "C1"}) {
		t.Fatalf("expected column tie-break, got %v ok=%v", pattern, ok)
	}
}

func TestDetectWinPatternDiagonals(t *testing.T) {
	pattern, ok := DetectWinPattern([]string{"A1", "B2", "C3"}, 3)
	if !ok || !reflect.DeepEqual(pattern, []string{"A1", "B2", "C3"}) {
		t.Fatalf("expected main diagonal, got %v ok=%v", pattern, ok)
	}
	pattern, ok = DetectWinPattern([]string{"A3", "B2", "C1"}, 3)
	if !ok || !reflect.DeepEqual(pattern, []string{"A3", "B2", "C1"}) {
		t.Fatalf("expected anti diagonal, got %v ok=%v", pattern, ok)
	}
}

func TestDetectWinPatternTooFewMarks(t *testing.T) {
	if pattern, ok := DetectWinPattern([]string{"A1", "A2"}, 3); ok {
		t.Fatalf("expected no pattern with two marks, got %v", pattern)
	}
}

func TestDetectWinPatternNoLine(t *testing.T) {
	if pattern, ok := DetectWinPattern([]string{"A1", "B3", "C2", "A2"}, 3); ok {
		t.Fatalf("expected no pattern, got %v", pattern)
	}
}

func TestDetectWinPatternDuplicatesDoNotCount(t *testing.T) {
	if pattern, ok := DetectWinPattern([]string{"A1", "A1", "A1"}, 3); ok {
		t.Fatalf("expected no pattern from duplicate marks, got %v", pattern)
	}
}

func TestValidPosition(t *testing.T) {
	valid := []string{"A1", "C3", "B2"}
	for _, p := range valid {
		if !ValidPosition(p, 3) {
			t.Fatalf("expected %q valid on 3x3", p)
		}
	}
	invalid := []string{"", "A", "D1", "A0", "A4", "a1", "AX", "11"}
	for _, p := range invalid {
		if ValidPosition(p, 3) {
			t.Fatalf("expected %q invalid on 3x3", p)
		}
	}
	if !ValidPosition("F6", 6) || ValidPosition("G1", 6) {
		t.Fatalf("expected 6x6 bounds at row F")
	}
}

func TestDetectWinPatternLargeBoard(t *testing.T) {
	marked := []string{"E1", "E2", "E3", "E4", "E5", "A1", "C4"}
	pattern, ok := DetectWinPattern(marked, 5)
	if !ok || !reflect.DeepEqual(pattern, []string{"E1", "E2", "E3", "E4", "E5"}) {
		t.Fatalf("expected fifth row on 5x5, got %v ok=%v", pattern, ok)
	}
}
