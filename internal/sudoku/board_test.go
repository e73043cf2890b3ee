package sudoku

import (
	"strings"
	"testing"
)

// Norvig's easy grid: solvable by constraint propagation alone.
const easyPuzzle = "..3.2.6..9..3.5..1..18.64....81.29..7.......8..67.82....26.95..8..2.3..9..5.1.3.."
const easySolution = "483921657967345821251876493548132976729564138136798245372689514814253769695417382"

// Wikipedia's example solved grid.
const solvedGrid = "534678912672195348198342567859761423426853791713924856961537284287419635345286179"

func TestBoardGeometryRoundTrip(t *testing.T) {
	b, err := NewBoard(strings.Repeat(".", 81), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < b.CellCount(); i++ {
		row, col, box := b.RowForCell(i), b.ColForCell(i), b.BoxForCell(i)
		foundInBox := false
		for j := 0; j < b.NumUnits(); j++ {
			if b.RowCell(row, j) == i && b.ColForCell(b.RowCell(row, j)) != j {
				t.Fatalf("cell %d: row member %d has wrong column", i, j)
			}
			if b.BoxCell(box, j) == i {
				foundInBox = true
			}
		}
		if b.RowCell(row, col) != i {
			t.Fatalf("cell %d: RowCell(%d,%d) != i", i, row, col)
		}
		if b.ColCell(col, row) != i {
			t.Fatalf("cell %d: ColCell(%d,%d) != i", i, col, row)
		}
		if !foundInBox {
			t.Fatalf("cell %d missing from its box %d", i, box)
		}
	}
}

func TestBoardRectangularBoxes(t *testing.T) {
	b, err := NewBoard(strings.Repeat(".", 36), nil)
	if err != nil {
		t.Fatal(err)
	}
	if b.NumUnits() != 6 {
		t.Fatalf("6x6 board: have %d units", b.NumUnits())
	}
	// Box 0 of a 6x6 covers rows 0-1, columns 0-2.
	want := map[int]bool{0: true, 1: true, 2: true, 6: true, 7: true, 8: true}
	for j := 0; j < 6; j++ {
		if !want[b.BoxCell(0, j)] {
			t.Fatalf("box 0 member %d is cell %d, outside the 2x3 block", j, b.BoxCell(0, j))
		}
	}
}

func TestBoardParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		puzzle string
	}{
		{"empty", ""},
		{"short", strings.Repeat(".", 80)},
		{"bad char", strings.Repeat(".", 80) + "x"},
		{"zero digit", "0" + strings.Repeat(".", 80)},
	} {
		if _, err := NewBoard(tc.puzzle, nil); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestBoardInitialCPSolvesEasyPuzzle(t *testing.T) {
	b, err := NewBoard(easyPuzzle, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b.FixedCellCount() != b.CellCount() {
		t.Fatalf("easy puzzle should close under CP: %d of %d cells fixed",
			b.FixedCellCount(), b.CellCount())
	}
	if got := b.PuzzleString(); got != easySolution {
		t.Fatalf("wrong solution:\nhave %s\nwant %s", got, easySolution)
	}
}

func TestBoardContradictoryGivensBecomeInfeasible(t *testing.T) {
	puzzle := "11" + strings.Repeat(".", 79)
	b, err := NewBoard(puzzle, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b.InfeasibleCellCount() == 0 {
		t.Fatalf("two 1s in one row should leave an infeasible cell")
	}
}

func TestBoardCheckSolution(t *testing.T) {
	puzzle, err := NewBoard(easyPuzzle, nil)
	if err != nil {
		t.Fatal(err)
	}
	good, err := NewBoard(easySolution, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !puzzle.CheckSolution(good) {
		t.Errorf("valid completion rejected")
	}

	other, err := NewBoard(solvedGrid, nil)
	if err != nil {
		t.Fatal(err)
	}
	if puzzle.CheckSolution(other) {
		t.Errorf("completion of a different puzzle accepted")
	}
	if puzzle.CheckSolution(blankBoard(t)) {
		t.Errorf("incomplete board accepted as a solution")
	}
}

func TestBoardCloneIsIndependent(t *testing.T) {
	b, err := NewBoard(easyPuzzle, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := b.Clone()
	c.setCellDirect(0, NewValueSet(9))
	if b.Cell(0).Empty() {
		t.Fatalf("mutating the clone leaked into the original")
	}
	if c.signature() == b.signature() {
		t.Fatalf("signatures should diverge after mutation")
	}
}

func TestBoardPuzzleStringRoundTrip(t *testing.T) {
	b, err := NewBoard(solvedGrid, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.PuzzleString(); got != solvedGrid {
		t.Fatalf("round trip:\nhave %s\nwant %s", got, solvedGrid)
	}
}

func TestBoardAsStringShape(t *testing.T) {
	b, err := NewBoard(solvedGrid, nil)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(b.AsString(false, false), "\n")
	// 9 cell rows plus 2 rule lines.
	if len(lines) != 11 {
		t.Fatalf("9x9 grid should render 11 lines, have %d", len(lines))
	}
	if !strings.Contains(lines[0], "|") {
		t.Errorf("cell rows should carry box separators: %q", lines[0])
	}
	if !strings.Contains(lines[3], "-") {
		t.Errorf("line 4 should be a rule line: %q", lines[3])
	}
}
