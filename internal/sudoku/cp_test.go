package sudoku

import (
	"strings"
	"testing"
)

func blankBoard(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard(strings.Repeat(".", 81), nil)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestRule1EliminationCommitsLastCandidate(t *testing.T) {
	b := blankBoard(t)
	// Fix 1..8 across row 0; cell 8 must become 9.
	for v := 1; v <= 8; v++ {
		setCellAndPropagate(b, v-1, Singleton(9, v), nil)
	}
	if got := b.Cell(8); !got.Fixed() || got.Value() != 9 {
		t.Fatalf("cell 8: have %q, want fixed 9", got.toString("123456789"))
	}
}

func TestRule2HiddenSingle(t *testing.T) {
	b := blankBoard(t)
	// Strip candidate 5 from every row-0 cell except cell 4, without fixing
	// anything. Rule 2 must then commit cell 4 = 5.
	five := Singleton(9, 5)
	for j := 0; j < 9; j++ {
		if j != 4 {
			b.setCellDirect(j, Universe(9).Diff(five))
		}
	}
	if !rule2HiddenSingle(b, 4, nil) {
		t.Fatalf("hidden single not found")
	}
	if got := b.Cell(4); !got.Fixed() || got.Value() != 5 {
		t.Fatalf("cell 4: have %q, want fixed 5", got.toString("123456789"))
	}
}

func TestCPSoundness(t *testing.T) {
	b, err := NewBoard(easyPuzzle, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < b.CellCount(); i++ {
		if !b.Cell(i).Fixed() {
			continue
		}
		row, col, box := b.RowForCell(i), b.ColForCell(i), b.BoxForCell(i)
		for j := 0; j < b.NumUnits(); j++ {
			for _, k := range []int{b.RowCell(row, j), b.ColCell(col, j), b.BoxCell(box, j)} {
				if k != i && b.Cell(k).Fixed() && b.Cell(k).Index() == b.Cell(i).Index() {
					t.Fatalf("cells %d and %d are peers both fixed to %d", i, k, b.Cell(i).Value())
				}
			}
		}
	}
}

func TestCPIdempotence(t *testing.T) {
	// A harder puzzle that initial CP leaves open (21 of 81 cells fixed): a
	// second full pass over the propagated board must change nothing.
	const openPuzzle = "8..........36......7..9.2...5...7.......457.....1...3...1....68..85...1..9....4.."
	b, err := NewBoard(openPuzzle, nil)
	if err != nil {
		t.Fatal(err)
	}
	before := b.candidateBits()
	fixed := b.FixedCellCount()
	for i := 0; i < b.CellCount(); i++ {
		propagateConstraints(b, i, nil)
	}
	if b.candidateBits() != before || b.FixedCellCount() != fixed {
		t.Fatalf("second propagation pass changed the board")
	}
}

func TestCpStatsBuckets(t *testing.T) {
	stats := &CpStats{}
	if _, err := NewBoard(easyPuzzle, stats); err != nil {
		t.Fatal(err)
	}

	if stats.InitialCPSeconds() <= 0 {
		t.Errorf("initial CP time not accumulated")
	}
	if stats.AntCPSeconds() != 0 || stats.CommitCount() != 0 {
		t.Errorf("ant-phase counters should be untouched by the initial pass")
	}

	// A post-initial commit lands in the ant bucket.
	blank := blankBoard(t)
	setCellAndPropagate(blank, 0, Singleton(9, 1), stats)
	if stats.CommitCount() == 0 {
		t.Errorf("ant-phase commit not counted")
	}
	if stats.AntCPSeconds() <= 0 {
		t.Errorf("ant CP time not accumulated")
	}
}
