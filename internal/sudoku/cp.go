package sudoku

import (
	"sync/atomic"
	"time"
)

// CpStats accumulates constraint-propagation telemetry for one solve. Two
// time buckets are kept: the initial pass over the parsed puzzle and the
// propagation triggered by ant commits. The increments are atomic so a host
// running several solves in parallel can aggregate into a shared handle.
// All methods tolerate a nil receiver.
type CpStats struct {
	initialNanos atomic.Int64
	antNanos     atomic.Int64
	commits      atomic.Int64
	inInitial    atomic.Bool
}

func (s *CpStats) beginInitial() {
	if s != nil {
		s.inInitial.Store(true)
	}
}

func (s *CpStats) endInitial() {
	if s != nil {
		s.inInitial.Store(false)
	}
}

func (s *CpStats) addTime(d time.Duration) {
	if s == nil {
		return
	}
	if s.inInitial.Load() {
		s.initialNanos.Add(int64(d))
	} else {
		s.antNanos.Add(int64(d))
	}
}

func (s *CpStats) countCommit() {
	if s != nil && !s.inInitial.Load() {
		s.commits.Add(1)
	}
}

// InitialCPSeconds is the time spent propagating the puzzle's givens.
func (s *CpStats) InitialCPSeconds() float64 {
	if s == nil {
		return 0
	}
	return time.Duration(s.initialNanos.Load()).Seconds()
}

// AntCPSeconds is the time spent propagating ant commits.
func (s *CpStats) AntCPSeconds() float64 {
	if s == nil {
		return 0
	}
	return time.Duration(s.antNanos.Load()).Seconds()
}

// CommitCount is the number of cells committed outside the initial pass.
func (s *CpStats) CommitCount() int64 {
	if s == nil {
		return 0
	}
	return s.commits.Load()
}

// rule1Elimination removes the values fixed in the cell's row, column and
// box. Commits (and propagates) when one candidate remains; reports whether
// it committed.
func rule1Elimination(b *Board, i int, stats *CpStats) bool {
	start := time.Now()
	cell := b.cells[i]
	if cell.Empty() || cell.Fixed() {
		stats.addTime(time.Since(start))
		return false
	}

	iRow, iCol, iBox := b.RowForCell(i), b.ColForCell(i), b.BoxForCell(i)
	fixed := NewValueSet(b.numUnits)
	for j := 0; j < b.numUnits; j++ {
		if k := b.RowCell(iRow, j); k != i && b.cells[k].Fixed() {
			fixed = fixed.Add(b.cells[k])
		}
		if k := b.ColCell(iCol, j); k != i && b.cells[k].Fixed() {
			fixed = fixed.Add(b.cells[k])
		}
		if k := b.BoxCell(iBox, j); k != i && b.cells[k].Fixed() {
			fixed = fixed.Add(b.cells[k])
		}
	}
	remaining := cell.Diff(fixed)
	stats.addTime(time.Since(start))

	if remaining.Fixed() {
		setCellAndPropagate(b, i, remaining, stats)
		return true
	}
	b.setCellDirect(i, remaining)
	return false
}

// rule2HiddenSingle commits the cell when one of its candidates appears
// nowhere else in some unit. Units are tried row, column, box; the first
// success wins.
func rule2HiddenSingle(b *Board, i int, stats *CpStats) bool {
	start := time.Now()
	cell := b.cells[i]
	if cell.Empty() || cell.Fixed() {
		stats.addTime(time.Since(start))
		return false
	}

	iRow, iCol, iBox := b.RowForCell(i), b.ColForCell(i), b.BoxForCell(i)
	rowAll := NewValueSet(b.numUnits)
	colAll := NewValueSet(b.numUnits)
	boxAll := NewValueSet(b.numUnits)
	for j := 0; j < b.numUnits; j++ {
		if k := b.RowCell(iRow, j); k != i {
			rowAll = rowAll.Add(b.cells[k])
		}
		if k := b.ColCell(iCol, j); k != i {
			colAll = colAll.Add(b.cells[k])
		}
		if k := b.BoxCell(iBox, j); k != i {
			boxAll = boxAll.Add(b.cells[k])
		}
	}
	stats.addTime(time.Since(start))

	for _, all := range []ValueSet{rowAll, colAll, boxAll} {
		if single := cell.Diff(all); single.Fixed() {
			setCellAndPropagate(b, i, single, stats)
			return true
		}
	}
	return false
}

// propagateConstraints applies Rule 1 then Rule 2 to one cell. A cell that
// ends up with no candidates is counted infeasible; the search carries on.
func propagateConstraints(b *Board, i int, stats *CpStats) {
	cell := b.cells[i]
	if cell.Empty() || cell.Fixed() {
		return
	}
	if rule1Elimination(b, i, stats) {
		return
	}
	rule2HiddenSingle(b, i, stats)
	if b.cells[i].Empty() {
		b.numInfeasible++
	}
}

// setCellAndPropagate commits a cell to a fixed value and re-propagates all
// of its peers. Terminates because every commit strictly reduces the total
// candidate count.
func setCellAndPropagate(b *Board, i int, v ValueSet, stats *CpStats) {
	if b.cells[i].Fixed() {
		return
	}
	b.setCellDirect(i, v)
	b.numFixedCells++
	stats.countCommit()

	iRow, iCol, iBox := b.RowForCell(i), b.ColForCell(i), b.BoxForCell(i)
	for j := 0; j < b.numUnits; j++ {
		if k := b.RowCell(iRow, j); k != i {
			propagateConstraints(b, k, stats)
		}
		if k := b.ColCell(iCol, j); k != i {
			propagateConstraints(b, k, stats)
		}
		if k := b.BoxCell(iBox, j); k != i {
			propagateConstraints(b, k, stats)
		}
	}
}
