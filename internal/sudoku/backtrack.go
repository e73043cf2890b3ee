package sudoku

import "time"

// BacktrackSearch is the exhaustive fallback solver: depth-first search over
// the cell with the fewest remaining candidates, with constraint propagation
// pruning after every trial assignment.
type BacktrackSearch struct {
	sol      *Board
	solTime  float64
	stats    *CpStats
	deadline time.Time
}

func NewBacktrackSearch(stats *CpStats) *BacktrackSearch {
	return &BacktrackSearch{stats: stats}
}

func (s *BacktrackSearch) Solution() *Board      { return s.sol }
func (s *BacktrackSearch) SolutionTime() float64 { return s.solTime }
func (s *BacktrackSearch) Iterations() int       { return 0 }

func (s *BacktrackSearch) Solve(puzzle *Board, maxTime float64) bool {
	start := time.Now()
	s.deadline = start.Add(time.Duration(maxTime * float64(time.Second)))
	s.sol = nil
	solved := s.search(puzzle.Clone())
	s.solTime = time.Since(start).Seconds()
	return solved
}

func (s *BacktrackSearch) search(b *Board) bool {
	if b.InfeasibleCellCount() > 0 {
		return false
	}
	if b.FixedCellCount() == b.CellCount() {
		s.sol = b
		return true
	}
	if time.Now().After(s.deadline) {
		return false
	}

	// Branch on the tightest cell.
	target, fewest := -1, b.NumUnits()+1
	for i := 0; i < b.CellCount(); i++ {
		if c := b.Cell(i); !c.Fixed() {
			if n := c.Count(); n < fewest {
				target, fewest = i, n
			}
		}
	}
	if target < 0 {
		return false
	}

	choice := Singleton(b.NumUnits(), 1)
	for v := 0; v < b.NumUnits(); v++ {
		if b.Cell(target).Contains(choice) {
			trial := b.Clone()
			setCellAndPropagate(trial, target, choice, s.stats)
			if s.search(trial) {
				return true
			}
		}
		choice = choice.ShiftLeft()
	}
	return false
}
