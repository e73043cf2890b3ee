package sudoku

import "math/rand/v2"

// ant builds one candidate solution per iteration, visiting every cell once
// starting from a random offset. It owns its working board; pheromone and
// randomness come in through step's arguments, so there are no back-pointers
// into the colony or driver.
type ant struct {
	sol       *Board
	iCell     int
	failCells int

	roulette     []float64
	rouletteVals []ValueSet
}

func newAnt() *ant {
	return &ant{sol: &Board{}}
}

// initSolution resets the ant for a new construction pass.
func (a *ant) initSolution(puzzle *Board, startCell int) {
	a.sol.CopyFrom(puzzle)
	a.iCell = startCell
	a.failCells = 0
	if cap(a.roulette) < puzzle.NumUnits() {
		a.roulette = make([]float64, puzzle.NumUnits())
		a.rouletteVals = make([]ValueSet, puzzle.NumUnits())
	}
}

// step advances the ant by one cell. An empty cell counts as a failure; an
// unfixed cell gets a value chosen greedily (with probability q0) or by
// roulette over pheromone, committed through constraint propagation, and
// followed by the ACS local update.
func (a *ant) step(col *colony, rnd *rand.Rand, stats *CpStats) {
	cell := a.sol.Cell(a.iCell)
	switch {
	case cell.Empty():
		a.failCells++
	case !cell.Fixed():
		if rnd.Float64() < col.q0 {
			a.stepGreedy(col, stats)
		} else {
			a.stepRoulette(col, rnd, stats)
		}
	}
	a.iCell++
	if a.iCell == a.sol.CellCount() {
		a.iCell = 0
	}
}

// stepGreedy takes the candidate with the highest pheromone, ties broken
// toward the smallest value.
func (a *ant) stepGreedy(col *colony, stats *CpStats) {
	cell := a.sol.Cell(a.iCell)
	choice := Singleton(a.sol.NumUnits(), 1)
	var best ValueSet
	maxPher := -1.0
	for i := 0; i < a.sol.NumUnits(); i++ {
		if cell.Contains(choice) {
			if ph := col.pher[a.iCell][i]; ph > maxPher {
				maxPher = ph
				best = choice
			}
		}
		choice = choice.ShiftLeft()
	}
	setCellAndPropagate(a.sol, a.iCell, best, stats)
	col.localUpdate(a.iCell, best.Index())
}

// stepRoulette draws a candidate with probability proportional to its
// pheromone.
func (a *ant) stepRoulette(col *colony, rnd *rand.Rand, stats *CpStats) {
	cell := a.sol.Cell(a.iCell)
	choice := Singleton(a.sol.NumUnits(), 1)
	totPher := 0.0
	numChoices := 0
	for i := 0; i < a.sol.NumUnits(); i++ {
		if cell.Contains(choice) {
			totPher += col.pher[a.iCell][i]
			a.roulette[numChoices] = totPher
			a.rouletteVals[numChoices] = choice
			numChoices++
		}
		choice = choice.ShiftLeft()
	}
	target := totPher * rnd.Float64()
	for i := 0; i < numChoices; i++ {
		if a.roulette[i] > target {
			picked := a.rouletteVals[i]
			setCellAndPropagate(a.sol, a.iCell, picked, stats)
			col.localUpdate(a.iCell, picked.Index())
			break
		}
	}
}

// numCellsFilled is the construction fitness: cells that did not fail.
func (a *ant) numCellsFilled() int {
	return a.sol.CellCount() - a.failCells
}
