package sudoku

// NewAntSystem is the classic single-colony Ant Colony System: the
// multi-colony driver run with one ACS colony and no MMAS partner. The
// entropy gate is pinned to zero so the lone colony always takes the
// cooperative-game path, which for a single colony degenerates to the
// standard ACS global update; fusion and public-path recommendation never
// fire without an MMAS colony.
func NewAntSystem(nAnts int, q0, rho, pher0, bestEvap float64, seed uint64, stats *CpStats) *MultiColonyAntSystem {
	return NewMultiColonyAntSystem(MultiColonyConfig{
		NumColonies:      1,
		NumACS:           1,
		AntsPerColony:    nAnts,
		Q0:               q0,
		Rho:              rho,
		Pher0:            pher0,
		BestEvap:         bestEvap,
		EntropyThreshold: 0,
		Seed:             seed,
		Stats:            stats,
	})
}
