package sudoku

import (
	"hash/maphash"
	"math"
	"math/rand/v2"
	"time"
)

// MultiColonyConfig configures the DCM-ACO driver. Zero values for the
// thresholds disable nothing: entropy gating and convergence gating compare
// against them as given.
type MultiColonyConfig struct {
	NumColonies   int
	NumACS        int // first NumACS colonies are ACS, the rest MMAS
	AntsPerColony int

	Q0       float64 // ACS greedy-choice probability
	Rho      float64 // ACS global-update rate (MMAS uses 0.1)
	Pher0    float64 // initial pheromone, normally 1/cellCount
	BestEvap float64 // ACS best-score evaporation after each global update

	ConvThreshold    float64 // MMAS convergence gate for public-path recommendation
	EntropyThreshold float64 // absolute solution-entropy gate for fusion

	// ACSOnly is the ablation mode: every colony is ACS and the last one
	// stands in for the MMAS colony as fusion source and recommendation
	// target. It is never clamped.
	ACSOnly bool

	Seed uint64 // 0 seeds from a nondeterministic source

	// Progress, when set, is called at every timeout poll.
	Progress func(iter, bestVal int)

	Stats *CpStats
}

const mmasRho = 0.1

// MultiColonyAntSystem is the dynamic cooperative multi-colony ACO engine:
// heterogeneous ACS and MMAS colonies coupled through cooperative-game
// pheromone allocation, pheromone fusion and public-path recommendation,
// gated by per-colony solution entropy and convergence rate.
type MultiColonyAntSystem struct {
	cfg      MultiColonyConfig
	colonies []*colony
	rnd      *rand.Rand

	globalBestSol  *Board
	globalBestPher float64
	globalBestVal  int

	solTime    float64
	iterations int

	coopGameTime   float64
	fusionTime     float64
	publicPathTime float64
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(),
			new(maphash.Hash).Sum64(),
		))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func NewMultiColonyAntSystem(cfg MultiColonyConfig) *MultiColonyAntSystem {
	if cfg.NumACS > cfg.NumColonies {
		cfg.NumACS = cfg.NumColonies
	}
	return &MultiColonyAntSystem{
		cfg: cfg,
		rnd: newRand(cfg.Seed),
	}
}

func (m *MultiColonyAntSystem) Solution() *Board       { return m.globalBestSol }
func (m *MultiColonyAntSystem) SolutionTime() float64  { return m.solTime }
func (m *MultiColonyAntSystem) Iterations() int        { return m.iterations }
func (m *MultiColonyAntSystem) CoopGameSeconds() float64   { return m.coopGameTime }
func (m *MultiColonyAntSystem) FusionSeconds() float64     { return m.fusionTime }
func (m *MultiColonyAntSystem) PublicPathSeconds() float64 { return m.publicPathTime }

func (m *MultiColonyAntSystem) setupColonies(puzzle *Board) {
	m.colonies = make([]*colony, m.cfg.NumColonies)
	numACS := m.cfg.NumACS
	if m.cfg.ACSOnly {
		numACS = m.cfg.NumColonies
	}
	for c := range m.colonies {
		col := &colony{tau0: m.cfg.Pher0}
		if c < numACS {
			col.typ = ColonyACS
			col.q0 = m.cfg.Q0
			col.rho = m.cfg.Rho
		} else {
			col.typ = ColonyMMAS
			col.q0 = 0
			col.rho = mmasRho
			// Published initialization: pher0 stands in for the first
			// best score.
			col.refreshBounds(m.cfg.Pher0, puzzle.NumUnits())
		}
		col.initPheromone(puzzle.CellCount(), puzzle.NumUnits())
		col.ants = make([]*ant, m.cfg.AntsPerColony)
		for i := range col.ants {
			col.ants[i] = newAnt()
		}
		m.colonies[c] = col
	}
}

// Solve runs the iteration loop until a colony completes the grid or
// maxTime seconds elapse. The timeout is polled every 100 iterations.
func (m *MultiColonyAntSystem) Solve(puzzle *Board, maxTime float64) bool {
	start := time.Now()
	stats := m.cfg.Stats
	m.setupColonies(puzzle)
	m.globalBestSol = nil
	m.globalBestPher = 0
	m.globalBestVal = 0

	numCells := puzzle.CellCount()
	iter := 0
	solved := false

	for !solved {
		for _, col := range m.colonies {
			for _, a := range col.ants {
				a.initSolution(puzzle, m.rnd.IntN(numCells))
			}
		}

		// Lock-step construction: all ants across all colonies advance one
		// cell at a time.
		for i := 0; i < numCells; i++ {
			for _, col := range m.colonies {
				for _, a := range col.ants {
					a.step(col, m.rnd, stats)
				}
			}
		}

		for _, col := range m.colonies {
			iBest, bestVal := 0, 0
			for i, a := range col.ants {
				if a.numCellsFilled() > bestVal {
					bestVal = a.numCellsFilled()
					iBest = i
				}
			}
			pherToAdd := pherAdd(numCells, bestVal)
			if pherToAdd > col.bestPher {
				if col.bestSol == nil {
					col.bestSol = &Board{}
				}
				col.bestSol.CopyFrom(col.ants[iBest].sol)
				col.bestPher = pherToAdd
				col.bestVal = bestVal
				col.lastImproveIter = iter
				if col.typ == ColonyMMAS {
					col.refreshBounds(col.bestPher, puzzle.NumUnits())
				}
			}
			if col.bestPher > m.globalBestPher {
				m.globalBestPher = col.bestPher
				if m.globalBestSol == nil {
					m.globalBestSol = &Board{}
				}
				m.globalBestSol.CopyFrom(col.bestSol)
				m.globalBestVal = col.bestVal
				if m.globalBestVal == numCells {
					solved = true
					m.solTime = time.Since(start).Seconds()
				}
			}
		}

		m.cooperate(iter)

		iter++
		if iter%100 == 0 {
			if m.cfg.Progress != nil {
				m.cfg.Progress(iter, m.globalBestVal)
			}
			if time.Since(start).Seconds() > maxTime {
				break
			}
		}
	}

	m.iterations = iter
	m.solTime = time.Since(start).Seconds()
	return solved
}

// cooperate evaluates the gating predicates and applies the dynamic
// operators for one iteration.
func (m *MultiColonyAntSystem) cooperate(iter int) {
	var acsIdx, mmasIdx []int
	for c, col := range m.colonies {
		if col.typ == ColonyACS {
			acsIdx = append(acsIdx, c)
		} else {
			mmasIdx = append(mmasIdx, c)
		}
	}

	// Ablation: the last ACS colony plays the MMAS role.
	if m.cfg.ACSOnly && len(mmasIdx) == 0 && len(acsIdx) > 1 {
		last := len(acsIdx) - 1
		mmasIdx = acsIdx[last:]
		acsIdx = acsIdx[:last]
	}

	entropies := make([]float64, len(m.colonies))
	for c, col := range m.colonies {
		entropies[c] = solutionEntropy(col)
	}

	if len(acsIdx) > 0 {
		var lowEntropy, highEntropy []int
		for _, c := range acsIdx {
			if entropies[c] < m.cfg.EntropyThreshold {
				lowEntropy = append(lowEntropy, c)
			} else {
				highEntropy = append(highEntropy, c)
			}
		}

		if len(lowEntropy) > 0 && len(mmasIdx) > 0 {
			opStart := time.Now()
			m.applyPheromoneFusion(lowEntropy, mmasIdx[0], entropies)
			m.fusionTime += time.Since(opStart).Seconds()
		}

		if len(highEntropy) > 0 {
			opStart := time.Now()
			allocated := m.cooperativeGameAllocate(highEntropy, entropies)
			m.coopGameTime += time.Since(opStart).Seconds()

			for _, c := range highEntropy {
				col := m.colonies[c]
				col.globalUpdate(col.bestSol, allocated[c])
				col.bestPher *= 1 - m.cfg.BestEvap
			}
		}
	}

	if len(mmasIdx) > 0 {
		target := m.colonies[mmasIdx[0]]
		con := 1.0
		if iter > 0 {
			con = float64(target.lastImproveIter) / float64(iter)
		}
		if con < m.cfg.ConvThreshold && len(acsIdx) > 0 {
			opStart := time.Now()
			m.applyPublicPathRecommendation(iter, acsIdx, mmasIdx[0])
			m.publicPathTime += time.Since(opStart).Seconds()
		} else {
			target.globalUpdate(target.bestSol, target.bestPher)
		}
	}
}

// solutionEntropy is the Shannon entropy (base 2) of the distribution of a
// colony's ants over distinct constructed boards.
func solutionEntropy(col *colony) float64 {
	if len(col.ants) == 0 {
		return 0
	}
	buckets := make(map[string]int, len(col.ants))
	for _, a := range col.ants {
		buckets[a.sol.signature()]++
	}
	entropy := 0.0
	total := float64(len(col.ants))
	for _, n := range buckets {
		p := float64(n) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// cooperativeGameAllocate splits the total pheromone payoff of the
// high-entropy ACS colonies by contribution: shorter remaining length and
// higher entropy earn a bigger share. Returns the per-colony allocation,
// indexed by colony.
func (m *MultiColonyAntSystem) cooperativeGameAllocate(acsIdx []int, entropies []float64) []float64 {
	allocated := make([]float64, len(m.colonies))
	if len(acsIdx) == 0 {
		return allocated
	}

	totalPayoff := 0.0
	minLen := math.MaxInt
	maxEntropy := 0.0
	lengths := make([]int, len(acsIdx))
	for k, c := range acsIdx {
		col := m.colonies[c]
		lengths[k] = len(col.pher) - col.bestVal
		if lengths[k] < minLen {
			minLen = lengths[k]
		}
		totalPayoff += pherAdd(len(col.pher), col.bestVal)
		if entropies[c] > maxEntropy {
			maxEntropy = entropies[c]
		}
	}

	contr := make([]float64, len(acsIdx))
	sumContr := 0.0
	for k, c := range acsIdx {
		lengthTerm := 1.0
		if lengths[k] > 0 {
			lengthTerm = float64(minLen) / float64(lengths[k])
		}
		entropyTerm := 0.0
		if maxEntropy > 0 {
			entropyTerm = entropies[c] / maxEntropy
		}
		contr[k] = lengthTerm * entropyTerm
		sumContr += contr[k]
	}

	for k, c := range acsIdx {
		share := 1.0 / float64(len(acsIdx))
		if sumContr > 0 {
			share = contr[k] / sumContr
		}
		allocated[c] = share * totalPayoff
	}
	return allocated
}

// applyPheromoneFusion mixes each low-entropy ACS matrix toward the MMAS
// matrix, weighted by the colonies' relative entropies. The ACS matrix is
// not clamped afterwards.
func (m *MultiColonyAntSystem) applyPheromoneFusion(acsIdx []int, srcIdx int, entropies []float64) {
	src := m.colonies[srcIdx]
	srcEntropy := entropies[srcIdx]
	for _, c := range acsIdx {
		col := m.colonies[c]
		mix := 0.0
		if total := entropies[c] + srcEntropy; total > 0 {
			mix = entropies[c] / total
		}
		for i := range col.pher {
			for j := range col.pher[i] {
				col.pher[i][j] = (1-mix)*col.pher[i][j] + mix*src.pher[i][j]
			}
		}
	}
}

// applyPublicPathRecommendation reinforces, on the target matrix, the cells
// where every ACS best solution agrees on a value. The magnitude
// exp(-iter)/n makes the mechanism strong early and vanishing later.
func (m *MultiColonyAntSystem) applyPublicPathRecommendation(iter int, acsIdx []int, targetIdx int) {
	target := m.colonies[targetIdx]
	numCells := len(target.pher)

	publicIdx := make([]int, numCells)
	for cell := 0; cell < numCells; cell++ {
		publicIdx[cell] = -1
		agree := -1
		allAgree := true
		for k, c := range acsIdx {
			best := m.colonies[c].bestSol
			if best == nil || !best.Cell(cell).Fixed() {
				allAgree = false
				break
			}
			idx := best.Cell(cell).Index()
			if k == 0 {
				agree = idx
			} else if idx != agree {
				allAgree = false
				break
			}
		}
		if allAgree {
			publicIdx[cell] = agree
		}
	}

	tauPub := publicPathTau(iter, target.bestSol.NumUnits())
	for cell, idx := range publicIdx {
		if idx >= 0 {
			target.pher[cell][idx] += tauPub
		}
	}
	target.clamp()
}

func publicPathTau(iter, n int) float64 {
	return math.Exp(-float64(iter)) / float64(n)
}
