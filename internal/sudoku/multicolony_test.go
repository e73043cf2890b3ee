package sudoku

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testColony(t *testing.T, typ ColonyType, numAnts int) *colony {
	t.Helper()
	col := &colony{typ: typ, tau0: 1.0 / 81, q0: 0.9, rho: 0.9}
	if typ == ColonyMMAS {
		col.rho = mmasRho
		col.refreshBounds(col.tau0, 9)
	}
	col.initPheromone(81, 9)
	col.ants = make([]*ant, numAnts)
	puzzle := blankBoard(t)
	for i := range col.ants {
		col.ants[i] = newAnt()
		col.ants[i].initSolution(puzzle, 0)
	}
	return col
}

func TestPherAdd(t *testing.T) {
	assert.InDelta(t, 81.0/(81-60), pherAdd(81, 60), 1e-12)
	assert.InDelta(t, 1.0, pherAdd(81, 0), 1e-12)
	assert.True(t, math.IsInf(pherAdd(81, 81), 1), "complete solutions score infinite")
}

func TestACSLocalUpdateContract(t *testing.T) {
	col := testColony(t, ColonyACS, 1)
	col.pher[10][3] = 0.5
	col.localUpdate(10, 3)
	assert.InDelta(t, 0.5*0.9+col.tau0*0.1, col.pher[10][3], 1e-12)
}

func TestMMASNeverLocalUpdates(t *testing.T) {
	col := testColony(t, ColonyMMAS, 1)
	before := col.pher[10][3]
	col.localUpdate(10, 3)
	assert.Equal(t, before, col.pher[10][3])
}

func TestMMASGlobalUpdateStaysInBounds(t *testing.T) {
	col := testColony(t, ColonyMMAS, 1)
	best, err := NewBoard(solvedGrid, nil)
	require.NoError(t, err)
	col.bestPher = 40.5
	col.refreshBounds(col.bestPher, 9)
	col.globalUpdate(best, col.bestPher)
	for i := range col.pher {
		for _, p := range col.pher[i] {
			assert.GreaterOrEqual(t, p, col.tauMin)
			assert.LessOrEqual(t, p, col.tauMax)
		}
	}
}

func TestMMASBoundRefresh(t *testing.T) {
	col := testColony(t, ColonyMMAS, 1)
	col.refreshBounds(2.5, 9)
	assert.InDelta(t, 2.5/mmasRho, col.tauMax, 1e-12)
	assert.InDelta(t, col.tauMax/18, col.tauMin, 1e-12)
}

func TestSolutionEntropyBounds(t *testing.T) {
	// Identical boards: zero entropy.
	col := testColony(t, ColonyACS, 8)
	assert.Equal(t, 0.0, solutionEntropy(col))

	// All-distinct boards: log2(M).
	for i, a := range col.ants {
		a.sol.setCellDirect(0, Singleton(9, i+1))
	}
	assert.InDelta(t, 3.0, solutionEntropy(col), 1e-12)

	// Half and half: 1 bit.
	for i, a := range col.ants {
		a.sol.setCellDirect(0, Singleton(9, 1+i%2))
	}
	assert.InDelta(t, 1.0, solutionEntropy(col), 1e-12)
}

func TestCooperativeGameConservesPayoff(t *testing.T) {
	m := NewMultiColonyAntSystem(MultiColonyConfig{
		NumColonies: 3, NumACS: 3, AntsPerColony: 4,
		Pher0: 1.0 / 81, Q0: 0.9, Rho: 0.9,
	})
	puzzle := blankBoard(t)
	m.setupColonies(puzzle)

	entropies := []float64{2.0, 1.0, 0.5}
	total := 0.0
	for c, col := range m.colonies {
		col.bestVal = 50 + 10*c
		col.bestSol = puzzle.Clone()
		total += pherAdd(81, col.bestVal)
	}
	allocated := m.cooperativeGameAllocate([]int{0, 1, 2}, entropies)

	sum := 0.0
	for _, a := range allocated {
		sum += a
	}
	assert.InDelta(t, total, sum, 1e-9)
}

func TestCooperativeGameUniformWhenNoEntropy(t *testing.T) {
	m := NewMultiColonyAntSystem(MultiColonyConfig{
		NumColonies: 2, NumACS: 2, AntsPerColony: 4,
		Pher0: 1.0 / 81, Q0: 0.9, Rho: 0.9,
	})
	puzzle := blankBoard(t)
	m.setupColonies(puzzle)
	for _, col := range m.colonies {
		col.bestVal = 40
		col.bestSol = puzzle.Clone()
	}
	allocated := m.cooperativeGameAllocate([]int{0, 1}, []float64{0, 0})
	assert.InDelta(t, allocated[0], allocated[1], 1e-12)
}

func TestPheromoneFusionMixesEntrywise(t *testing.T) {
	m := NewMultiColonyAntSystem(MultiColonyConfig{
		NumColonies: 2, NumACS: 1, AntsPerColony: 4,
		Pher0: 1.0 / 81, Q0: 0.9, Rho: 0.9,
	})
	puzzle := blankBoard(t)
	m.setupColonies(puzzle)

	acs, mmas := m.colonies[0], m.colonies[1]
	acs.pher[0][0] = 0.8
	mmas.pher[0][0] = 0.2
	acs.pher[40][5] = 0.1
	mmas.pher[40][5] = 0.7

	entropies := []float64{1.0, 3.0}
	mix := 1.0 / 4.0
	wantA := (1-mix)*0.8 + mix*0.2
	wantB := (1-mix)*0.1 + mix*0.7

	m.applyPheromoneFusion([]int{0}, 1, entropies)
	assert.InDelta(t, wantA, acs.pher[0][0], 1e-12)
	assert.InDelta(t, wantB, acs.pher[40][5], 1e-12)
	// Source matrix untouched.
	assert.InDelta(t, 0.2, mmas.pher[0][0], 1e-12)
}

func TestPublicPathRecommendation(t *testing.T) {
	m := NewMultiColonyAntSystem(MultiColonyConfig{
		NumColonies: 3, NumACS: 2, AntsPerColony: 4,
		Pher0: 1.0 / 81, Q0: 0.9, Rho: 0.9,
	})
	puzzle := blankBoard(t)
	m.setupColonies(puzzle)

	agreeing, err := NewBoard(solvedGrid, nil)
	require.NoError(t, err)
	// Cell 1 loses consensus; cell 0 agrees across both ACS bests.
	disagreeing := agreeing.Clone()
	disagreeing.setCellDirect(1, NewValueSet(9))

	m.colonies[0].bestSol = agreeing
	m.colonies[1].bestSol = disagreeing
	mmas := m.colonies[2]
	mmas.bestSol = agreeing.Clone()
	mmas.bestPher = 2.0
	mmas.refreshBounds(mmas.bestPher, 9)

	iter := 3
	idx0 := agreeing.Cell(0).Index()
	before := mmas.pher[0][idx0]
	wantRaw := before + publicPathTau(iter, 9)

	m.applyPublicPathRecommendation(iter, []int{0, 1}, 2)

	want := math.Min(math.Max(wantRaw, mmas.tauMin), mmas.tauMax)
	assert.InDelta(t, want, mmas.pher[0][idx0], 1e-12)

	// Cell 1 had no consensus: only clamping may have moved it.
	for i := range mmas.pher {
		for _, p := range mmas.pher[i] {
			assert.GreaterOrEqual(t, p, mmas.tauMin)
			assert.LessOrEqual(t, p, mmas.tauMax)
		}
	}
}

func TestPublicPathTauDecays(t *testing.T) {
	prev := math.Inf(1)
	for iter := 0; iter < 50; iter++ {
		tau := publicPathTau(iter, 9)
		assert.Less(t, tau, prev)
		assert.Greater(t, tau, 0.0)
		prev = tau
	}
	assert.Less(t, publicPathTau(100, 9), 1e-40)
}

func TestMultiColonySolvesEasyPuzzleInstantly(t *testing.T) {
	// The easy grid closes under initial CP, so the very first construction
	// pass completes it.
	b, err := NewBoard(easyPuzzle, nil)
	require.NoError(t, err)
	m := NewMultiColonyAntSystem(MultiColonyConfig{
		NumColonies: 3, NumACS: 2, AntsPerColony: 4,
		Q0: 0.9, Rho: 0.9, Pher0: 1.0 / 81, BestEvap: 0.005,
		ConvThreshold: 0.3, EntropyThreshold: 4.0, Seed: 1,
	})
	require.True(t, m.Solve(b, 5))
	assert.True(t, b.CheckSolution(m.Solution()))
	assert.Equal(t, easySolution, m.Solution().PuzzleString())
}

func TestMultiColonySolvesBlankGrid(t *testing.T) {
	if testing.Short() {
		t.Skip("ACO search in -short mode")
	}
	b, err := NewBoard(strings.Repeat(".", 81), nil)
	require.NoError(t, err)
	m := NewMultiColonyAntSystem(MultiColonyConfig{
		NumColonies: 3, NumACS: 2, AntsPerColony: 4,
		Q0: 0.9, Rho: 0.9, Pher0: 1.0 / 81, BestEvap: 0.005,
		ConvThreshold: 0.3, EntropyThreshold: 4.0, Seed: 42,
	})
	require.True(t, m.Solve(b, 60))
	assert.True(t, b.CheckSolution(m.Solution()))
}
