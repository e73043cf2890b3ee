package sudoku

import "fmt"

// Solver is the contract shared by every engine variant. Solve blocks until
// the puzzle is solved or maxTime seconds have elapsed. Solution returns the
// best board found; the ant-system drivers keep one even when unsolved, while
// BacktrackSearch returns nil unless Solve succeeded.
type Solver interface {
	Solve(puzzle *Board, maxTime float64) bool
	Solution() *Board
	SolutionTime() float64
	Iterations() int
}

// Algorithm selectors, matching the historical CLI numbering.
const (
	AlgACS        = 0
	AlgMultiColony = 2
)

// SolverParams carries everything a front-end can configure. NAnts and
// NumColonies at zero or below fall back to the per-algorithm defaults and a
// Timeout below 1 is raised to 1; the other fields are used as given.
type SolverParams struct {
	Alg         int     `json:"alg" schema:"alg"`
	Timeout     int     `json:"timeout" schema:"timeout"`
	NAnts       int     `json:"n_ants" schema:"n_ants"`
	NumColonies int     `json:"num_colonies" schema:"num_colonies"`
	NumACS      int     `json:"num_acs" schema:"num_acs"`
	Q0          float64 `json:"q0" schema:"q0"`
	Rho         float64 `json:"rho" schema:"rho"`
	Evap        float64 `json:"evap" schema:"evap"`
	ConvThreshold    float64 `json:"conv_threshold" schema:"conv_threshold"`
	EntropyThreshold float64 `json:"entropy_threshold" schema:"entropy_threshold"`
	Seed        uint64  `json:"seed,omitempty" schema:"seed"`
	ACSOnly     bool    `json:"acs_only,omitempty" schema:"acs_only"`
	ShowInitial bool    `json:"show_initial,omitempty" schema:"show_initial"`

	// Progress receives (iteration, globalBestVal) at every timeout poll of
	// the ant-system drivers. Not serialized.
	Progress func(iter, bestVal int) `json:"-" schema:"-"`
}

// DefaultSolverParams are the published DCM-ACO defaults.
func DefaultSolverParams() SolverParams {
	return SolverParams{
		Alg:              AlgMultiColony,
		Timeout:          10,
		NAnts:            -1,
		NumColonies:      -1,
		NumACS:           2,
		Q0:               0.9,
		Rho:              0.9,
		Evap:             0.005,
		ConvThreshold:    0.3,
		EntropyThreshold: 4.0,
	}
}

// SolverResult is what every front-end reports back.
type SolverResult struct {
	Success      bool    `json:"success"`
	TimeSec      float64 `json:"time_sec"`
	SolvedPretty string  `json:"solution,omitempty"`
	Error        string  `json:"error,omitempty"`

	Iterations   int     `json:"iterations,omitempty"`
	InitialGrid  string  `json:"initial_grid,omitempty"`
	CpInitialSec float64 `json:"cp_initial_sec"`
	CpAntSec     float64 `json:"cp_ant_sec"`
	CpCommits    int64   `json:"cp_commits"`

	CoopGameSec   float64 `json:"coop_game_sec,omitempty"`
	FusionSec     float64 `json:"fusion_sec,omitempty"`
	PublicPathSec float64 `json:"public_path_sec,omitempty"`
}

// SolveSudoku is the solver façade consumed by the CLI and the service. Any
// panic inside the engine is reported as a generic error rather than taking
// the caller down.
func SolveSudoku(puzzle string, p SolverParams) (result SolverResult) {
	defer func() {
		if r := recover(); r != nil {
			result = SolverResult{Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	stats := &CpStats{}
	board, err := NewBoard(puzzle, stats)
	if err != nil {
		return SolverResult{Error: err.Error()}
	}

	if p.Timeout < 1 {
		p.Timeout = 1
	}
	nAnts, colonies := p.NAnts, p.NumColonies
	if nAnts <= 0 {
		if p.Alg == AlgMultiColony {
			nAnts = 4
		} else {
			nAnts = 12
		}
	}
	if colonies <= 0 {
		if p.Alg == AlgMultiColony {
			colonies = 3
		} else {
			colonies = 1
		}
	}
	pher0 := 1 / float64(board.CellCount())

	var solver Solver
	switch p.Alg {
	case AlgACS:
		acs := NewAntSystem(nAnts, p.Q0, p.Rho, pher0, p.Evap, p.Seed, stats)
		acs.cfg.Progress = p.Progress
		solver = acs
	case AlgMultiColony:
		solver = NewMultiColonyAntSystem(MultiColonyConfig{
			NumColonies:      colonies,
			NumACS:           p.NumACS,
			AntsPerColony:    nAnts,
			Q0:               p.Q0,
			Rho:              p.Rho,
			Pher0:            pher0,
			BestEvap:         p.Evap,
			ConvThreshold:    p.ConvThreshold,
			EntropyThreshold: p.EntropyThreshold,
			ACSOnly:          p.ACSOnly,
			Seed:             p.Seed,
			Progress:         p.Progress,
			Stats:            stats,
		})
	default:
		solver = NewBacktrackSearch(stats)
	}

	ok := solver.Solve(board, float64(p.Timeout))

	result = SolverResult{
		Success:      ok,
		TimeSec:      solver.SolutionTime(),
		Iterations:   solver.Iterations(),
		CpInitialSec: stats.InitialCPSeconds(),
		CpAntSec:     stats.AntCPSeconds(),
		CpCommits:    stats.CommitCount(),
	}
	if p.ShowInitial {
		result.InitialGrid = board.AsString(false, true)
	}
	if m, isMulti := solver.(*MultiColonyAntSystem); isMulti {
		result.CoopGameSec = m.CoopGameSeconds()
		result.FusionSec = m.FusionSeconds()
		result.PublicPathSec = m.PublicPathSeconds()
	}

	if ok {
		solution := solver.Solution()
		if !board.CheckSolution(solution) {
			result.Success = false
			result.Error = "Solution not valid."
		} else {
			result.SolvedPretty = solution.AsString(true, false)
		}
	} else if result.Error == "" {
		result.Error = "no solution found within the time budget"
	}
	return result
}
