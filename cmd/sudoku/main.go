package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dcmaco/sudoku-server/internal/sudoku"
)

var (
	alg     = flag.Int("alg", 0, "0 = ACS, 2 = multi-colony DCM-ACO, else backtracking")
	timeout = flag.Int("timeout", 10, "time budget in seconds")
	nAnts   = flag.Int("nAnts", -1, "ants per colony (-1 = per-algorithm default)")
	ants    = flag.Int("ants", -1, "legacy alias for -nAnts")

	numColonies = flag.Int("numColonies", -1, "number of colonies (-1 = per-algorithm default)")
	numACS      = flag.Int("numACS", 2, "how many colonies run ACS; the rest run MMAS")

	q0   = flag.Float64("q0", 0.9, "ACS greedy-choice probability")
	rho  = flag.Float64("rho", 0.9, "ACS global pheromone update rate")
	evap = flag.Float64("evap", 0.005, "best-score evaporation per global update")

	convThresh       = flag.Float64("convThresh", 0.3, "MMAS convergence gate for public-path recommendation")
	entropyThreshold = flag.Float64("entropyThreshold", 4.0, "solution-entropy gate for pheromone fusion")

	puzzle = flag.String("puzzle", "", "one-line puzzle, '.' for blanks")
	file   = flag.String("file", "", "puzzle file (integer format)")
	blank  = flag.Bool("blank", false, "solve an entirely blank grid (requires -order)")
	order  = flag.Int("order", 0, "box order for -blank (3 for a 9x9 grid)")

	seed        = flag.Uint64("seed", 0, "RNG seed, 0 = nondeterministic")
	acsOnly     = flag.Bool("acsonly", false, "ablation: no MMAS colony, last ACS colony plays its role")
	verbose     = flag.Bool("verbose", false, "human-readable output")
	showInitial = flag.Bool("showinitial", false, "print the grid after initial constraint propagation")
)

func puzzleString() (string, error) {
	if *blank && *order != 0 {
		n := *order * *order
		return strings.Repeat(".", n*n), nil
	}
	if *puzzle != "" {
		return *puzzle, nil
	}
	if *file != "" {
		return sudoku.ReadPuzzleFile(*file)
	}
	return "", fmt.Errorf("no puzzle specified")
}

func main() {
	flag.Parse()

	puz, err := puzzleString()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := sudoku.SolverParams{
		Alg:              *alg,
		Timeout:          *timeout,
		NAnts:            *nAnts,
		NumColonies:      *numColonies,
		NumACS:           *numACS,
		Q0:               *q0,
		Rho:              *rho,
		Evap:             *evap,
		ConvThreshold:    *convThresh,
		EntropyThreshold: *entropyThreshold,
		Seed:             *seed,
		ACSOnly:          *acsOnly,
		ShowInitial:      *showInitial,
	}
	if p.NAnts <= 0 {
		p.NAnts = *ants
	}

	res := sudoku.SolveSudoku(puz, p)

	if *showInitial && res.InitialGrid != "" {
		fmt.Println("Initial constrained grid")
		fmt.Println(res.InitialGrid)
	}

	if !*verbose {
		// Contract consumed by the benchmark scripts: first line is 0 on
		// success and 1 on failure, second line is the solve time.
		failed := 0
		if !res.Success {
			failed = 1
		}
		fmt.Println(failed)
		fmt.Println(res.TimeSec)
		return
	}

	if !res.Success {
		fmt.Printf("failed in time %g\n", res.TimeSec)
		if res.Error != "" {
			fmt.Println("Error:", res.Error)
		}
	} else {
		fmt.Println("Solution:")
		fmt.Println(res.SolvedPretty)
		fmt.Printf("solved in %g\n", res.TimeSec)
	}
	fmt.Printf("cp_initial_time: %g\n", res.CpInitialSec)
	fmt.Printf("cp_ant_time: %g\n", res.CpAntSec)
	fmt.Printf("cp_calls: %d\n", res.CpCommits)
	if *alg == sudoku.AlgMultiColony {
		fmt.Printf("dcm_coop_game_time: %g\n", res.CoopGameSec)
		fmt.Printf("dcm_fusion_time: %g\n", res.FusionSec)
		fmt.Printf("dcm_public_path_time: %g\n", res.PublicPathSec)
		fmt.Printf("iterations: %d\n", res.Iterations)
	}
}
