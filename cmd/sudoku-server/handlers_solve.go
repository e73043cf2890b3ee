package main

import (
	"math"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/dcmaco/sudoku-server/internal/sudoku"
)

var dec = schema.NewDecoder()

func init() {
	dec.IgnoreUnknownKeys(true)
}

type PuzzleParams struct {
	Puzzle string `schema:"puzzle,required"`
}

// solveParams merges the request's overrides into the published defaults and
// applies the server-side caps.
func solveParams(r *http.Request) (string, sudoku.SolverParams, error) {
	query := r.URL.Query()
	var puzzleParams PuzzleParams
	if err := dec.Decode(&puzzleParams, query); err != nil {
		return "", sudoku.SolverParams{}, err
	}
	params := sudoku.DefaultSolverParams()
	if err := dec.Decode(&params, query); err != nil {
		return "", sudoku.SolverParams{}, err
	}
	if max := config.Solver.MaxTimeout; max > 0 && params.Timeout > max {
		params.Timeout = max
	}
	return puzzleParams.Puzzle, params, nil
}

func recordSolve(r *http.Request, puzzle string, params sudoku.SolverParams, res sudoku.SolverResult) {
	var playerId *int
	if claims, ok := r.Context().Value(ctxPlayerClaims).(*PlayerClaims); ok {
		playerId = &claims.PlayerId
	}
	boardSize := int(math.Sqrt(float64(len(puzzle))))
	err := pg.InsertSolveRecord(
		r.Context(), playerId, puzzle, boardSize, params, res, res.SolvedPretty,
	)
	if err != nil {
		log.Error("unable to insert solve record: ", err)
	}
}

func handleSolve(w http.ResponseWriter, r *http.Request) {
	puzzle, params, err := solveParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
		return
	}

	if err := solveSem.Acquire(r.Context(), 1); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	res := sudoku.SolveSudoku(puzzle, params)
	solveSem.Release(1)

	recordSolve(r, puzzle, params, res)

	if _, err := sendJSON(w, res); err != nil {
		log.Error(err)
	}
}
