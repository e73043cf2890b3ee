package main

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dcmaco/sudoku-server/internal/sudoku"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		log.Debug("\tws origin: ", r.Host)
		return true
	},
}

type wsSolveRequest struct {
	Puzzle string `json:"puzzle"`
	sudoku.SolverParams
}

type wsProgressFrame struct {
	Type    string `json:"type"` // "progress"
	Iter    int    `json:"iter"`
	BestVal int    `json:"best_val"`
}

type wsResultFrame struct {
	Type string `json:"type"` // "result"
	sudoku.SolverResult
}

// handleSolveWs runs one solve per incoming request message, streaming a
// progress frame at every driver poll and a final result frame.
func handleSolveWs(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("upgrade: ", err)
		return
	}
	defer c.Close()

	for {
		// Absent fields keep the published defaults.
		req := wsSolveRequest{SolverParams: sudoku.DefaultSolverParams()}
		if err := c.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Warn("read: ", err)
			}
			break
		}

		params := req.SolverParams
		if max := config.Solver.MaxTimeout; max > 0 && params.Timeout > max {
			params.Timeout = max
		}
		// The solve runs on this goroutine, so the callback's writes do not
		// race with the final WriteJSON below.
		params.Progress = func(iter, bestVal int) {
			frame := wsProgressFrame{Type: "progress", Iter: iter, BestVal: bestVal}
			if err := c.WriteJSON(frame); err != nil {
				log.Error("write progress: ", err)
			}
		}

		if err := solveSem.Acquire(r.Context(), 1); err != nil {
			break
		}
		res := sudoku.SolveSudoku(req.Puzzle, params)
		solveSem.Release(1)

		recordSolve(r, req.Puzzle, params, res)

		if err := c.WriteJSON(wsResultFrame{Type: "result", SolverResult: res}); err != nil {
			log.Error("write: ", err)
			break
		}
	}
}
