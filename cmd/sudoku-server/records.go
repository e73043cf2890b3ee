package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
)

type SolveRecordFilters struct {
	Username  *string `schema:"username"`
	Alg       *int    `schema:"alg"`
	BoardSize *int    `schema:"board_size"`
}

func (f SolveRecordFilters) WhereClause() (string, pgx.NamedArgs) {
	args := pgx.NamedArgs{}
	whereClauses := []string{}
	if f.Username != nil {
		args["username"] = f.Username
		whereClauses = append(whereClauses, "username = @username")
	}
	if f.Alg != nil {
		args["alg"] = f.Alg
		whereClauses = append(whereClauses, "alg = @alg")
	}
	if f.BoardSize != nil {
		args["boardSize"] = f.BoardSize
		whereClauses = append(whereClauses, "board_size = @boardSize")
	}
	if len(whereClauses) == 0 {
		return "", args
	}
	return strings.Join(whereClauses, " and "), args
}

// getSolveRecords returns the fastest successful solves, optionally
// filtered.
func getSolveRecords(
	ctx context.Context, filters SolveRecordFilters,
) ([]SolveRecord, error) {
	sql := `
	select
		solve_record_id
		, player_id
		, username
		, puzzle
		, board_size
		, alg
		, num_colonies
		, num_acs
		, n_ants
		, success
		, time_sec
		, iterations
		, created_at
	from solve_record
		left outer join player using (player_id)
	where success = true`

	whereClause, args := filters.WhereClause()
	if whereClause != "" {
		sql += " and " + whereClause
	}
	sql += " order by time_sec limit 100"

	rows, err := pg.db.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[SolveRecord])
}

func handleGetRecords(w http.ResponseWriter, r *http.Request) {
	var filters SolveRecordFilters
	if err := dec.Decode(&filters, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	records, err := getSolveRecords(r.Context(), filters)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, records); err != nil {
		log.Error(err)
	}
}

func handleGetOwnRecords(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ctxPlayerClaims).(*PlayerClaims)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var filters SolveRecordFilters
	if err := dec.Decode(&filters, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	filters.Username = &claims.Username
	records, err := getSolveRecords(r.Context(), filters)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, records); err != nil {
		log.Error(err)
	}
}
