package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dcmaco/sudoku-server/internal/sudoku"
)

type postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dbUrl string) (*postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dbUrl)
	if err != nil {
		return nil, err
	}
	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	return &postgres{db}, nil
}

func (pg *postgres) Ping(ctx context.Context) error {
	return pg.db.Ping(ctx)
}

func (pg *postgres) Close() {
	pg.db.Close()
}

func (pg *postgres) EnsureSchema(ctx context.Context) error {
	_, err := pg.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS player (
			player_id		serial PRIMARY KEY,
			username		text UNIQUE NOT NULL,
			password_hash	bytea NOT NULL
		);
		CREATE TABLE IF NOT EXISTS solve_record (
			solve_record_id	serial PRIMARY KEY,
			player_id		int REFERENCES player,
			puzzle			text NOT NULL,
			board_size		int NOT NULL,
			alg				int NOT NULL,
			num_colonies	int NOT NULL,
			num_acs			int NOT NULL,
			n_ants			int NOT NULL,
			success			boolean NOT NULL,
			time_sec		float8 NOT NULL,
			iterations		int NOT NULL,
			solution		text,
			created_at		timestamptz NOT NULL DEFAULT now()
		);`)
	return err
}

type Player struct {
	PlayerId     int    `json:"player_id"`
	Username     string `json:"username"`
	PasswordHash []byte `json:"-"`
}

func (pg *postgres) CreatePlayer(
	ctx context.Context, username string, passwordHash []byte,
) (*Player, error) {
	var playerId int
	if err := pg.db.QueryRow(ctx, `
		INSERT INTO player (
			username, password_hash
		)
		VALUES (
			@username, @password_hash
		)
		RETURNING player_id`,
		pgx.NamedArgs{
			"username":      username,
			"password_hash": passwordHash,
		}).Scan(&playerId); err != nil {
		return nil, err
	}
	player := &Player{
		PlayerId: playerId,
		Username: username,
	}
	return player, nil
}

func (pg *postgres) GetPlayer(
	ctx context.Context, username string,
) (*Player, error) {
	rows, err := pg.db.Query(ctx, `
		SELECT player_id, username, password_hash
		FROM player
		WHERE username = $1;`,
		username)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Player])
}

// PlayerSolveStats summarizes a player's recorded solves.
type PlayerSolveStats struct {
	Player      PlayerInfo `json:"player"`
	TotalSolves int        `json:"total_solves"`
	Solved      int        `json:"solved"`
	BestTimeSec *float64   `json:"best_time_sec,omitempty"`
}

func (pg *postgres) GetPlayerSolveStats(
	ctx context.Context, playerId int,
) (*PlayerSolveStats, error) {
	var stats PlayerSolveStats
	if err := pg.db.QueryRow(ctx, `
		SELECT
			count(*)
			, count(*) FILTER (WHERE success)
			, min(time_sec) FILTER (WHERE success)
		FROM solve_record
		WHERE player_id = $1;`,
		playerId).Scan(
		&stats.TotalSolves, &stats.Solved, &stats.BestTimeSec,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SolveRecord is one stored solve outcome.
type SolveRecord struct {
	SolveRecordId int       `json:"solve_record_id"`
	PlayerId      *int      `json:"-"`
	Username      *string   `json:"username"`
	Puzzle        string    `json:"puzzle"`
	BoardSize     int       `json:"board_size"`
	Alg           int       `json:"alg"`
	NumColonies   int       `json:"num_colonies"`
	NumAcs        int       `json:"num_acs"`
	NAnts         int       `json:"n_ants"`
	Success       bool      `json:"success"`
	TimeSec       float64   `json:"time_sec"`
	Iterations    int       `json:"iterations"`
	CreatedAt     time.Time `json:"created_at"`
}

func (pg *postgres) InsertSolveRecord(
	ctx context.Context,
	playerId *int,
	puzzle string,
	boardSize int,
	p sudoku.SolverParams,
	res sudoku.SolverResult,
	solution string,
) error {
	_, err := pg.db.Exec(ctx, `
		INSERT INTO solve_record (
			player_id, puzzle, board_size, alg, num_colonies, num_acs,
			n_ants, success, time_sec, iterations, solution
		)
		VALUES (
			@player_id, @puzzle, @board_size, @alg, @num_colonies, @num_acs,
			@n_ants, @success, @time_sec, @iterations, @solution
		);`,
		pgx.NamedArgs{
			"player_id":    playerId,
			"puzzle":       puzzle,
			"board_size":   boardSize,
			"alg":          p.Alg,
			"num_colonies": p.NumColonies,
			"num_acs":      p.NumACS,
			"n_ants":       p.NAnts,
			"success":      res.Success,
			"time_sec":     res.TimeSec,
			"iterations":   res.Iterations,
			"solution":     solution,
		})
	return err
}
