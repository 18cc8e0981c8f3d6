package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tbge/server/engine"
)

//go:embed schema.sql
var schema embed.FS

// ErrNotFound is returned when a game id is unknown.
var ErrNotFound = errors.New("not found")

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

type Game struct {
	ID        uuid.UUID  `json:"id"`
	Seed      int64      `json:"seed"`
	Players   []string   `json:"players"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// Turn is one applied move: the rendered acts and the table states after it.
type Turn struct {
	Turn      int           `json:"turn"`
	Player    string        `json:"player"`
	Move      string        `json:"move"`
	Acts      []string      `json:"acts"`
	States    []engine.Deck `json:"states"`
	CreatedAt time.Time     `json:"created_at"`
}

/* -----------------------------
   Write helpers
------------------------------*/

func (db *DB) CreateGame(ctx context.Context, id uuid.UUID, seed int64, players []string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO games(id, seed, players)
		VALUES ($1::uuid, $2, $3)
	`, id.String(), seed, players)
	return err
}

// AppendTurn stores a turn and its act log atomically.
func (db *DB) AppendTurn(ctx context.Context, id uuid.UUID, t Turn) error {
	states, err := json.Marshal(t.States)
	if err != nil {
		return fmt.Errorf("encode states: %w", err)
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO turns(game_id, turn, player, move, states)
		VALUES ($1::uuid, $2, $3, $4, $5::jsonb)
	`, id.String(), t.Turn, t.Player, t.Move, string(states)); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for i, a := range t.Acts {
		batch.Queue(`INSERT INTO act_log(game_id, turn, seq, act) VALUES ($1::uuid, $2, $3, $4)`,
			id.String(), t.Turn, i, a)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (db *DB) EndGame(ctx context.Context, id uuid.UUID) error {
	_, err := db.Exec(ctx, `UPDATE games SET ended_at = now() WHERE id = $1::uuid`, id.String())
	return err
}

/* -----------------------------
   Read helpers
------------------------------*/

func (db *DB) GetGame(ctx context.Context, id uuid.UUID) (Game, error) {
	var (
		g   Game
		sid string
	)
	err := db.QueryRow(ctx, `
		SELECT id::text, seed, players, created_at, ended_at
		  FROM games
		 WHERE id = $1::uuid
	`, id.String()).Scan(&sid, &g.Seed, &g.Players, &g.CreatedAt, &g.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Game{}, ErrNotFound
		}
		return Game{}, err
	}
	g.ID, err = uuid.Parse(sid)
	return g, err
}

func (db *DB) RecentGames(ctx context.Context, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(ctx, `
		SELECT id::text, seed, players, created_at, ended_at
		  FROM games
		 ORDER BY created_at DESC
		 LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Game
	for rows.Next() {
		var (
			g   Game
			sid string
		)
		if err := rows.Scan(&sid, &g.Seed, &g.Players, &g.CreatedAt, &g.EndedAt); err != nil {
			return nil, err
		}
		if g.ID, err = uuid.Parse(sid); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Turns returns every stored turn of a game in order, with its acts.
func (db *DB) Turns(ctx context.Context, id uuid.UUID) ([]Turn, error) {
	rows, err := db.Query(ctx, `
		SELECT turn, player, move, states, created_at
		  FROM turns
		 WHERE game_id = $1::uuid
		 ORDER BY turn
	`, id.String())
	if err != nil {
		return nil, err
	}
	var (
		out   []Turn
		index = map[int]int{}
	)
	for rows.Next() {
		var (
			t   Turn
			raw []byte
		)
		if err := rows.Scan(&t.Turn, &t.Player, &t.Move, &raw, &t.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		if err := json.Unmarshal(raw, &t.States); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode states of turn %d: %w", t.Turn, err)
		}
		index[t.Turn] = len(out)
		out = append(out, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	acts, err := db.Query(ctx, `
		SELECT turn, act
		  FROM act_log
		 WHERE game_id = $1::uuid
		 ORDER BY turn, seq
	`, id.String())
	if err != nil {
		return nil, err
	}
	defer acts.Close()
	for acts.Next() {
		var (
			turn int
			act  string
		)
		if err := acts.Scan(&turn, &act); err != nil {
			return nil, err
		}
		if i, ok := index[turn]; ok {
			out[i].Acts = append(out[i].Acts, act)
		}
	}
	return out, acts.Err()
}
