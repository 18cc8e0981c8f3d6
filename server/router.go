// server/router.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"tbge/server/engine"
	"tbge/server/game"
	"tbge/server/store"
)

// GameStore is the persistence the HTTP API needs; *store.DB implements it.
type GameStore interface {
	Ping(ctx context.Context) error
	CreateGame(ctx context.Context, id uuid.UUID, seed int64, players []string) error
	AppendTurn(ctx context.Context, id uuid.UUID, t store.Turn) error
	EndGame(ctx context.Context, id uuid.UUID) error
	GetGame(ctx context.Context, id uuid.UUID) (store.Game, error)
	Turns(ctx context.Context, id uuid.UUID) ([]store.Turn, error)
	RecentGames(ctx context.Context, limit int) ([]store.Game, error)
}

type api struct {
	db       GameStore // nil when running without a database
	players  []string
	maxTurns int
	origins  []string
}

func Router(db GameStore, players []string, maxTurns int, origins []string) http.Handler {
	a := &api{db: db, players: players, maxTurns: maxTurns, origins: origins}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", a.health)
	r.Post("/api/diff", a.diff)
	r.Route("/api/games", func(r chi.Router) {
		r.Use(a.requireDB)
		r.Get("/", a.listGames)
		r.Post("/", a.createGame)
		r.Get("/{id}", a.getGame)
		r.Get("/{id}/stream", a.streamGame)
	})
	return r
}

func (a *api) requireDB(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.db == nil {
			http.Error(w, "storage disabled (DATABASE_URL not set)", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"ok": true, "db": "disabled"}
	if a.db != nil {
		ctx, cancel := withTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.db.Ping(ctx); err != nil {
			out["db"] = err.Error()
		} else {
			out["db"] = "ok"
		}
	}
	writeJSON(w, out)
}

type diffRequest struct {
	From engine.Deck `json:"from"`
	To   engine.Deck `json:"to"`
}

type diffResponse struct {
	Kind   engine.ActKind `json:"kind"`
	Act    string         `json:"act"`
	Result *engine.Deck   `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
	Code   game.Code      `json:"code,omitempty"`
}

// diff answers "which act separates these two decks" and what applying it gives.
func (a *api) diff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	act := req.From.Diff(req.To)
	resp := diffResponse{Act: act.String()}
	if ea, ok := act.(*engine.Act); ok {
		resp.Kind = ea.Kind
	}
	res, err := act.Effect()
	if err != nil {
		resp.Error = err.Error()
		resp.Code = game.CodeOf(err)
	} else {
		resp.Result = &res
	}
	writeJSON(w, resp)
}

type createRequest struct {
	Seed     int64    `json:"seed"`
	Players  []string `json:"players"`
	MaxTurns int      `json:"max_turns"`
}

type createResponse struct {
	ID     uuid.UUID         `json:"id"`
	Seed   int64             `json:"seed"`
	Turns  int               `json:"turns"`
	Mix    any               `json:"act_mix"`
	Scores map[string]string `json:"scores"`
	Stack  engine.Deck       `json:"stack"`
}

func (a *api) createGame(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if len(req.Players) == 0 {
		req.Players = a.players
	}
	if req.MaxTurns <= 0 {
		req.MaxTurns = a.maxTurns
	}
	if req.Seed == 0 {
		req.Seed = int64(secureBaseSeed() >> 1)
	}

	res, err := playGame(r.Context(), a.db, req.Seed, req.Players, req.MaxTurns, nil)
	if err != nil {
		status := http.StatusInternalServerError
		switch game.CodeOf(err) {
		case game.CodeInvalidMove, game.CodeShuffleFailure, game.CodeInsufficientResources:
			status = http.StatusUnprocessableEntity
		}
		if errors.Is(err, errBadPlayers) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, createResponse{
		ID:     res.ID,
		Seed:   req.Seed,
		Turns:  res.Turns,
		Mix:    res.Mix,
		Scores: res.Scores,
		Stack:  res.Stack,
	})
}

func (a *api) listGames(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	games, err := a.db.RecentGames(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"games": games})
}

func (a *api) lookup(w http.ResponseWriter, r *http.Request) (store.Game, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad game id", http.StatusBadRequest)
		return store.Game{}, false
	}
	g, err := a.db.GetGame(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "no such game", http.StatusNotFound)
		return store.Game{}, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return store.Game{}, false
	}
	return g, true
}

func (a *api) getGame(w http.ResponseWriter, r *http.Request) {
	g, ok := a.lookup(w, r)
	if !ok {
		return
	}
	turns, err := a.db.Turns(r.Context(), g.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"game": g, "turns": turns})
}

// streamGame replays the stored turn log over a websocket, one message per turn.
func (a *api) streamGame(w http.ResponseWriter, r *http.Request) {
	g, ok := a.lookup(w, r)
	if !ok {
		return
	}
	turns, err := a.db.Turns(r.Context(), g.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	opts := &websocket.AcceptOptions{OriginPatterns: a.origins}
	if len(a.origins) == 0 {
		opts.InsecureSkipVerify = true
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		log.Printf("stream %s: accept: %v", g.ID, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "stream aborted")

	ctx, cancel := withTimeout(r.Context(), 30*time.Second)
	defer cancel()
	for _, t := range turns {
		if err := wsjson.Write(ctx, c, t); err != nil {
			log.Printf("stream %s: turn %d: %v", g.ID, t.Turn, err)
			return
		}
	}
	c.Close(websocket.StatusNormalClosure, "end of game "+strings.ToLower(g.ID.String()))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
