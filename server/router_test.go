package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"tbge/server/store"
)

// memStore keeps games in memory.
type memStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]store.Game
	turns map[uuid.UUID][]store.Turn
	ended map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		games: map[uuid.UUID]store.Game{},
		turns: map[uuid.UUID][]store.Turn{},
		ended: map[uuid.UUID]bool{},
	}
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) CreateGame(_ context.Context, id uuid.UUID, seed int64, players []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[id] = store.Game{ID: id, Seed: seed, Players: players, CreatedAt: time.Now()}
	return nil
}

func (m *memStore) AppendTurn(_ context.Context, id uuid.UUID, t store.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[id] = append(m.turns[id], t)
	return nil
}

func (m *memStore) EndGame(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended[id] = true
	return nil
}

func (m *memStore) GetGame(_ context.Context, id uuid.UUID) (store.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return store.Game{}, store.ErrNotFound
	}
	return g, nil
}

func (m *memStore) Turns(_ context.Context, id uuid.UUID) ([]store.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.Turn{}, m.turns[id]...), nil
}

func (m *memStore) RecentGames(context.Context, int) ([]store.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Game
	for _, g := range m.games {
		out = append(out, g)
	}
	return out, nil
}

var testPlayers = []string{"north", "east", "south", "west"}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthWithoutDB(t *testing.T) {
	h := Router(nil, testPlayers, 13, nil)
	rec := get(t, h, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["db"] != "disabled" {
		t.Fatalf("db = %v", out["db"])
	}
}

func TestGamesNeedDB(t *testing.T) {
	h := Router(nil, testPlayers, 13, nil)
	if rec := post(t, h, "/api/games", `{}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
}

func TestDiffEndpoint(t *testing.T) {
	h := Router(nil, testPlayers, 13, nil)
	tests := []struct {
		body, kind, act, result, code string
	}{
		{`{"from":["As"],"to":["As"]}`, "nothing", "Nothing", `["As"]`, ""},
		{`{"from":["As"],"to":["As","2h"]}`, "pop", "Pop A♠ from [A♠]", `[]`, ""},
		{`{"from":["As"],"to":["Kd"]}`, "push", "Add K♦ to [A♠]", `["As","Kd"]`, ""},
		{`{"from":[],"to":["Kd"]}`, "pop", "Pop from []", "", "EMPTY_RESOURCE"},
	}
	for _, tt := range tests {
		rec := post(t, h, "/api/diff", tt.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tt.body, rec.Code)
		}
		var out struct {
			Kind   string          `json:"kind"`
			Act    string          `json:"act"`
			Result json.RawMessage `json:"result"`
			Code   string          `json:"code"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatal(err)
		}
		if out.Kind != tt.kind || out.Act != tt.act || out.Code != tt.code {
			t.Fatalf("%s: got %+v", tt.body, out)
		}
		if tt.result != "" {
			var compact bytes.Buffer
			if err := json.Compact(&compact, out.Result); err != nil {
				t.Fatal(err)
			}
			if compact.String() != tt.result {
				t.Fatalf("%s: result %s, want %s", tt.body, compact.String(), tt.result)
			}
		}
	}
}

func TestDiffBadCard(t *testing.T) {
	h := Router(nil, testPlayers, 13, nil)
	if rec := post(t, h, "/api/diff", `{"from":["Zz"],"to":[]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func createTestGame(t *testing.T, h http.Handler, body string) createResponse {
	t.Helper()
	rec := post(t, h, "/api/games", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body.String())
	}
	var out createResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestCreateAndFetchGame(t *testing.T) {
	db := newMemStore()
	h := Router(db, testPlayers, 13, nil)

	out := createTestGame(t, h, `{"seed":7}`)
	if out.Turns != 13 || out.Seed != 7 {
		t.Fatalf("unexpected game %+v", out)
	}
	if len(out.Scores) != 4 || !strings.Contains(out.Scores["north"], "13 cards") {
		t.Fatalf("scores = %v", out.Scores)
	}
	if !db.ended[out.ID] {
		t.Fatalf("game not marked ended")
	}

	rec := get(t, h, "/api/games/"+out.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	var got struct {
		Game  store.Game   `json:"game"`
		Turns []store.Turn `json:"turns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Game.ID != out.ID || len(got.Turns) != 13 {
		t.Fatalf("got game %v with %d turns", got.Game.ID, len(got.Turns))
	}
	first := got.Turns[0]
	if len(first.Acts) != 5 || len(first.States) != 5 || first.Move != "Hit" {
		t.Fatalf("first turn = %+v", first)
	}
	for i, d := range first.States[:4] {
		if d.Len() != 1 {
			t.Fatalf("hand %d after first hit = %s", i, d)
		}
	}
	if rest := first.States[4]; rest.Len() != 48 {
		t.Fatalf("stack after first hit has %d cards", rest.Len())
	}
}

func TestCreateGameTwoPlayers(t *testing.T) {
	h := Router(newMemStore(), testPlayers, 3, nil)
	out := createTestGame(t, h, `{"seed":1,"players":["ann","bob"]}`)
	if out.Turns != 3 || out.Stack.Len() != 52-6 {
		t.Fatalf("unexpected game %+v", out)
	}
}

func TestCreateGamePaddedPlayers(t *testing.T) {
	db := newMemStore()
	h := Router(db, testPlayers, 4, nil)
	out := createTestGame(t, h, `{"seed":7,"players":[" alice","bob","carol","dave "]}`)
	if out.Turns != 4 || len(out.Scores) != 4 {
		t.Fatalf("unexpected game %+v", out)
	}
	if !strings.Contains(out.Scores["alice"], "4 cards") {
		t.Fatalf("scores = %v", out.Scores)
	}
	if !db.ended[out.ID] {
		t.Fatalf("game not marked ended")
	}
}

func TestCreateGameDuplicatePlayers(t *testing.T) {
	h := Router(newMemStore(), testPlayers, 13, nil)
	if rec := post(t, h, "/api/games", `{"players":["ann","ann"]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestGetGameErrors(t *testing.T) {
	h := Router(newMemStore(), testPlayers, 13, nil)
	if rec := get(t, h, "/api/games/nope"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status %d", rec.Code)
	}
	if rec := get(t, h, "/api/games/"+uuid.NewString()); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status %d", rec.Code)
	}
}

func TestStreamGame(t *testing.T) {
	db := newMemStore()
	h := Router(db, testPlayers, 13, nil)
	out := createTestGame(t, h, `{"seed":3}`)

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/games/" + out.ID.String() + "/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var n int
	for {
		var turn store.Turn
		err := wsjson.Read(ctx, conn, &turn)
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			break
		}
		if err != nil {
			t.Fatalf("read after %d turns: %v", n, err)
		}
		n++
		if turn.Turn != n {
			t.Fatalf("turn %d arrived as message %d", turn.Turn, n)
		}
	}
	if n != 13 {
		t.Fatalf("streamed %d turns, want 13", n)
	}
}
