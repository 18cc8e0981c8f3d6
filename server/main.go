package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	mrand "math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"

	"tbge/server/config"
	"tbge/server/engine"
	"tbge/server/game"
	"tbge/server/replay"
	"tbge/server/store"
)

//
// ===== pretty printing =====
//

var useColor bool
var debugState bool

const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colDim    = "\033[2m"
	colGreen  = "\033[32m"
	colRed    = "\033[31m"
	colYellow = "\033[33m"
	colCyan   = "\033[36m"
)

func c(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + colReset
}
func bold(s string) string { return c(colBold, s) }
func dim(s string) string  { return c(colDim, s) }
func good(s string) string { return c(colGreen, s) }
func warn(s string) string { return c(colYellow, s) }
func bad(s string) string  { return c(colRed, s) }
func cyan(s string) string { return c(colCyan, s) }
func section(title string) { fmt.Printf("\n%s %s %s\n", dim("──"), bold(title), dim("──")) }
func sub(title string)     { fmt.Printf("%s %s\n", dim("•"), bold(title)) }

var stopFlag atomic.Bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	useColor = cfg.Color()
	debugState = cfg.Debug

	var migrate, demo bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--demo":
			demo = true
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	var deadline time.Time
	if cfg.MaxSeconds > 0 {
		deadline = time.Now().Add(time.Duration(cfg.MaxSeconds) * time.Second)
	}
	checkStop := func() bool {
		select {
		case <-ctx.Done():
			stopFlag.Store(true)
		default:
		}
		if stopFlag.Load() {
			return true
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			stopFlag.Store(true)
			return true
		}
		if cfg.StopFile != "" {
			if _, err := os.Stat(cfg.StopFile); err == nil {
				stopFlag.Store(true)
				return true
			}
		}
		return false
	}

	if demo {
		var db *store.DB
		if cfg.DatabaseURL != "" {
			p, err := store.Open(cfg.DatabaseURL)
			if err != nil {
				log.Printf("DB disabled (open failed): %v", err)
			} else {
				db = p
				defer db.Close(context.Background())
				if cfg.AutoMigrate {
					if err := store.Migrate(context.Background(), db); err != nil {
						log.Printf("migrate failed (continuing without DB): %v", err)
						db = nil
					}
				}
			}
		}
		var gs GameStore
		if db != nil {
			gs = db
		}
		if err := runDemo(ctx, cfg, gs, checkStop); err != nil {
			log.Fatal(err)
		}
		return
	}

	// server
	if cfg.DatabaseURL == "" && migrate {
		log.Fatal("DATABASE_URL is required for --migrate")
	}
	var gs GameStore
	if cfg.DatabaseURL != "" {
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close(context.Background())

		if migrate || cfg.AutoMigrate {
			if err := store.Migrate(context.Background(), db); err != nil {
				log.Fatal(err)
			}
			log.Println("migrated")
		}
		if migrate {
			return
		}
		gs = db
	} else {
		log.Printf("DATABASE_URL not set: game endpoints disabled")
	}

	r := Router(gs, cfg.Players, cfg.MaxTurns, cfg.OriginAllowlist)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadTimeout: 15 * time.Second, WriteTimeout: 45 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
	}()
	log.Printf("listening on http://localhost:%s (Ctrl+C to stop)", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func watchSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	stopFlag.Store(true)
	cancel()
}

//
// ===== demo =====
//

// runDemo plays cfg.DemoGames table games and prints every turn.
func runDemo(ctx context.Context, cfg config.Config, db GameStore, checkStop func() bool) error {
	seeds := newSeedStream(deckSeed(cfg))
	totals := map[string]*PlayerStats{}
	ladder := Ladder{}
	games := max(cfg.DemoGames, 1)

	played := 0
	for i := 0; i < games; i++ {
		if checkStop() {
			log.Printf("stopping after %d games", played)
			break
		}
		seed := int64(seeds.next() >> 1)
		if cfg.DeckSeed != 0 && i == 0 {
			seed = cfg.DeckSeed
		}
		section(fmt.Sprintf("Game %d/%d  %s", i+1, games, dim(fmt.Sprintf("seed=%d", seed))))

		s, err := playGame(ctx, db, seed, cfg.Players, cfg.MaxTurns, printTurn)
		if err != nil {
			if s != nil {
				fmt.Println(bad("aborted: ") + err.Error())
			}
			return err
		}
		played++
		printSummary(s, db != nil)
		tally(totals, s)
		ladder.Rate(s)
	}
	if played > 1 {
		printTotals(totals, ladder)
	}
	return nil
}

func printTurn(t game.Turn[engine.Deck]) {
	sub(fmt.Sprintf("Turn %d  %s  %s", t.Number, cyan(t.Player), t.Move))
	for i, a := range t.Acts {
		line := fmt.Sprintf("  %d. %s", i+1, a)
		if i == len(t.Acts)-1 {
			line = dim(line)
		}
		fmt.Println(line)
	}
	if debugState && len(t.Results) > 0 {
		fmt.Println(dim("  stack " + t.Results[len(t.Results)-1].String()))
	}
}

func printSummary(s *session, persisted bool) {
	sub("Result")
	fmt.Printf("  turns=%d  acts: %s\n", s.Turns, s.Mix)
	fmt.Printf("  stack left: %s\n", s.Stack)

	if debugState {
		trail, err := replay.Trail(s.Game)
		if err != nil {
			fmt.Println(warn("  replay: ") + err.Error())
		}
		for i, ch := range trail {
			parts := make([]string, len(ch))
			for j, x := range ch {
				parts[j] = x.String()
			}
			fmt.Printf("  %s %s\n", dim(fmt.Sprintf("replay %d:", i+1)), strings.Join(parts, " | "))
		}
	}

	winners := s.Winners()
	for _, p := range s.Game.Players() {
		name := p.Name()
		line := fmt.Sprintf("  %-8s %s", name, s.Scores[name])
		for _, w := range winners {
			if w == name {
				line = good(line + "  ★")
			}
		}
		fmt.Println(line)
	}
	if persisted {
		fmt.Println(dim("  saved as " + s.ID.String()))
	}
}

func printTotals(totals map[string]*PlayerStats, ladder Ladder) {
	section("Totals")
	rng := mrand.New(mrand.NewSource(int64(secureBaseSeed() >> 1)))
	for _, n := range ladder.Standings() {
		p, r := totals[n], ladder[n]
		if p == nil {
			continue
		}
		lo, hi := WilsonCI95(p.Wins, p.Ties, p.Games)
		slo, shi := BootstrapCI95(p.Scores, 1000, rng)
		fmt.Printf("  %-8s %s  wins=%d ties=%d games=%d dealt=%d  win%% CI95=[%.2f, %.2f]  hand=%.0f CI95=[%.0f, %.0f]\n",
			n, cyan(fmt.Sprintf("r=%.0f±%.0f", r.Rating, 2*r.RD)), p.Wins, p.Ties, p.Games, p.Dealt, lo, hi, p.MeanScore(), slo, shi)
	}
}

//
// ===== randomness =====
//

type seedStream struct{ state uint64 }

func newSeedStream(base uint64) seedStream { return seedStream{state: base} }
func (s *seedStream) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}
func secureBaseSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return binary.LittleEndian.Uint64(b[:]) ^ uint64(time.Now().UnixNano()) ^ uint64(os.Getpid())
	}
	return uint64(time.Now().UnixNano()) ^ 0xA5A5A5A5A5A5A5A5
}
func deckSeed(cfg config.Config) uint64 {
	if cfg.DeckSeed != 0 {
		return uint64(cfg.DeckSeed)
	}
	return secureBaseSeed()
}
