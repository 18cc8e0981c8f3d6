// Package replay turns recorded snapshots back into readable act logs.
package replay

import (
	"fmt"

	"tbge/server/engine"
	"tbge/server/game"
)

// Change is the diff of one component state between two statuses.
type Change struct {
	Index int
	Act   string
}

func (c Change) String() string { return fmt.Sprintf("[%d] %s", c.Index, c.Act) }

// Changes diffs prev and next component by component and reports the ones
// that differ. Statuses with different component counts cannot be compared.
func Changes[S game.State[S]](prev, next game.Status[S]) ([]Change, error) {
	a, b := prev.States(), next.States()
	if len(a) != len(b) {
		return nil, fmt.Errorf("status shapes differ: %d vs %d states", len(a), len(b))
	}
	var out []Change
	for i := range a {
		if a[i].Equal(b[i]) {
			continue
		}
		out = append(out, Change{Index: i, Act: a[i].Diff(b[i]).String()})
	}
	return out, nil
}

// Narrate renders the diff of every consecutive pair of snapshots.
func Narrate[S game.State[S]](snapshots []S) []string {
	if len(snapshots) < 2 {
		return nil
	}
	out := make([]string, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		out = append(out, snapshots[i-1].Diff(snapshots[i]).String())
	}
	return out
}

// Trail collects Changes across a whole game history.
func Trail[S game.State[S]](g *game.Game[S]) ([][]Change, error) {
	var (
		out  [][]Change
		prev game.Status[S]
	)
	for i, st := range g.History() {
		if i > 0 {
			ch, err := Changes(prev, st)
			if err != nil {
				return nil, fmt.Errorf("turn %d: %w", i, err)
			}
			out = append(out, ch)
		}
		prev = st
	}
	return out, nil
}

// Mix counts applied deck acts by kind.
type Mix struct {
	Pop     int `json:"pop_ct"`
	Push    int `json:"push_ct"`
	Nothing int `json:"nothing_ct"`
	Other   int `json:"other_ct"`
}

func (m *Mix) Add(t game.Turn[engine.Deck]) {
	for _, a := range t.Applied {
		act, ok := a.(*engine.Act)
		if !ok {
			m.Other++
			continue
		}
		switch act.Kind {
		case engine.Pop:
			m.Pop++
		case engine.Push:
			m.Push++
		case engine.Nothing:
			m.Nothing++
		default:
			m.Other++
		}
	}
}

func (m Mix) Total() int { return m.Pop + m.Push + m.Nothing + m.Other }

// Pct returns the rounded share of kind in percent.
func (m Mix) Pct(kind engine.ActKind) int {
	total := m.Total()
	if total == 0 {
		return 0
	}
	var n int
	switch kind {
	case engine.Pop:
		n = m.Pop
	case engine.Push:
		n = m.Push
	case engine.Nothing:
		n = m.Nothing
	}
	return (100*n + total/2) / total
}

func (m Mix) String() string {
	return fmt.Sprintf("push=%d (%d%%) pop=%d nothing=%d (%d%%)",
		m.Push, m.Pct(engine.Push), m.Pop, m.Nothing, m.Pct(engine.Nothing))
}
