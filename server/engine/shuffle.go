package engine

import (
	"math/rand"
	"time"

	"tbge/server/game"
)

// Shuffler supplies a permutation of 0..n-1.
type Shuffler interface {
	Permutation(n int) ([]int, error)
}

// ShufflerFunc adapts a function to Shuffler.
type ShufflerFunc func(n int) ([]int, error)

func (f ShufflerFunc) Permutation(n int) ([]int, error) { return f(n) }

// SeededShuffler is a Fisher-Yates shuffle over math/rand.
// Equal seeds give equal permutations.
type SeededShuffler struct {
	r *rand.Rand
}

// NewSeededShuffler seeds a shuffler; seed 0 picks a time-based seed.
func NewSeededShuffler(seed int64) *SeededShuffler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SeededShuffler{r: rand.New(rand.NewSource(seed))}
}

func (s *SeededShuffler) Permutation(n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := s.r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// StepShuffler is a deterministic mock: it walks 0..n-1 starting at Start
// and advancing by Step modulo n. Step must be coprime with n for the
// output to be a permutation.
type StepShuffler struct {
	Start, Step int
}

func (s StepShuffler) Permutation(n int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]int, n)
	v := s.Start
	for i := range out {
		out[i] = ((v % n) + n) % n
		v += s.Step
	}
	return out, nil
}

func checkPermutation(perm []int, n int) error {
	if len(perm) != n {
		return game.Errorf(game.CodeShuffleFailure, "permutation has %d entries, want %d", len(perm), n)
	}
	seen := make([]bool, n)
	for _, v := range perm {
		if v < 0 || v >= n {
			return game.Errorf(game.CodeShuffleFailure, "permutation index %d out of range", v)
		}
		if seen[v] {
			return game.Errorf(game.CodeShuffleFailure, "permutation repeats index %d", v)
		}
		seen[v] = true
	}
	return nil
}
