// Package words implements the query source: a frequency-ranked Lithuanian
// word list, shuffled once at construction and consumed last-in-first-out.
package words

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// data/lt.txt holds the most frequent Lithuanian words, one per line,
// highest frequency first.
//
//go:embed data/lt.txt
var rawList string

// ErrExhausted is returned by Next once every word has been handed out.
// The pool must be sized above the expected query consumption of a run;
// draining it is a terminal condition for the crawl.
var ErrExhausted = errors.New("query pool exhausted")

// Config controls which slice of the ranked list becomes the pool.
type Config struct {
	// Size limits the pool to the top N ranked words. Zero or a value
	// beyond the list length takes the whole list.
	Size int
	// Seed fixes the permutation for tests. Zero seeds from the clock.
	Seed int64
}

// Source is a finite, randomized pool of search terms. Not safe for
// concurrent use; the crawl loop is single-threaded.
type Source struct {
	pool []string
}

// New loads the ranked list, truncates it to cfg.Size, and applies a single
// random permutation. The pool is never re-shuffled afterwards.
func New(cfg Config) (*Source, error) {
	all := splitList(rawList)
	if len(all) == 0 {
		return nil, fmt.Errorf("embedded word list is empty")
	}
	if cfg.Size > 0 && cfg.Size < len(all) {
		all = all[:cfg.Size]
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	return &Source{pool: all}, nil
}

// Next pops the next query off the pool. Each word is handed out exactly
// once per run.
func (s *Source) Next() (string, error) {
	if len(s.pool) == 0 {
		return "", ErrExhausted
	}
	last := len(s.pool) - 1
	word := s.pool[last]
	s.pool = s.pool[:last]
	return word, nil
}

// Remaining reports how many queries are left in the pool.
func (s *Source) Remaining() int {
	return len(s.pool)
}

func splitList(raw string) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
