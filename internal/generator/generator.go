// Package generator builds practice documents from word lists.
package generator

import (
	"math/rand/v2"
	"sort"
	"strings"
	"time"
	"unicode"
)

// Options controls how picked words are decorated.
type Options struct {
	Count    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(uint64(time.Now().UnixNano()))
}

// NewWithSeed returns a Generator whose output depends only on seed.
func NewWithSeed(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Words picks opts.Count words uniformly from pool.
func (g *Generator) Words(pool []string, opts Options) []string {
	return g.pick(pool, nil, opts)
}

// WeightedWords picks words from pool, favouring words that contain weak
// characters. Each weak rune in a word adds factor to its weight of 1.
func (g *Generator) WeightedWords(pool []string, opts Options, weak map[rune]struct{}, factor float64) []string {
	cumulative := make([]float64, len(pool))
	total := 0.0
	for i, word := range pool {
		hits := 0
		for _, r := range word {
			if _, ok := weak[r]; ok {
				hits++
			}
		}
		total += 1 + float64(hits)*factor
		cumulative[i] = total
	}
	return g.pick(pool, cumulative, opts)
}

// pick draws from pool; a nil cumulative weight table means uniform.
func (g *Generator) pick(pool []string, cumulative []float64, opts Options) []string {
	if len(pool) == 0 || opts.Count <= 0 {
		return nil
	}
	out := make([]string, 0, opts.Count)
	for range opts.Count {
		idx := 0
		if cumulative == nil {
			idx = g.rnd.IntN(len(pool))
		} else {
			target := g.rnd.Float64() * cumulative[len(cumulative)-1]
			idx = min(sort.SearchFloat64s(cumulative, target), len(pool)-1)
		}
		out = append(out, g.decorate(pool[idx], opts))
	}
	return out
}

func (g *Generator) decorate(word string, opts Options) string {
	if word == "" {
		return word
	}
	if opts.CapsPct > 0 && g.rnd.Float64() < opts.CapsPct {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		word = string(runes)
	}
	if opts.PunctPct > 0 && len(opts.PunctSet) > 0 && g.rnd.Float64() < opts.PunctPct {
		word += string(opts.PunctSet[g.rnd.IntN(len(opts.PunctSet))])
	}
	return word
}

// Wrap joins words with single spaces into lines no wider than width
// characters. A word longer than width gets a line of its own.
func Wrap(words []string, width int) []string {
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	var cur strings.Builder
	curLen := 0
	for _, w := range words {
		n := len([]rune(w))
		if curLen > 0 && curLen+1+n > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += n
	}
	if curLen > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
