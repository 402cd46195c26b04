package generator

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/retype/internal/document"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/stats"
	"github.com/verte-zerg/retype/internal/store"
)

// GeneratedSourceName labels documents built from a word list.
const GeneratedSourceName = "generated"

// Source builds a fresh practice document for every run.
type Source struct {
	gen   *Generator
	cfg   model.Config
	words []string
	punct []rune
	store *store.Store
}

// NewSource returns a source drawing from words. st may be nil, which
// disables weak-character focus.
func NewSource(gen *Generator, cfg model.Config, words []string, st *store.Store) *Source {
	return &Source{
		gen:   gen,
		cfg:   cfg,
		words: words,
		punct: []rune(cfg.PunctSet),
		store: st,
	}
}

// Next generates a document. The comment filter has no effect on generated
// text.
func (s *Source) Next(filterComments bool) (*document.Document, error) {
	opts := Options{
		Count:    s.cfg.Words,
		CapsPct:  s.cfg.CapsPct,
		PunctPct: s.cfg.PunctPct,
		PunctSet: s.punct,
	}
	var words []string
	if weak := s.weakSet(); len(weak) > 0 {
		words = s.gen.WeightedWords(s.words, opts, weak, s.cfg.WeakFactor)
	} else {
		words = s.gen.Words(s.words, opts)
	}
	text := strings.Join(Wrap(words, s.cfg.LineWidth), "\n")
	return document.New(GeneratedSourceName, text, filterComments)
}

func (s *Source) weakSet() map[rune]struct{} {
	if !s.cfg.FocusWeak || s.store == nil {
		return nil
	}
	aggs, err := s.store.GetWeakChars(context.Background(), s.cfg.WeakWindow, GeneratedSourceName)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load weak chars")
		return nil
	}
	if len(aggs) == 0 {
		log.Info().Msg("no stats available for weak-char focus yet; using normal generator")
		return nil
	}
	return stats.SelectWeakChars(aggs, s.cfg.WeakTop)
}
