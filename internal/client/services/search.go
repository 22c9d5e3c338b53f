package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/client/debounce"
	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
)

// ErrNoSelection is returned by Calories before any food was selected.
var ErrNoSelection = errors.New("no food selected")

const searchTimeout = 10 * time.Second

// Searcher is the part of client.Client the search session needs.
type Searcher interface {
	SearchFoods(ctx context.Context, query string) (nutritionix.SearchResult, error)
	LookupNutrients(ctx context.Context, query string) (nutritionix.NutrientDetail, error)
}

// SearchSession turns keystroke-level query updates into debounced food
// searches. Every issued search carries a generation number and its response
// is applied only while that generation is the latest one.
type SearchSession struct {
	searcher  Searcher
	debouncer *debounce.Debouncer
	logger    logging.Logger
	onResults func(query string, res nutritionix.SearchResult)

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup

	mu      sync.Mutex
	gen     uint64
	applied string
	results nutritionix.SearchResult
	detail  *nutritionix.NutrientDetail
	closed  bool
}

// NewSearchSession creates a session. onResults, if set, is called with
// every applied result set; it runs on a timer goroutine.
func NewSearchSession(s Searcher, interval time.Duration, logger logging.Logger, onResults func(string, nutritionix.SearchResult)) *SearchSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchSession{
		searcher:  s,
		debouncer: debounce.New(interval),
		logger:    logger.With("module", "search"),
		onResults: onResults,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Type records the current query text. A non-empty query is searched once
// the input has been quiet for the debounce interval; an empty query clears
// the results and never searches.
func (s *SearchSession) Type(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if query == "" {
		s.applied = ""
		s.results = nutritionix.SearchResult{}
		s.mu.Unlock()
		s.debouncer.Cancel()
		return
	}
	s.mu.Unlock()

	s.debouncer.Trigger(func() { s.run(gen, query) })
}

func (s *SearchSession) run(gen uint64, query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(s.ctx, searchTimeout)
	defer cancel()

	res, err := s.searcher.SearchFoods(ctx, query)
	if err != nil {
		s.logger.Warn(ctx, "food search failed", "query", query, "error", err)
		res = nutritionix.SearchResult{}
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug(ctx, "stale search response dropped", "query", query)
		return
	}
	s.applied = query
	s.results = res
	s.mu.Unlock()

	if s.onResults != nil {
		s.onResults(query, res)
	}
}

// Results returns the query of the latest applied search and its hits. A
// query that is still pending does not show up until its response lands.
func (s *SearchSession) Results() (string, nutritionix.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied, s.results
}

// Candidate returns hit n (1-based) across the common then branded lists.
func (s *SearchSession) Candidate(n int) (nutritionix.FoodCandidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append(append([]nutritionix.FoodCandidate{}, s.results.Common...), s.results.Branded...)
	if n < 1 || n > len(all) {
		return nutritionix.FoodCandidate{}, false
	}
	return all[n-1], true
}

// Select looks up the nutrients of description. On failure the previously
// selected detail stays in place and the error is returned.
func (s *SearchSession) Select(ctx context.Context, description string) (nutritionix.NutrientDetail, error) {
	d, err := s.searcher.LookupNutrients(ctx, description)
	if err != nil {
		s.logger.Warn(ctx, "nutrient lookup failed", "query", description, "error", err)
		return nutritionix.NutrientDetail{}, err
	}
	s.mu.Lock()
	s.detail = &d
	s.mu.Unlock()
	return d, nil
}

// Detail returns the selected food, if any.
func (s *SearchSession) Detail() (nutritionix.NutrientDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail == nil {
		return nutritionix.NutrientDetail{}, false
	}
	return *s.detail, true
}

// Calories scales the selected food to quantity units of measure. An empty
// measure means one standard serving.
func (s *SearchSession) Calories(measure string, quantity float64) (int, error) {
	d, ok := s.Detail()
	if !ok {
		return 0, ErrNoSelection
	}
	var weight float64
	if measure != "" {
		m, ok := nutritionix.FindMeasure(d, measure)
		if !ok {
			return 0, fmt.Errorf("unknown measure %q for %s", measure, d.FoodName)
		}
		weight = m.ServingWeight
	}
	kcal, ok := nutritionix.Calories(d, weight, quantity)
	if !ok {
		return 0, fmt.Errorf("%s has no serving weight", d.FoodName)
	}
	return kcal, nil
}

// Close stops pending searches and waits for in-flight ones to return.
func (s *SearchSession) Close() {
	s.debouncer.Stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.inflight.Wait()
}
