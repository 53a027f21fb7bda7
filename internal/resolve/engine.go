package resolve

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-meal-agent/internal/catalog"
	"github.com/tbourn/go-meal-agent/internal/observability"
)

// Candidate is a scored catalog hit, transient and produced fresh per search.
type Candidate struct {
	Food       catalog.Food
	Partition  catalog.Partition
	Score      float64 // composite score
	Similarity float64 // raw string similarity
}

// Result carries the outcome of one resolution call. Candidates always holds
// the full ranked list so a later "pick one of these" step can reuse it
// without re-querying.
type Result struct {
	Found      bool
	Best       *Candidate
	Candidates []Candidate
	FromAlias  bool
	AliasID    string
}

// Alias is a previously learned term→food mapping surfaced by an
// AliasSource.
type Alias struct {
	ID        string
	FoodID    string
	FoodName  string
	Partition catalog.Partition
}

// AliasSource lets the engine short-circuit a search when the user already
// taught the system what a term means. A nil AliasSource disables the
// short-circuit entirely.
type AliasSource interface {
	// ActiveAlias returns the active alias for (userID, normalized term),
	// or nil when none exists.
	ActiveAlias(ctx context.Context, userID, term string) (*Alias, error)
	// MarkUsed increments the alias usage counter.
	MarkUsed(ctx context.Context, aliasID string) error
}

// Engine performs fuzzy food resolution against the catalog partitions.
type Engine struct {
	Searcher   catalog.Searcher
	Aliases    AliasSource // optional
	Priorities map[catalog.Partition]float64
	Threshold  float64 // composite acceptance threshold
	PerTab     int     // per-partition hit cap
}

const (
	defaultThreshold = 0.2
	defaultPerTab    = 5
	maxCandidates    = 10
)

// Resolve finds the best catalog match for query on behalf of userID. An
// active alias for the normalized query wins outright, without touching the
// catalog; otherwise all partitions are searched concurrently and the merged
// hits ranked by composite score. Found is false when nothing clears the
// acceptance threshold, but the ranked candidates are returned regardless so
// the caller can offer a manual pick.
func (e *Engine) Resolve(ctx context.Context, userID, query string, cred catalog.Credential) (*Result, error) {
	tr := otel.Tracer("resolve/Engine")
	ctx, span := tr.Start(ctx, "Resolve",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("query", query),
		),
	)
	defer span.End()

	norm := Normalize(query)
	if norm == "" {
		return &Result{}, nil
	}

	if e.Aliases != nil {
		alias, err := e.Aliases.ActiveAlias(ctx, userID, norm)
		if err == nil && alias != nil {
			_ = e.Aliases.MarkUsed(ctx, alias.ID)
			best := Candidate{
				Food:       catalog.Food{ID: alias.FoodID, Name: alias.FoodName},
				Partition:  alias.Partition,
				Score:      exactMatchBonus,
				Similarity: 1,
			}
			return &Result{
				Found:      true,
				Best:       &best,
				Candidates: []Candidate{best},
				FromAlias:  true,
				AliasID:    alias.ID,
			}, nil
		}
	}

	hits := e.fanOut(ctx, norm, cred)
	cands := e.rank(query, norm, hits)

	out := &Result{Candidates: cands}
	if len(cands) > 0 && cands[0].Score >= e.threshold() {
		out.Found = true
		out.Best = &cands[0]
	}
	span.SetAttributes(attribute.Int("candidates", len(cands)), attribute.Bool("found", out.Found))
	return out, nil
}

type partitionHits struct {
	partition catalog.Partition
	foods     []catalog.Food
}

// fanOut queries every partition concurrently and joins the results. A
// failed partition contributes zero results instead of aborting the search.
func (e *Engine) fanOut(ctx context.Context, query string, cred catalog.Credential) []partitionHits {
	var mu sync.Mutex
	hits := make([]partitionHits, 0, len(catalog.SearchPartitions))

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range catalog.SearchPartitions {
		g.Go(func() error {
			foods, err := e.Searcher.Search(gctx, query, p, cred)
			observability.CountCatalogSearch(string(p), err)
			if err != nil || len(foods) == 0 {
				return nil
			}
			if n := e.perTab(); len(foods) > n {
				foods = foods[:n]
			}
			mu.Lock()
			hits = append(hits, partitionHits{partition: p, foods: foods})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return hits
}

// rank merges all partition hits, scores each against both the raw and
// normalized query forms, dedupes by food id keeping the best score, and
// sorts deterministically.
func (e *Engine) rank(rawQuery, normQuery string, hits []partitionHits) []Candidate {
	best := make(map[string]Candidate)
	for _, h := range hits {
		prio := e.priority(h.partition)
		for _, f := range h.foods {
			lower := strings.ToLower(f.Name)
			sim := Dice(lower, normQuery)
			if s := Dice(lower, strings.ToLower(rawQuery)); s > sim {
				sim = s
			}
			exact, normExact, prefix, substr := matchFlags(f.Name, rawQuery, normQuery)
			c := Candidate{
				Food:       f,
				Partition:  h.partition,
				Score:      CompositeScore(sim, prio, exact, normExact, prefix, substr),
				Similarity: sim,
			}
			if prev, ok := best[f.ID]; !ok || c.Score > prev.Score {
				best[f.ID] = c
			}
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Food.Name < out[j].Food.Name
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

func (e *Engine) threshold() float64 {
	if e.Threshold > 0 {
		return e.Threshold
	}
	return defaultThreshold
}

func (e *Engine) perTab() int {
	if e.PerTab > 0 {
		return e.PerTab
	}
	return defaultPerTab
}

func (e *Engine) priority(p catalog.Partition) float64 {
	if e.Priorities != nil {
		if v, ok := e.Priorities[p]; ok {
			return v
		}
	}
	if v, ok := catalog.DefaultPriorities[p]; ok {
		return v
	}
	return 1.0
}
