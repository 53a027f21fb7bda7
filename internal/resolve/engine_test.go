package resolve

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-meal-agent/internal/catalog"
)

// fakeSearcher serves canned foods per partition and counts calls.
type fakeSearcher struct {
	byPartition map[catalog.Partition][]catalog.Food
	failing     map[catalog.Partition]bool
	calls       atomic.Int64
}

func (f *fakeSearcher) Search(ctx context.Context, query string, p catalog.Partition, cred catalog.Credential) ([]catalog.Food, error) {
	f.calls.Add(1)
	if f.failing[p] {
		return nil, errors.New("partition down")
	}
	return f.byPartition[p], nil
}

type fakeAliases struct {
	alias     *Alias
	usedIDs   []string
	lookupErr error
}

func (f *fakeAliases) ActiveAlias(ctx context.Context, userID, term string) (*Alias, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.alias, nil
}

func (f *fakeAliases) MarkUsed(ctx context.Context, aliasID string) error {
	f.usedIDs = append(f.usedIDs, aliasID)
	return nil
}

func TestResolve_AliasShortCircuit_SkipsCatalog(t *testing.T) {
	s := &fakeSearcher{}
	aliases := &fakeAliases{alias: &Alias{
		ID: "al-1", FoodID: "42", FoodName: "Chicken Breast, Raw", Partition: catalog.PartitionCommon,
	}}
	e := &Engine{Searcher: s, Aliases: aliases}

	res, err := e.Resolve(context.Background(), "u1", "pollo", catalog.Credential{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Found || !res.FromAlias || res.Best == nil || res.Best.Food.ID != "42" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := s.calls.Load(); got != 0 {
		t.Fatalf("catalog searched %d times; want 0", got)
	}
	if len(aliases.usedIDs) != 1 || aliases.usedIDs[0] != "al-1" {
		t.Fatalf("alias usage not incremented: %v", aliases.usedIDs)
	}
}

func TestResolve_RanksExactMatchFirst(t *testing.T) {
	s := &fakeSearcher{byPartition: map[catalog.Partition][]catalog.Food{
		catalog.PartitionCommon: {
			{ID: "1", Name: "Chicken Soup"},
			{ID: "2", Name: "Chicken"},
			{ID: "3", Name: "Fried Chicken Wings"},
		},
	}}
	e := &Engine{Searcher: s}

	res, err := e.Resolve(context.Background(), "u1", "chicken", catalog.Credential{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Found {
		t.Fatalf("expected a match, got %+v", res)
	}
	if res.Best.Food.ID != "2" {
		t.Fatalf("best = %q (%s); want exact match id 2", res.Best.Food.ID, res.Best.Food.Name)
	}
	if len(res.Candidates) != 3 {
		t.Fatalf("candidates = %d; want full ranked list", len(res.Candidates))
	}
}

func TestResolve_PartitionPriorityBreaksTies(t *testing.T) {
	s := &fakeSearcher{byPartition: map[catalog.Partition][]catalog.Food{
		catalog.PartitionCommon: {{ID: "c1", Name: "White Rice Cooked"}},
		catalog.PartitionCustom: {{ID: "u1", Name: "White Rice Cooked"}},
	}}
	e := &Engine{Searcher: s}

	res, err := e.Resolve(context.Background(), "u1", "white rice", catalog.Credential{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Found || res.Best.Partition != catalog.PartitionCustom {
		t.Fatalf("custom partition (priority 3.0) should win: %+v", res.Best)
	}
}

func TestResolve_FailedPartitionIsZeroResults(t *testing.T) {
	s := &fakeSearcher{
		byPartition: map[catalog.Partition][]catalog.Food{
			catalog.PartitionCommon: {{ID: "1", Name: "Oatmeal"}},
		},
		failing: map[catalog.Partition]bool{
			catalog.PartitionCustom:    true,
			catalog.PartitionFavorites: true,
		},
	}
	e := &Engine{Searcher: s}

	res, err := e.Resolve(context.Background(), "u1", "oatmeal", catalog.Credential{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Found || res.Best.Food.ID != "1" {
		t.Fatalf("surviving partition should still match: %+v", res)
	}
}

func catalogSearchTotal(t *testing.T) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != "catalog_searches_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestResolve_CountsEveryPartitionSearch(t *testing.T) {
	s := &fakeSearcher{
		byPartition: map[catalog.Partition][]catalog.Food{
			catalog.PartitionCommon: {{ID: "1", Name: "Oatmeal"}},
		},
	}
	e := &Engine{Searcher: s}

	before := catalogSearchTotal(t)
	if _, err := e.Resolve(context.Background(), "u1", "oatmeal", catalog.Credential{}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := catalogSearchTotal(t) - before; got != float64(len(catalog.SearchPartitions)) {
		t.Fatalf("catalog_searches_total moved by %v; want %d", got, len(catalog.SearchPartitions))
	}
}

func TestResolve_BelowThresholdNotFoundButRanked(t *testing.T) {
	s := &fakeSearcher{byPartition: map[catalog.Partition][]catalog.Food{
		catalog.PartitionAll: {{ID: "1", Name: "zzzzqqqq"}},
	}}
	e := &Engine{Searcher: s, Threshold: 0.2}

	res, err := e.Resolve(context.Background(), "u1", "avocado toast", catalog.Credential{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Found {
		t.Fatalf("dissimilar hit must not clear threshold: %+v", res.Best)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("candidates must still be returned for manual selection, got %d", len(res.Candidates))
	}
}

func TestResolve_EmptyQuery(t *testing.T) {
	e := &Engine{Searcher: &fakeSearcher{}}
	res, err := e.Resolve(context.Background(), "u1", "  !! ", catalog.Credential{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Found || len(res.Candidates) != 0 {
		t.Fatalf("unexpected result for empty query: %+v", res)
	}
}

func TestResolve_DedupesAcrossPartitions(t *testing.T) {
	s := &fakeSearcher{byPartition: map[catalog.Partition][]catalog.Food{
		catalog.PartitionCommon: {{ID: "1", Name: "Banana"}},
		catalog.PartitionAll:    {{ID: "1", Name: "Banana"}},
	}}
	e := &Engine{Searcher: s}

	res, err := e.Resolve(context.Background(), "u1", "banana", catalog.Credential{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("duplicate food ids should merge, got %d candidates", len(res.Candidates))
	}
	if res.Best.Partition != catalog.PartitionCommon {
		t.Fatalf("higher-priority partition should survive the merge: %+v", res.Best)
	}
}
