package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	msgBefore := testutil.ToFloat64(dialogMsgs.WithLabelValues("idle"))
	CountMessage("idle")
	if got := testutil.ToFloat64(dialogMsgs.WithLabelValues("idle")); got != msgBefore+1 {
		t.Fatalf("dialog_messages_total = %v; want %v", got, msgBefore+1)
	}

	okBefore := testutil.ToFloat64(interpreterReqs.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(interpreterReqs.WithLabelValues("error"))
	CountInterpreterRequest(nil)
	CountInterpreterRequest(errors.New("boom"))
	if got := testutil.ToFloat64(interpreterReqs.WithLabelValues("ok")); got != okBefore+1 {
		t.Fatalf("interpreter ok = %v; want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(interpreterReqs.WithLabelValues("error")); got != errBefore+1 {
		t.Fatalf("interpreter error = %v; want %v", got, errBefore+1)
	}

	searchBefore := testutil.ToFloat64(catalogSearches.WithLabelValues("custom", "ok"))
	CountCatalogSearch("custom", nil)
	if got := testutil.ToFloat64(catalogSearches.WithLabelValues("custom", "ok")); got != searchBefore+1 {
		t.Fatalf("catalog_searches_total = %v; want %v", got, searchBefore+1)
	}

	commitBefore := testutil.ToFloat64(mealCommits.WithLabelValues("error"))
	CountCommit(errors.New("save failed"))
	if got := testutil.ToFloat64(mealCommits.WithLabelValues("error")); got != commitBefore+1 {
		t.Fatalf("meal_commits_total = %v; want %v", got, commitBefore+1)
	}
}

func TestSessionGauge(t *testing.T) {
	before := testutil.ToFloat64(activeSessions)
	SessionOpened()
	SessionOpened()
	SessionClosed()
	if got := testutil.ToFloat64(activeSessions); got != before+1 {
		t.Fatalf("chat_sessions_active = %v; want %v", got, before+1)
	}
}

func TestObserveResolution(t *testing.T) {
	// Histograms have no ToFloat64; just make sure recording does not panic.
	ObserveResolution(120 * time.Millisecond)
}
