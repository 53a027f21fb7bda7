package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 100, 10, zerolog.Nop())
}

func TestClient_Search_ReturnsFoodsAndSendsAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/foods/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "chicken" || r.URL.Query().Get("tab") != "common" {
			t.Errorf("query params = %v", r.URL.Query())
		}
		if r.Header.Get("X-Auth-Token") != "tok" || r.Header.Get("X-Auth-Secret") != "sec" {
			t.Errorf("auth headers missing: %v", r.Header)
		}
		json.NewEncoder(w).Encode(searchResponse{Result: "ok", Foods: []Food{
			{ID: "42", Name: "Chicken Breast, Raw", Measures: []Measure{{ID: "m1", Name: "g", Grams: 1}}},
		}})
	})

	foods, err := c.Search(context.Background(), "chicken", PartitionCommon, Credential{Token: "tok", Secret: "sec"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(foods) != 1 || foods[0].ID != "42" || len(foods[0].Measures) != 1 {
		t.Fatalf("unexpected foods: %+v", foods)
	}
}

func TestClient_Search_RemoteErrorField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Error: "invalid credential"})
	})
	if _, err := c.Search(context.Background(), "x", PartitionCommon, Credential{}); err == nil {
		t.Fatalf("expected error from remote error field")
	}
}

func TestClient_SaveServings_OKAndRejected(t *testing.T) {
	var got writeRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(writeResponse{Result: "ok"})
	})

	entries := []ServingEntry{{Day: "2026-08-29", FoodID: "42", MeasureID: "m1", Grams: 200, MealOrder: MealOrderLunch}}
	if err := c.SaveServings(context.Background(), Credential{Token: "t"}, entries); err != nil {
		t.Fatalf("SaveServings: %v", err)
	}
	if len(got.Servings) != 1 || got.Servings[0].Grams != 200 {
		t.Fatalf("payload not forwarded: %+v", got)
	}

	rejecting := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(writeResponse{Result: "fail"})
	})
	if err := rejecting.SaveServings(context.Background(), Credential{}, entries); err == nil {
		t.Fatalf("expected error on non-ok result")
	}
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Username != "alice" || req.Password != "pw" {
			t.Errorf("credentials not forwarded: %+v", req)
		}
		json.NewEncoder(w).Encode(loginResponse{Result: "ok", Token: "tok", Secret: "sec"})
	})

	cred, err := c.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if cred.Token != "tok" || cred.Secret != "sec" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}

func TestClient_HTTPStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	if _, err := c.Search(context.Background(), "x", PartitionAll, Credential{}); err == nil {
		t.Fatalf("expected error on 502")
	}
}
