package dialog

import (
	"sync"
	"testing"
)

func TestRegistry_PutGetDelete(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Get("c1"); ok {
		t.Fatal("empty registry must not return a session")
	}

	r.Put(&Session{ChatID: "c1"})
	s, ok := r.Get("c1")
	if !ok || s.ChatID != "c1" {
		t.Fatalf("got %+v %v", s, ok)
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d", r.Len())
	}

	// Replacing keeps a single entry.
	r.Put(&Session{ChatID: "c1"})
	if r.Len() != 1 {
		t.Fatalf("len after replace = %d", r.Len())
	}

	r.Delete("c1")
	if _, ok := r.Get("c1"); ok || r.Len() != 0 {
		t.Fatal("delete must remove the session")
	}
	// Deleting an absent key is a no-op.
	r.Delete("c1")
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%4))
			r.Put(&Session{ChatID: id})
			r.Get(id)
			r.Len()
		}(i)
	}
	wg.Wait()
	if r.Len() != 4 {
		t.Fatalf("len = %d; want 4", r.Len())
	}
}
