package btreeindex

import (
	"testing"

	"relstore/src/models"
)

func TestPutGetRemove(t *testing.T) {
	s := NewStore()
	s.Put("a", "one")
	s.Put("a", "two")
	s.Put("b", "three")

	if got := s.Get("a"); len(got) != 2 {
		t.Fatalf("expected 2 entities under key a, got %d", len(got))
	}
	if got := s.Get("b"); len(got) != 1 || got[0] != "three" {
		t.Fatalf("expected [three] under key b, got %v", got)
	}
	if got := s.Get("c"); got != nil {
		t.Fatalf("expected nil for unknown key, got %v", got)
	}

	s.Remove("a", "one")
	if got := s.Get("a"); len(got) != 1 || got[0] != "two" {
		t.Fatalf("expected [two] under key a after removing one, got %v", got)
	}

	s.Remove("a", "two")
	if got := s.Get("a"); got != nil {
		t.Fatalf("expected key a gone after removing its last entity, got %v", got)
	}
}

func TestAllInAscendingKeyOrder(t *testing.T) {
	s := NewStore()
	s.Put("c", 3)
	s.Put("a", 1)
	s.Put("b", 2)

	got := s.All()
	want := []any{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d entities, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRange(t *testing.T) {
	s := NewStore()
	s.Put("a", 1)
	s.Put("b", 2)
	s.Put("c", 3)
	s.Put("d", 4)

	var seen []string
	s.Range("b", "d", func(key models.EntityKey, entities []any) bool {
		seen = append(seen, string(key))
		return true
	})
	if len(seen) != 2 || seen[0] != "b" || seen[1] != "c" {
		t.Fatalf("expected [b c], got %v", seen)
	}
}
