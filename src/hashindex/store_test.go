package hashindex

import "testing"

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
	if got := s.Get("missing"); got != nil {
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

func TestAll(t *testing.T) {
	s := NewStore()
	s.Put("a", 1)
	s.Put("b", 2)
	s.Put("c", 3)

	got := s.All()
	if len(got) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(got))
	}
	seen := map[any]bool{}
	for _, v := range got {
		seen[v] = true
	}
	for _, want := range []any{1, 2, 3} {
		if !seen[want] {
			t.Fatalf("expected %v in All(), got %v", want, got)
		}
	}
}

// Put's copy-on-write bucket semantics must never let a Get call observe a
// slice shared with a later Put on the same key.
func TestPutDoesNotAliasReturnedSlices(t *testing.T) {
	s := NewStore()
	s.Put("a", 1)

	first := s.Get("a")
	s.Put("a", 2)
	second := s.Get("a")

	if len(first) != 1 {
		t.Fatalf("expected the first snapshot to still have 1 entry, got %d", len(first))
	}
	if len(second) != 2 {
		t.Fatalf("expected the second snapshot to have 2 entries, got %d", len(second))
	}
}
