package clone

import "testing"

type widget struct {
	ID     int
	Name   string
	Values []string
}

func TestBSONClonerDeepCopies(t *testing.T) {
	src := &widget{ID: 1, Name: "a", Values: []string{"x", "y"}}
	dst := &widget{}

	BSONCloner{}.Clone(dst, src)

	if dst.ID != src.ID || dst.Name != src.Name {
		t.Fatalf("expected dst to match src, got %+v vs %+v", dst, src)
	}
	if len(dst.Values) != len(src.Values) {
		t.Fatalf("expected matching Values length, got %v vs %v", dst.Values, src.Values)
	}

	dst.Values[0] = "mutated"
	if src.Values[0] == "mutated" {
		t.Fatalf("clone shared backing array with source")
	}
}

func TestBSONClonerPanicsOnNonPointerDestination(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when dst is not a pointer")
		}
	}()

	src := &widget{ID: 1}
	var dst widget
	BSONCloner{}.Clone(dst, src)
}
