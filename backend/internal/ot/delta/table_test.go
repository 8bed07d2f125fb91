package delta

import "testing"

func TestDispatchTablesComplete(t *testing.T) {
	for self := Kind(0); self < kindCount; self++ {
		for other := Kind(0); other < kindCount; other++ {
			if composeTable[self][other] == nil {
				t.Fatalf("composeTable[%s][%s] is nil", self, other)
			}
			if transformTable[self][other] == nil {
				t.Fatalf("transformTable[%s][%s] is nil", self, other)
			}
		}
	}
}

func TestStepLength_BothExhaustedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("stepLength() did not panic with both iterators exhausted")
		}
	}()
	stepLength(NewOpIterator(nil), NewOpIterator(nil))
}

func TestStepLength(t *testing.T) {
	a := NewOpIterator(*New().Retain(3, nil))
	b := NewOpIterator(*New().Insert("hello", nil))
	if got := stepLength(a, b); got != 3 {
		t.Fatalf("stepLength() = %d, want 3", got)
	}
	if got := stepLength(NewOpIterator(nil), b); got != 5 {
		t.Fatalf("stepLength(exhausted, b) = %d, want 5", got)
	}
	if got := stepLength(a, NewOpIterator(nil)); got != 3 {
		t.Fatalf("stepLength(a, exhausted) = %d, want 3", got)
	}
}

func TestKindString(t *testing.T) {
	want := map[Kind]string{KindInsert: "insert", KindRetain: "retain", KindDelete: "delete", kindCount: "Kind(3)"}
	for k, s := range want {
		if k.String() != s {
			t.Fatalf("Kind(%d).String() = %q, want %q", int(k), k.String(), s)
		}
	}
}
