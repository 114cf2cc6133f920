package topk

import "testing"

func TestSelectorKeepsSmallest(t *testing.T) {
	s := New(3)
	for _, it := range []Item{
		{ID: 1, Score: 5},
		{ID: 2, Score: 1},
		{ID: 3, Score: 9},
		{ID: 4, Score: 2},
		{ID: 5, Score: 0},
	} {
		s.Add(it)
	}
	got := s.IntoSorted()
	want := []Item{{ID: 5, Score: 0}, {ID: 2, Score: 1}, {ID: 4, Score: 2}}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSelectorTieBreaksOnSmallerID(t *testing.T) {
	s := New(2)
	s.Add(Item{ID: 10, Score: 1})
	s.Add(Item{ID: 2, Score: 1})
	got := s.IntoSorted()
	if got[0].ID != 2 || got[1].ID != 10 {
		t.Errorf("expected id 2 before id 10 on score tie, got %v", got)
	}
}

func TestSelectorUnderfull(t *testing.T) {
	s := New(5)
	s.Add(Item{ID: 1, Score: 3})
	s.Add(Item{ID: 2, Score: 1})
	got := s.IntoSorted()
	if len(got) != 2 {
		t.Fatalf("expected 2 kept items, got %d", len(got))
	}
	if got[0].ID != 2 {
		t.Errorf("expected smallest score first, got %+v", got)
	}
}

func TestSelectorZeroCapacity(t *testing.T) {
	s := New(0)
	s.Add(Item{ID: 1, Score: 1})
	if got := s.IntoSorted(); len(got) != 0 {
		t.Errorf("expected no items kept with k=0, got %v", got)
	}
}

func TestSelectorDropsWorstOnStrictlyBetter(t *testing.T) {
	s := New(1)
	s.Add(Item{ID: 1, Score: 5})
	s.Add(Item{ID: 2, Score: 5}) // equal score: must NOT replace (strictly less required)
	got := s.IntoSorted()
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("equal score should not replace the kept item, got %v", got)
	}
	s.Add(Item{ID: 3, Score: 4}) // strictly less: must replace
	got = s.IntoSorted()
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("expected item 3 to replace the worse-scored kept item, got %v", got)
	}
}
