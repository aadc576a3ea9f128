package strscan

import "testing"

func TestShortRunNotRecorded(t *testing.T) {
	data := []byte{0x00, 'A', 'B', 'C', 0x00}
	runs := Extract(data)
	if len(runs) != 0 {
		t.Fatalf("got %d runs, want 0 for a length-3 run", len(runs))
	}
}

func TestMinimumLengthRunRecorded(t *testing.T) {
	data := []byte{0x00, 'A', 'B', 'C', 'D', 0x00}
	runs := Extract(data)
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Offset != 1 || runs[0].Text != "ABCD" {
		t.Fatalf("run = %+v, want offset=1 text=ABCD", runs[0])
	}
}

type fakeFn struct {
	start, end int
	category   string
}

func (f *fakeFn) Range() (int, int)     { return f.start, f.end }
func (f *fakeFn) SetCategory(c string) { f.category = c }

func TestApplyAssignsFirstContainingRun(t *testing.T) {
	runs := []Run{
		{Offset: 5, Text: "MENU TEXT"},
		{Offset: 50, Text: "SOUND FX DATA"},
	}
	fns := []Categorizable{
		&fakeFn{start: 0, end: 20},
		&fakeFn{start: 20, end: 60},
	}
	Apply(runs, DefaultCategories(), fns)

	if got := fns[0].(*fakeFn).category; got != "user interface" {
		t.Fatalf("fn0 category = %q, want user interface", got)
	}
	if got := fns[1].(*fakeFn).category; got != "sound" {
		t.Fatalf("fn1 category = %q, want sound", got)
	}
}

func TestApplySkipsNonMatchingRunsForLaterMatch(t *testing.T) {
	runs := []Run{
		{Offset: 5, Text: "XYZZY PLUGH"}, // in range, no keyword matches
		{Offset: 10, Text: "SOUND FX DATA"}, // same range, matches "sound"
	}
	fns := []Categorizable{&fakeFn{start: 0, end: 20}}
	Apply(runs, DefaultCategories(), fns)

	if got := fns[0].(*fakeFn).category; got != "sound" {
		t.Fatalf("category = %q, want sound (first matching run, not first tried)", got)
	}
}

func TestApplyUncategorizedWhenNoRunMatches(t *testing.T) {
	runs := []Run{{Offset: 5, Text: "XYZZY PLUGH"}}
	fns := []Categorizable{&fakeFn{start: 0, end: 20}}
	Apply(runs, DefaultCategories(), fns)

	if got := fns[0].(*fakeFn).category; got != "" {
		t.Fatalf("category = %q, want empty (no run matches any keyword)", got)
	}
}
