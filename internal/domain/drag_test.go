package domain

import (
	"slices"
	"testing"
)

func sampleBoard() Board {
	b := NewBoard()
	b.Columns[ColumnTodo] = Column{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}}
	b.Columns[ColumnInProgress] = Column{{ID: "d", Text: "D"}}
	return b
}

func columnIDs(col Column) []string {
	out := make([]string, 0, len(col))
	for _, task := range col {
		out = append(out, task.ID)
	}
	return out
}

func dest(column ColumnID, index int) *Location {
	return &Location{Column: column, Index: index}
}

func TestApplyDragCancelledLeavesBoardIdentical(t *testing.T) {
	b := sampleBoard()
	got, changed := ApplyDrag(b, DragResult{Source: Location{Column: ColumnTodo, Index: 0}})
	if changed {
		t.Fatal("expected cancelled drag to report no change")
	}
	if !got.Equal(b) {
		t.Fatalf("expected identical board, got %#v", got)
	}
}

func TestApplyDragReorderWithinColumn(t *testing.T) {
	cases := []struct {
		name string
		from int
		to   int
		want []string
	}{
		{name: "first to last", from: 0, to: 2, want: []string{"b", "c", "a"}},
		{name: "last to first", from: 2, to: 0, want: []string{"c", "a", "b"}},
		{name: "down one", from: 0, to: 1, want: []string{"b", "a", "c"}},
		{name: "same slot", from: 1, to: 1, want: []string{"a", "b", "c"}},
		{name: "past end appends", from: 0, to: 99, want: []string{"b", "c", "a"}},
		{name: "negative clamps to start", from: 2, to: -4, want: []string{"c", "a", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := sampleBoard()
			got, _ := ApplyDrag(b, DragResult{
				Source:      Location{Column: ColumnTodo, Index: tc.from},
				Destination: dest(ColumnTodo, tc.to),
			})
			ids := columnIDs(got.Columns[ColumnTodo])
			if !slices.Equal(ids, tc.want) {
				t.Fatalf("got %v, want %v", ids, tc.want)
			}
			before := columnIDs(b.Columns[ColumnTodo])
			slices.Sort(before)
			slices.Sort(ids)
			if !slices.Equal(before, ids) {
				t.Fatalf("reorder changed id multiset: %v vs %v", before, ids)
			}
		})
	}
}

func TestApplyDragMoveAcrossColumns(t *testing.T) {
	b := sampleBoard()
	got, changed := ApplyDrag(b, DragResult{
		Source:      Location{Column: ColumnTodo, Index: 1},
		Destination: dest(ColumnInProgress, 0),
	})
	if !changed {
		t.Fatal("expected move to report change")
	}
	if len(got.Columns[ColumnTodo]) != len(b.Columns[ColumnTodo])-1 {
		t.Fatalf("source length = %d", len(got.Columns[ColumnTodo]))
	}
	if len(got.Columns[ColumnInProgress]) != len(b.Columns[ColumnInProgress])+1 {
		t.Fatalf("destination length = %d", len(got.Columns[ColumnInProgress]))
	}
	if !slices.Equal(columnIDs(got.Columns[ColumnInProgress]), []string{"b", "d"}) {
		t.Fatalf("unexpected destination %v", columnIDs(got.Columns[ColumnInProgress]))
	}
	loc, ok := got.Locate("b")
	if !ok || loc.Column != ColumnInProgress {
		t.Fatalf("moved task located at %#v (ok=%t)", loc, ok)
	}
	moved, _ := got.Find(ColumnInProgress, "b")
	if moved.Text != "B" {
		t.Fatalf("moved task text changed to %q", moved.Text)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestApplyDragIntoEmptyColumnAppends(t *testing.T) {
	b := sampleBoard()
	got, _ := ApplyDrag(b, DragResult{
		Source:      Location{Column: ColumnInProgress, Index: 0},
		Destination: dest(ColumnDone, 5),
	})
	if !slices.Equal(columnIDs(got.Columns[ColumnDone]), []string{"d"}) {
		t.Fatalf("unexpected done column %v", columnIDs(got.Columns[ColumnDone]))
	}
	if len(got.Columns[ColumnInProgress]) != 0 {
		t.Fatalf("expected empty in-progress column, got %v", columnIDs(got.Columns[ColumnInProgress]))
	}
}

func TestApplyDragInvalidSourceIsNoop(t *testing.T) {
	b := sampleBoard()
	for _, src := range []Location{
		{Column: ColumnTodo, Index: 3},
		{Column: ColumnTodo, Index: -1},
		{Column: ColumnDone, Index: 0},
		{Column: ColumnID(8), Index: 0},
	} {
		got, changed := ApplyDrag(b, DragResult{Source: src, Destination: dest(ColumnDone, 0)})
		if changed || !got.Equal(b) {
			t.Fatalf("expected no-op for source %#v", src)
		}
	}
	got, changed := ApplyDrag(b, DragResult{
		Source:      Location{Column: ColumnTodo, Index: 0},
		Destination: dest(ColumnID(5), 0),
	})
	if changed || !got.Equal(b) {
		t.Fatal("expected no-op for invalid destination column")
	}
}

func TestApplyDragDoesNotMutateInput(t *testing.T) {
	b := sampleBoard()
	before := b.Clone()
	_, _ = ApplyDrag(b, DragResult{
		Source:      Location{Column: ColumnTodo, Index: 0},
		Destination: dest(ColumnTodo, 2),
	})
	_, _ = ApplyDrag(b, DragResult{
		Source:      Location{Column: ColumnTodo, Index: 0},
		Destination: dest(ColumnDone, 0),
	})
	if !b.Equal(before) {
		t.Fatalf("input board mutated: %#v", b)
	}
}
