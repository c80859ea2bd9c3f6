package codegen

import (
	"errors"
	"letc/internal/ast"
	"strings"
	"testing"
)

func TestSlotTableAllocate(t *testing.T) {
	tbl := NewSlotTable()
	s := &Slot{Name: "x_plus_1_0", Binding: "x", Value: 3, Op: ast.OpPlus, Occurrence: 1}
	if err := tbl.Allocate(s); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if s.Width != DefaultWidth {
		t.Errorf("width = %d, want %d", s.Width, DefaultWidth)
	}
	got, ok := tbl.Get("x_plus_1_0")
	if !ok || got != s {
		t.Fatalf("Get returned %v, %v", got, ok)
	}

	err := tbl.Allocate(&Slot{Name: "x_plus_1_0", Binding: "y"})
	var ie *InternalError
	if !errors.As(err, &ie) || ie.Invariant != "unique slot names" {
		t.Fatalf("expected unique slot names error, got %v", err)
	}
	if tbl.Len() != 1 {
		t.Errorf("failed allocation changed the table: len %d", tbl.Len())
	}
}

func TestSlotTableRejectsOddWidth(t *testing.T) {
	err := NewSlotTable().Allocate(&Slot{Name: "x", Binding: "x", Width: 24})
	if err == nil || !strings.Contains(err.Error(), "unsupported width 24") {
		t.Fatalf("expected width error, got %v", err)
	}
}

func TestSlotTableLookup(t *testing.T) {
	tbl := NewSlotTable()
	for _, s := range []*Slot{
		{Name: "foo_plus_1_0", Binding: "foo"},
		{Name: "foobar_plus_1_1", Binding: "foobar"},
		{Name: "foo_plus_1_2", Binding: "foo"},
	} {
		if err := tbl.Allocate(s); err != nil {
			t.Fatalf("Allocate: %v", err)
		}
	}

	foo := tbl.Lookup("foo")
	if got := strings.Join(slotNames(foo), ","); got != "foo_plus_1_0,foo_plus_1_2" {
		t.Errorf("Lookup(foo) = %s", got)
	}
	if tbl.Lookup("fo") != nil {
		t.Error("Lookup of a prefix must not match")
	}

	// The result is a copy.
	foo[0] = nil
	if tbl.Lookup("foo")[0] == nil {
		t.Error("Lookup exposed the table's slice")
	}
	if got := strings.Join(slotNames(tbl.Slots()), ","); got != "foo_plus_1_0,foobar_plus_1_1,foo_plus_1_2" {
		t.Errorf("Slots() = %s", got)
	}
}

func TestSortByNameNatural(t *testing.T) {
	slots := []*Slot{
		{Name: "x_plus_1_10"},
		{Name: "x_multiply_10_0"},
		{Name: "x_plus_1_9"},
		{Name: "x_multiply_2_1"},
		{Name: "x_multiply_2_0"},
		{Name: "x_plus_1_0"},
	}
	SortByName(slots)
	want := "x_multiply_2_0,x_multiply_2_1,x_multiply_10_0,x_plus_1_0,x_plus_1_9,x_plus_1_10"
	if got := strings.Join(slotNames(slots), ","); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestCompareNatural(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "a", 0},
		{"a2", "a10", -1},
		{"a10", "a2", 1},
		{"a02", "a2", 0},
		{"a", "ab", -1},
		{"a_1", "a1", 1},
	}
	for _, tt := range tests {
		if got := compareNatural(tt.a, tt.b); got != tt.want {
			t.Errorf("compareNatural(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
