package codegen

import (
	"cmp"
	"fmt"
	"letc/internal/ast"
	"slices"
)

// DefaultWidth is the bit width of every slot the lowerer creates.
const DefaultWidth = 64

// Slot is a named, fixed-width data-section cell holding one literal operand.
type Slot struct {
	Name       string
	Binding    string
	Value      int64
	Op         ast.Operator // ast.OpNone for a bare single-literal binding
	Occurrence int          // per-operator run counter (0 when Op is none)
	Chain      int          // position within the run
	Width      int          // bits: 8, 16, 32 or 64
}

func (s *Slot) String() string {
	return fmt.Sprintf("%s = %d (%s, %d bits)", s.Name, s.Value, s.Op, s.Width)
}

// SlotTable owns every slot produced during one compile pass.
type SlotTable struct {
	byName    map[string]*Slot
	byBinding map[string][]*Slot
	order     []*Slot
}

// NewSlotTable returns an empty table.
func NewSlotTable() *SlotTable {
	return &SlotTable{
		byName:    map[string]*Slot{},
		byBinding: map[string][]*Slot{},
	}
}

// Allocate inserts s. A name that already exists means the naming scheme is
// broken, so it is reported as an internal error rather than a user error.
func (t *SlotTable) Allocate(s *Slot) error {
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	switch s.Width {
	case 8, 16, 32, 64:
	default:
		return internalErrorf("slot width", "slot %q has unsupported width %d", s.Name, s.Width)
	}
	if prev, ok := t.byName[s.Name]; ok {
		return internalErrorf("unique slot names", "slot %q allocated twice (bindings %q and %q)", s.Name, prev.Binding, s.Binding)
	}
	t.byName[s.Name] = s
	t.byBinding[s.Binding] = append(t.byBinding[s.Binding], s)
	t.order = append(t.order, s)
	return nil
}

// Lookup returns the slots of one binding in allocation order, or nil when
// the binding owns none. The mapping is explicit: "foo" never picks up the
// slots of "foobar".
func (t *SlotTable) Lookup(binding string) []*Slot {
	return slices.Clone(t.byBinding[binding])
}

// Get returns the slot with the given name.
func (t *SlotTable) Get(name string) (*Slot, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// Slots returns every slot in allocation order.
func (t *SlotTable) Slots() []*Slot {
	return slices.Clone(t.order)
}

// Len returns the number of slots.
func (t *SlotTable) Len() int {
	return len(t.order)
}

// SortByName orders slots by name, comparing runs of digits numerically so
// that "x_plus_1_10" sorts after "x_plus_1_9" and a run's slots stay
// adjacent no matter how many runs there are.
func SortByName(slots []*Slot) {
	slices.SortStableFunc(slots, func(a, b *Slot) int {
		return compareNatural(a.Name, b.Name)
	})
}

func compareNatural(a, b string) int {
	for a != "" && b != "" {
		da, db := isDigitByte(a[0]), isDigitByte(b[0])
		if da && db {
			na, ra := leadingDigits(a)
			nb, rb := leadingDigits(b)
			if c := compareDigits(na, nb); c != 0 {
				return c
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return cmp.Compare(a[0], b[0])
		}
		a, b = a[1:], b[1:]
	}
	return cmp.Compare(len(a), len(b))
}

func leadingDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigitByte(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// compareDigits compares two decimal strings by value.
func compareDigits(a, b string) int {
	a, b = trimZeros(a), trimZeros(b)
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

func isDigitByte(c byte) bool {
	return c >= '0' && c <= '9'
}
