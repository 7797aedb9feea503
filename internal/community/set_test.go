package community

import (
	"reflect"
	"testing"
)

func TestSetAlgebra(t *testing.T) {
	a := NewSet(1, 2, 3)
	b := NewSet(2, 3, 4)

	tests := []struct {
		name string
		got  Set
		want []int
	}{
		{"intersect", a.Intersect(b), []int{2, 3}},
		{"difference", a.Difference(b), []int{1}},
		{"reverse difference", b.Difference(a), []int{4}},
		{"symmetric difference", a.SymmetricDifference(b), []int{1, 4}},
		{"union", a.Union(b), []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got.Sorted(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	// Operands are left untouched.
	if !a.Equal(NewSet(1, 2, 3)) || !b.Equal(NewSet(2, 3, 4)) {
		t.Error("set operations mutated their operands")
	}
}

func TestSet_CloneIsIndependent(t *testing.T) {
	a := NewSet(1)
	c := a.Clone()
	c.Add(2)
	if a.Has(2) {
		t.Error("Clone shares storage with the original")
	}
}

func TestSet_SortedEmpty(t *testing.T) {
	if got := NewSet().Sorted(); len(got) != 0 {
		t.Errorf("Sorted() = %v, want empty", got)
	}
}
