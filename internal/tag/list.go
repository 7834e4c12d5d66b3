package tag

import "fmt"

// List is a homogeneous sequence of Tags. Elem names the variant of every
// item; an empty list may carry KindEnd.
type List struct {
	Elem  Kind
	Items []Tag
}

// Kind implements Tag.
func (*List) Kind() Kind { return KindList }
func (*List) sealed()    {}

// NewList returns an empty list of the given element kind.
func NewList(elem Kind) *List {
	return &List{Elem: elem}
}

// Append adds v to the list.
//
// Precondition: v.Kind() matches Elem, or the list is empty and untyped.
// Postcondition: returns an error and leaves the list unchanged on mismatch.
func (l *List) Append(v Tag) error {
	if v == nil {
		return fmt.Errorf("tag: cannot append nil to list")
	}
	if l.Elem == KindEnd && len(l.Items) == 0 {
		l.Elem = v.Kind()
	}
	if v.Kind() != l.Elem {
		return fmt.Errorf("tag: cannot append %s to list of %s", v.Kind(), l.Elem)
	}
	l.Items = append(l.Items, v)
	return nil
}

// Len returns the number of items.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// Compounds returns the compound items. Items of another variant are skipped.
func (l *List) Compounds() []*Compound {
	if l == nil {
		return nil
	}
	out := make([]*Compound, 0, len(l.Items))
	for _, it := range l.Items {
		if c, ok := it.(*Compound); ok {
			out = append(out, c)
		}
	}
	return out
}

// Strings returns the string items. Items of another variant are skipped.
func (l *List) Strings() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.Items))
	for _, it := range l.Items {
		if s, ok := it.(String); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// Ints returns the Int items. Items of another variant are skipped.
func (l *List) Ints() []int32 {
	if l == nil {
		return nil
	}
	out := make([]int32, 0, len(l.Items))
	for _, it := range l.Items {
		if i, ok := it.(Int); ok {
			out = append(out, int32(i))
		}
	}
	return out
}

// Equal reports whether l and o have the same element kind and items.
// Two empty lists are equal regardless of element kind.
func (l *List) Equal(o *List) bool {
	if l.Len() != o.Len() {
		return false
	}
	if l.Len() == 0 {
		return true
	}
	if l.Elem != o.Elem {
		return false
	}
	for i := range l.Items {
		if !Equal(l.Items[i], o.Items[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of l.
func (l *List) Clone() *List {
	if l == nil {
		return &List{}
	}
	out := &List{Elem: l.Elem, Items: make([]Tag, len(l.Items))}
	for i, it := range l.Items {
		out.Items[i] = Clone(it)
	}
	return out
}

// StringList builds a list of String items.
func StringList(values ...string) *List {
	l := NewList(KindString)
	for _, v := range values {
		l.Items = append(l.Items, String(v))
	}
	return l
}

// CompoundList builds a list of Compound items.
func CompoundList(values ...*Compound) *List {
	l := NewList(KindCompound)
	for _, v := range values {
		l.Items = append(l.Items, v)
	}
	return l
}

// IntList builds a list of Int items.
func IntList(values ...int32) *List {
	l := NewList(KindInt)
	for _, v := range values {
		l.Items = append(l.Items, Int(v))
	}
	return l
}
