package value

import "github.com/wippyai/hostbridge/errors"

// SameShape reports whether a and b declare the same fields in the same
// order. Nested shapes compare by name.
func SameShape(a, b *Shape) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Name != b.Name || len(a.Fields) != len(b.Fields) {
		return false
	}
	for i, f := range a.Fields {
		g := b.Fields[i]
		if f.Name != g.Name || f.Key != g.Key || f.Optional != g.Optional || !f.Type.Equal(g.Type) {
			return false
		}
	}
	return true
}

// ShapeSet binds shape names to shapes and remembers the order they were
// first bound. The zero value is ready to use.
type ShapeSet struct {
	byName map[string]*Shape
	order  []*Shape
}

// Add binds every shape reachable from types, nested shapes included. Binding
// a name to a shape that differs from the one already bound fails with a
// duplicate error and leaves the set unchanged.
func (s *ShapeSet) Add(types ...Type) error {
	var added []*Shape
	pending := map[string]*Shape{}
	var err error
	for _, t := range types {
		t.Walk(func(t Type) {
			if err != nil || t.Shape == nil {
				return
			}
			bound, ok := s.byName[t.Shape.Name]
			if !ok {
				bound, ok = pending[t.Shape.Name]
			}
			switch {
			case !ok:
				pending[t.Shape.Name] = t.Shape
				added = append(added, t.Shape)
			case !SameShape(bound, t.Shape):
				err = errors.Duplicate("shape", t.Shape.Name)
			}
		})
		if err != nil {
			return err
		}
	}

	if s.byName == nil {
		s.byName = make(map[string]*Shape, len(added))
	}
	for _, sh := range added {
		s.byName[sh.Name] = sh
	}
	s.order = append(s.order, added...)
	return nil
}

// Lookup returns the shape bound to name.
func (s *ShapeSet) Lookup(name string) (*Shape, bool) {
	sh, ok := s.byName[name]
	return sh, ok
}

// Shapes returns the bound shapes in the order they were first bound.
func (s *ShapeSet) Shapes() []*Shape {
	return append([]*Shape(nil), s.order...)
}

// Len returns the number of bound shapes.
func (s *ShapeSet) Len() int {
	return len(s.order)
}

// Types returns the parameter and result types of f.
func (f Function) Types() []Type {
	out := make([]Type, 0, len(f.Params)+1)
	for _, p := range f.Params {
		out = append(out, p.Type)
	}
	return append(out, f.Result)
}

// CollectShapes lists declared followed by every other shape fns reference,
// in first-use order. Two different shapes sharing a name fail with a
// duplicate error.
func CollectShapes(declared []*Shape, fns []Function) ([]*Shape, error) {
	var set ShapeSet
	for _, s := range declared {
		if err := set.Add(ShapeOf(s)); err != nil {
			return nil, err
		}
	}
	for _, fn := range fns {
		if err := set.Add(fn.Types()...); err != nil {
			return nil, err
		}
	}
	return set.Shapes(), nil
}
