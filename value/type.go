package value

import "strings"

// Undefined is the native representation of the host undefined value.
type Undefined struct{}

// Null is the native representation of the host null value.
type Null struct{}

// Type is a category together with the parameters it needs.
// Elem is the element type of an Array or the value type of a keyed Object.
// Shape is set for Objects with declared fields. Nullable marks Option<T>.
type Type struct {
	Elem     *Type
	Shape    *Shape
	Category Category
	Number   NumberKind
	Nullable bool
}

// Scalar returns the Type of a parameterless category.
func Scalar(c Category) Type {
	return Type{Category: c}
}

// Num returns the Number type of the given kind.
func Num(k NumberKind) Type {
	return Type{Category: CategoryNumber, Number: k}
}

// ArrayOf returns the homogeneous sequence type with element type elem.
func ArrayOf(elem Type) Type {
	return Type{Category: CategoryArray, Elem: &elem}
}

// MapOf returns the keyed Object type whose values have type elem.
func MapOf(elem Type) Type {
	return Type{Category: CategoryObject, Elem: &elem}
}

// ShapeOf returns the Object type described by s.
func ShapeOf(s *Shape) Type {
	return Type{Category: CategoryObject, Shape: s}
}

// OptionOf returns t made nullable.
func OptionOf(t Type) Type {
	t.Nullable = true
	return t
}

// Inner returns t without its nullable marker.
func (t Type) Inner() Type {
	t.Nullable = false
	return t
}

// String renders the canonical spelling used by manifests and diagnostics.
func (t Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Type) write(b *strings.Builder) {
	if t.Nullable {
		b.WriteString("option<")
		t.Inner().write(b)
		b.WriteByte('>')
		return
	}
	switch t.Category {
	case CategoryNumber:
		b.WriteString(t.Number.String())
	case CategoryBoolean:
		b.WriteString("bool")
	case CategoryArray:
		b.WriteString("array<")
		if t.Elem != nil {
			t.Elem.write(b)
		}
		b.WriteByte('>')
	case CategoryObject:
		switch {
		case t.Shape != nil:
			b.WriteString(t.Shape.Name)
		case t.Elem != nil:
			b.WriteString("map<")
			t.Elem.write(b)
			b.WriteByte('>')
		default:
			b.WriteString("object")
		}
	default:
		b.WriteString(t.Category.String())
	}
}

// Equal reports whether two types describe the same conversion.
// Shapes compare by name.
func (t Type) Equal(u Type) bool {
	if t.Category != u.Category || t.Nullable != u.Nullable {
		return false
	}
	if t.Category == CategoryNumber && t.Number != u.Number {
		return false
	}
	if (t.Shape == nil) != (u.Shape == nil) {
		return false
	}
	if t.Shape != nil && t.Shape.Name != u.Shape.Name {
		return false
	}
	if (t.Elem == nil) != (u.Elem == nil) {
		return false
	}
	if t.Elem != nil {
		return t.Elem.Equal(*u.Elem)
	}
	return true
}

// Cost returns the cost class of converting one value of t.
func (t Type) Cost() Cost {
	return t.Category.Cost()
}

// Walk calls fn for t and every type nested in it, depth first.
// Shape fields are visited; recursion through a shape already seen stops.
func (t Type) Walk(fn func(Type)) {
	t.walk(fn, map[string]bool{})
}

func (t Type) walk(fn func(Type), seen map[string]bool) {
	fn(t)
	if t.Elem != nil {
		t.Elem.walk(fn, seen)
	}
	if t.Shape != nil && !seen[t.Shape.Name] {
		seen[t.Shape.Name] = true
		for _, f := range t.Shape.Fields {
			f.Type.walk(fn, seen)
		}
	}
}

// Shape is the data view of a shape descriptor: a named record whose fields map
// one-to-one onto host object keys, in declared order.
type Shape struct {
	Name   string
	Fields []Field
}

// Field is one declared shape field. Name is the native identifier, Key the
// host-visible property name.
type Field struct {
	Name     string
	Key      string
	Type     Type
	Optional bool
}

// Field returns the field with the given native name.
func (s *Shape) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Function is the data view of an exported function.
type Function struct {
	Name     string
	HostName string
	Params   []Param
	Result   Type
}

// Param is one ordered function parameter.
type Param struct {
	Name string
	Key  string
	Type Type
}

// Shapes returns every shape referenced by the function, in first-use order
// (parameters left to right, then the result).
func (f Function) Shapes() []*Shape {
	var out []*Shape
	seen := map[string]bool{}
	collect := func(t Type) {
		if t.Shape != nil && !seen[t.Shape.Name] {
			seen[t.Shape.Name] = true
			out = append(out, t.Shape)
		}
	}
	for _, p := range f.Params {
		p.Type.Walk(collect)
	}
	f.Result.Walk(collect)
	return out
}
