package decl

import (
	"bytes"
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/naming"
	"github.com/wippyai/hostbridge/value"
)

// witKeywords must be escaped with % when used as identifiers.
var witKeywords = map[string]bool{
	"as": true, "async": true, "bool": true, "borrow": true, "char": true,
	"constructor": true, "enum": true, "export": true, "f32": true, "f64": true,
	"flags": true, "func": true, "future": true, "import": true, "include": true,
	"interface": true, "list": true, "option": true, "own": true, "package": true,
	"record": true, "resource": true, "result": true, "s8": true, "s16": true,
	"s32": true, "s64": true, "static": true, "stream": true, "string": true,
	"tuple": true, "type": true, "u8": true, "u16": true, "u32": true, "u64": true,
	"use": true, "variant": true, "with": true, "world": true,
}

// witIdent converts a snake_case or PascalCase name to a WIT identifier.
func witIdent(name string) string {
	id := naming.Kebab(naming.Snake(name))
	if witKeywords[id] {
		return "%" + id
	}
	return id
}

// WITTypes converts value types to WIT types. Records are memoized per shape
// so that every reference to a shape yields the same *wit.TypeDef.
type WITTypes struct {
	records map[string]*wit.TypeDef
	names   map[*wit.TypeDef]string
	order   []*wit.TypeDef
}

// NewWITTypes returns an empty converter.
func NewWITTypes() *WITTypes {
	return &WITTypes{
		records: map[string]*wit.TypeDef{},
		names:   map[*wit.TypeDef]string{},
	}
}

// WITType converts t with a fresh converter.
func WITType(t value.Type) (wit.Type, error) {
	return NewWITTypes().Type(t)
}

// Type converts t. Untyped objects, undefined and null have no WIT
// representation and fail with UnsupportedType.
func (w *WITTypes) Type(t value.Type) (wit.Type, error) {
	if t.Nullable {
		if t.Inner().Category == value.CategoryNull {
			return nil, unsupported(t, "null has no WIT representation")
		}
		inner, err := w.Type(t.Inner())
		if err != nil {
			return nil, err
		}
		return &wit.TypeDef{Kind: &wit.Option{Type: inner}}, nil
	}

	switch t.Category {
	case value.CategoryNumber:
		switch t.Number {
		case value.U32:
			return wit.U32{}, nil
		case value.I32:
			return wit.S32{}, nil
		case value.I64:
			return wit.S64{}, nil
		default:
			return wit.F64{}, nil
		}
	case value.CategoryString:
		return wit.String{}, nil
	case value.CategoryBoolean:
		return wit.Bool{}, nil
	case value.CategoryBuffer:
		return &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}, nil
	case value.CategoryArray:
		elem, err := elemOf(t)
		if err != nil {
			return nil, err
		}
		inner, err := w.Type(elem)
		if err != nil {
			return nil, err
		}
		return &wit.TypeDef{Kind: &wit.List{Type: inner}}, nil
	case value.CategoryObject:
		switch {
		case t.Shape != nil:
			return w.record(t.Shape)
		case t.Elem != nil:
			inner, err := w.Type(*t.Elem)
			if err != nil {
				return nil, err
			}
			pair := &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.String{}, inner}}}
			return &wit.TypeDef{Kind: &wit.List{Type: pair}}, nil
		}
		return nil, unsupported(t, "untyped object has no WIT representation")
	}
	return nil, unsupported(t, fmt.Sprintf("%s has no WIT representation", t.Category))
}

func (w *WITTypes) record(s *value.Shape) (wit.Type, error) {
	if td, ok := w.records[s.Name]; ok {
		return td, nil
	}
	rec := &wit.Record{}
	td := &wit.TypeDef{Kind: rec}
	// registered before the fields so self references terminate
	w.records[s.Name] = td
	w.names[td] = witIdent(s.Name)

	for _, f := range s.Fields {
		ft, err := w.Type(f.Type)
		if err != nil {
			return nil, errors.At(errors.PhaseDeclare, err, []string{s.Name, f.Name})
		}
		rec.Fields = append(rec.Fields, wit.Field{Name: witIdent(f.Name), Type: ft})
	}
	w.order = append(w.order, td)
	return td, nil
}

// Name renders t the way it appears in WIT source.
func (w *WITTypes) Name(t wit.Type) string {
	switch t := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.S64:
		return "s64"
	case wit.F64:
		return "f64"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if name, ok := w.names[t]; ok {
			return name
		}
		switch k := t.Kind.(type) {
		case *wit.List:
			return "list<" + w.Name(k.Type) + ">"
		case *wit.Option:
			return "option<" + w.Name(k.Type) + ">"
		case *wit.Tuple:
			parts := make([]string, len(k.Types))
			for i, e := range k.Types {
				parts[i] = w.Name(e)
			}
			return "tuple<" + strings.Join(parts, ", ") + ">"
		}
	}
	return fmt.Sprintf("%T", t)
}

func (w *WITTypes) writeRecord(b *bytes.Buffer, td *wit.TypeDef) {
	rec := td.Kind.(*wit.Record)
	fmt.Fprintf(b, "  record %s {\n", w.names[td])
	for _, f := range rec.Fields {
		fmt.Fprintf(b, "    %s: %s,\n", f.Name, w.Name(f.Type))
	}
	b.WriteString("  }\n")
}

func (w *WITTypes) function(fn value.Function) (string, error) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		t, err := w.Type(p.Type)
		if err != nil {
			return "", located(fn, errors.At(errors.PhaseDeclare, err, []string{fmt.Sprintf("param[%d]", i)}))
		}
		params[i] = witIdent(p.Name) + ": " + w.Name(t)
	}

	sig := fmt.Sprintf("%s: func(%s)", witIdent(fn.Name), strings.Join(params, ", "))
	if fn.Result.Category == value.CategoryUndefined && !fn.Result.Nullable {
		return sig + ";", nil
	}
	t, err := w.Type(fn.Result)
	if err != nil {
		return "", located(fn, errors.At(errors.PhaseDeclare, err, []string{"result"}))
	}
	return sig + " -> " + w.Name(t) + ";", nil
}

// WIT renders fns as a WIT package containing a single interface. pkg is a
// package id such as "hostbridge:demo"; iface is the snake_case interface name.
// Records for declared are emitted before those first used by fns.
func WIT(pkg, iface string, fns []value.Function, declared ...*value.Shape) ([]byte, error) {
	if _, err := value.CollectShapes(declared, fns); err != nil {
		return nil, err
	}

	w := NewWITTypes()
	for _, s := range declared {
		if _, err := w.record(s); err != nil {
			return nil, err
		}
	}

	funcs := make([]string, len(fns))
	for i, fn := range fns {
		s, err := w.function(fn)
		if err != nil {
			return nil, err
		}
		funcs[i] = s
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s\n\npackage %s;\n\ninterface %s {\n", Header, pkg, witIdent(iface))
	for _, td := range w.order {
		w.writeRecord(&b, td)
		b.WriteString("\n")
	}
	for _, f := range funcs {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	b.WriteString("}\n")
	return b.Bytes(), nil
}
