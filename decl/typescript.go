package decl

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/naming"
	"github.com/wippyai/hostbridge/value"
)

// Header is written at the top of generated files.
const Header = "// Code generated by hostbridge. DO NOT EDIT."

// TSType renders t as a TypeScript type expression.
func TSType(t value.Type) (string, error) {
	if t.Nullable {
		inner, err := TSType(t.Inner())
		if err != nil {
			return "", err
		}
		if t.Inner().Category == value.CategoryNull {
			return inner, nil
		}
		return inner + " | null", nil
	}

	switch t.Category {
	case value.CategoryUndefined:
		return "undefined", nil
	case value.CategoryNull:
		return "null", nil
	case value.CategoryNumber:
		return "number", nil
	case value.CategoryString:
		return "string", nil
	case value.CategoryBoolean:
		return "boolean", nil
	case value.CategoryBuffer:
		return "Buffer", nil
	case value.CategoryArray:
		elem, err := elemOf(t)
		if err != nil {
			return "", err
		}
		s, err := TSType(elem)
		if err != nil {
			return "", err
		}
		return "Array<" + s + ">", nil
	case value.CategoryObject:
		switch {
		case t.Shape != nil:
			return naming.Pascal(t.Shape.Name), nil
		case t.Elem != nil:
			s, err := TSType(*t.Elem)
			if err != nil {
				return "", err
			}
			return "Record<string, " + s + ">", nil
		default:
			return "object", nil
		}
	}
	return "", unsupported(t, "no TypeScript representation")
}

func tsResult(t value.Type) (string, error) {
	if !t.Nullable && t.Category == value.CategoryUndefined {
		return "void", nil
	}
	return TSType(t)
}

// tsParams renders a parameter list. Trailing nullable parameters are
// optional, since missing arguments arrive as undefined.
func tsParams(params []value.Param) (string, error) {
	optionalFrom := len(params)
	for i := len(params) - 1; i >= 0 && params[i].Type.Nullable; i-- {
		optionalFrom = i
	}

	parts := make([]string, len(params))
	for i, p := range params {
		s, err := TSType(p.Type)
		if err != nil {
			return "", errors.At(errors.PhaseDeclare, err, []string{fmt.Sprintf("param[%d]", i)})
		}
		name := p.Key
		if i >= optionalFrom {
			name += "?"
		}
		parts[i] = name + ": " + s
	}
	return strings.Join(parts, ", "), nil
}

// Signature renders fn as an arrow function type, e.g.
// (a: number, b: number) => number.
func Signature(fn value.Function) (string, error) {
	params, err := tsParams(fn.Params)
	if err != nil {
		return "", located(fn, err)
	}
	ret, err := tsResult(fn.Result)
	if err != nil {
		return "", located(fn, err)
	}
	return "(" + params + ") => " + ret, nil
}

// Declaration renders fn as an exported function declaration.
func Declaration(fn value.Function) (string, error) {
	params, err := tsParams(fn.Params)
	if err != nil {
		return "", located(fn, err)
	}
	ret, err := tsResult(fn.Result)
	if err != nil {
		return "", located(fn, err)
	}
	return fmt.Sprintf("export function %s(%s): %s;", fn.HostName, params, ret), nil
}

// Interface renders s as an exported interface.
func Interface(s *value.Shape) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "export interface %s {\n", naming.Pascal(s.Name))
	for _, f := range s.Fields {
		t, err := TSType(f.Type)
		if err != nil {
			return "", errors.At(errors.PhaseDeclare, err, []string{s.Name, f.Name})
		}
		key := f.Key
		if f.Optional {
			key += "?"
		}
		fmt.Fprintf(&b, "  %s: %s;\n", key, t)
	}
	b.WriteString("}")
	return b.String(), nil
}

// TypeScript renders a declaration file for fns: one interface per shape
// followed by one declaration per function. Shapes in declared come first in
// their given order, then any other shape fns reference.
func TypeScript(fns []value.Function, declared ...*value.Shape) ([]byte, error) {
	shapes, err := value.CollectShapes(declared, fns)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString(Header)
	b.WriteString("\n")

	for _, s := range shapes {
		decl, err := Interface(s)
		if err != nil {
			return nil, err
		}
		b.WriteString("\n")
		b.WriteString(decl)
		b.WriteString("\n")
	}

	if len(fns) > 0 {
		b.WriteString("\n")
	}
	for _, fn := range fns {
		decl, err := Declaration(fn)
		if err != nil {
			return nil, err
		}
		b.WriteString(decl)
		b.WriteString("\n")
	}
	return b.Bytes(), nil
}
