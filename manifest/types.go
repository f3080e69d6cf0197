package manifest

import (
	"fmt"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/naming"
	"github.com/wippyai/hostbridge/value"
)

var scalars = map[string]value.Type{
	"i32":       value.Num(value.I32),
	"u32":       value.Num(value.U32),
	"i64":       value.Num(value.I64),
	"f64":       value.Num(value.F64),
	"string":    value.Scalar(value.CategoryString),
	"bool":      value.Scalar(value.CategoryBoolean),
	"boolean":   value.Scalar(value.CategoryBoolean),
	"buffer":    value.Scalar(value.CategoryBuffer),
	"object":    value.Scalar(value.CategoryObject),
	"undefined": value.Scalar(value.CategoryUndefined),
	"null":      value.Scalar(value.CategoryNull),
}

var reserved = map[string]value.Category{
	"bigint":     value.CategoryBigInt,
	"typedarray": value.CategoryTypedArray,
}

// ParseType parses a type expression in the spelling produced by
// value.Type.String: scalars, array<T>, map<T>, option<T> and shape names.
// Shape names are resolved through shapes, keyed by PascalCase name.
func ParseType(expr string, shapes map[string]*value.Shape) (value.Type, error) {
	p := &typeParser{src: expr, shapes: shapes}
	t, err := p.parse()
	if err != nil {
		return value.Type{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return value.Type{}, p.fail("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	shapes map[string]*value.Shape
	src    string
	pos    int
}

func (p *typeParser) parse() (value.Type, error) {
	name := p.ident()
	if name == "" {
		return value.Type{}, p.fail("expected a type")
	}

	switch name {
	case "array", "map", "option":
		if !p.consume('<') {
			return value.Type{}, p.fail("%s needs a type argument", name)
		}
		inner, err := p.parse()
		if err != nil {
			return value.Type{}, err
		}
		if !p.consume('>') {
			return value.Type{}, p.fail("unterminated %s<", name)
		}
		switch name {
		case "array":
			return value.ArrayOf(inner), nil
		case "map":
			return value.MapOf(inner), nil
		}
		if inner.Nullable {
			return value.Type{}, p.fail("nested option")
		}
		return value.OptionOf(inner), nil
	}

	if t, ok := scalars[name]; ok {
		return t, nil
	}
	if c, ok := reserved[name]; ok {
		return value.Type{}, errors.UnsupportedType(name, c.String()+" category is reserved and not implemented")
	}
	if s, ok := p.shapes[naming.Pascal(name)]; ok {
		return value.ShapeOf(s), nil
	}
	return value.Type{}, p.fail("unknown type %q", name)
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) consume(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) fail(format string, args ...any) error {
	return errors.New(errors.PhaseManifest, errors.KindInvalidInput).
		Value(p.src).
		Detail("type %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...)).
		Build()
}
