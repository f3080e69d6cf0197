package decl

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/invopop/jsonschema"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/naming"
	"github.com/wippyai/hostbridge/value"
)

const maxSafeInteger = 1<<53 - 1

var numberBounds = map[value.NumberKind][2]string{
	value.I32: {strconv.Itoa(-1 << 31), strconv.Itoa(1<<31 - 1)},
	value.U32: {"0", strconv.Itoa(1<<32 - 1)},
	value.I64: {strconv.Itoa(-maxSafeInteger), strconv.Itoa(maxSafeInteger)},
}

var numberFormats = map[value.NumberKind]string{
	value.I32: "int32",
	value.U32: "uint32",
	value.I64: "int64",
	value.F64: "double",
}

// SchemaType converts t to a JSON Schema. Shapes become references into
// $defs; the referenced definitions are produced by Schema.
func SchemaType(t value.Type) (*jsonschema.Schema, error) {
	if t.Nullable {
		inner, err := SchemaType(t.Inner())
		if err != nil {
			return nil, err
		}
		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{inner, {Type: "null"}}}, nil
	}

	switch t.Category {
	case value.CategoryUndefined, value.CategoryNull:
		return &jsonschema.Schema{Type: "null"}, nil
	case value.CategoryNumber:
		s := &jsonschema.Schema{Type: "number", Format: numberFormats[t.Number]}
		if b, ok := numberBounds[t.Number]; ok {
			s.Type = "integer"
			s.Minimum = json.Number(b[0])
			s.Maximum = json.Number(b[1])
		}
		return s, nil
	case value.CategoryString:
		return &jsonschema.Schema{Type: "string"}, nil
	case value.CategoryBoolean:
		return &jsonschema.Schema{Type: "boolean"}, nil
	case value.CategoryBuffer:
		return &jsonschema.Schema{Type: "string", ContentEncoding: "base64"}, nil
	case value.CategoryArray:
		elem, err := elemOf(t)
		if err != nil {
			return nil, err
		}
		items, err := SchemaType(elem)
		if err != nil {
			return nil, err
		}
		return &jsonschema.Schema{Type: "array", Items: items}, nil
	case value.CategoryObject:
		switch {
		case t.Shape != nil:
			return &jsonschema.Schema{Ref: "#/$defs/" + naming.Pascal(t.Shape.Name)}, nil
		case t.Elem != nil:
			inner, err := SchemaType(*t.Elem)
			if err != nil {
				return nil, err
			}
			return &jsonschema.Schema{Type: "object", AdditionalProperties: inner}, nil
		}
		return &jsonschema.Schema{Type: "object"}, nil
	}
	return nil, unsupported(t, "no JSON Schema representation")
}

// ShapeSchema converts s to an object schema keyed by host property names.
func ShapeSchema(s *value.Shape) (*jsonschema.Schema, error) {
	props := jsonschema.NewProperties()
	var required []string
	for _, f := range s.Fields {
		fs, err := SchemaType(f.Type)
		if err != nil {
			return nil, errors.At(errors.PhaseDeclare, err, []string{s.Name, f.Name})
		}
		props.Set(f.Key, fs)
		if !f.Optional {
			required = append(required, f.Key)
		}
	}
	return &jsonschema.Schema{
		Type:                 "object",
		Title:                naming.Pascal(s.Name),
		Properties:           props,
		Required:             required,
		AdditionalProperties: jsonschema.FalseSchema,
	}, nil
}

// FunctionSchema describes a call to fn: its positional params as an array
// and its result.
func FunctionSchema(fn value.Function) (*jsonschema.Schema, error) {
	params := make([]*jsonschema.Schema, len(fn.Params))
	for i, p := range fn.Params {
		ps, err := SchemaType(p.Type)
		if err != nil {
			return nil, located(fn, errors.At(errors.PhaseDeclare, err, []string{fmt.Sprintf("param[%d]", i)}))
		}
		ps.Title = p.Key
		params[i] = ps
	}
	result, err := SchemaType(fn.Result)
	if err != nil {
		return nil, located(fn, errors.At(errors.PhaseDeclare, err, []string{"result"}))
	}

	props := jsonschema.NewProperties()
	props.Set("params", &jsonschema.Schema{
		Type:        "array",
		PrefixItems: params,
		Items:       jsonschema.FalseSchema,
	})
	props.Set("result", result)
	return &jsonschema.Schema{
		Type:       "object",
		Title:      fn.HostName,
		Properties: props,
	}, nil
}

// Schema builds a JSON Schema document with one $defs entry per shape and
// per function. Shape entries are keyed by PascalCase name, functions by
// host name. declared adds shapes no function references.
func Schema(id string, fns []value.Function, declared ...*value.Shape) (*jsonschema.Schema, error) {
	shapes, err := value.CollectShapes(declared, fns)
	if err != nil {
		return nil, err
	}

	defs := jsonschema.Definitions{}
	for _, s := range shapes {
		ss, err := ShapeSchema(s)
		if err != nil {
			return nil, err
		}
		defs[naming.Pascal(s.Name)] = ss
	}
	for _, fn := range fns {
		fs, err := FunctionSchema(fn)
		if err != nil {
			return nil, err
		}
		defs[fn.HostName] = fs
	}
	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		ID:          jsonschema.ID(id),
		Definitions: defs,
	}, nil
}

// SchemaJSON renders Schema as indented JSON.
func SchemaJSON(id string, fns []value.Function, declared ...*value.Shape) ([]byte, error) {
	s, err := Schema(id, fns, declared...)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
