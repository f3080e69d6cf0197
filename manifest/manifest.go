// Package manifest reads and writes YAML descriptions of exported functions
// and shapes. A manifest is the data-driven counterpart of a registry: it
// yields the same []value.Function that declaration synthesis consumes.
package manifest

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/naming"
	"github.com/wippyai/hostbridge/value"
)

var validate = validator.New()

// Manifest is the root document.
type Manifest struct {
	Package   string     `yaml:"package" validate:"required"`
	Interface string     `yaml:"interface,omitempty"`
	Shapes    []Shape    `yaml:"shapes,omitempty" validate:"dive"`
	Functions []Function `yaml:"functions" validate:"dive"`
}

// Shape declares a named record.
type Shape struct {
	Name   string  `yaml:"name" validate:"required"`
	Fields []Field `yaml:"fields" validate:"dive"`
}

// Field declares one shape field. Optional fields are nullable whether or
// not their type is spelled option<T>.
type Field struct {
	Name     string `yaml:"name" validate:"required"`
	Type     string `yaml:"type" validate:"required"`
	Optional bool   `yaml:"optional,omitempty"`
}

// Function declares an exported function. An empty result is undefined.
type Function struct {
	Name   string  `yaml:"name" validate:"required"`
	Params []Param `yaml:"params,omitempty" validate:"dive"`
	Result string  `yaml:"result,omitempty"`
}

// Param declares one positional parameter.
type Param struct {
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"required"`
}

// DefaultInterface is used when a manifest names no interface.
const DefaultInterface = "exports"

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindInvalidInput, err, "invalid YAML")
	}
	if m.Interface == "" {
		m.Interface = DefaultInterface
	}
	if err := validate.Struct(&m); err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindInvalidInput, err, "invalid manifest")
	}
	return &m, nil
}

// Marshal encodes m as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

// Resolve type-checks the manifest and returns its functions in declared
// order. Shapes may reference each other in any order.
func (m *Manifest) Resolve() ([]value.Function, error) {
	_, fns, err := m.Declarations()
	return fns, err
}

// Declarations type-checks the manifest and returns its shapes and functions,
// each in declared order.
func (m *Manifest) Declarations() ([]*value.Shape, []value.Function, error) {
	shapes := make(map[string]*value.Shape, len(m.Shapes))
	declared := make([]*value.Shape, 0, len(m.Shapes))
	for _, s := range m.Shapes {
		name := naming.Pascal(s.Name)
		if err := naming.ValidatePascal(name); err != nil {
			return nil, nil, errors.At(errors.PhaseManifest, err, []string{"shapes", s.Name})
		}
		if _, dup := shapes[name]; dup {
			return nil, nil, errors.Duplicate("shape", s.Name)
		}
		shapes[name] = &value.Shape{Name: name}
		declared = append(declared, shapes[name])
	}

	for _, s := range m.Shapes {
		if err := resolveShape(shapes[naming.Pascal(s.Name)], s, shapes); err != nil {
			return nil, nil, err
		}
	}

	fns := make([]value.Function, 0, len(m.Functions))
	seen := make(map[string]bool, len(m.Functions))
	for _, f := range m.Functions {
		if seen[f.Name] {
			return nil, nil, errors.Duplicate("function", f.Name)
		}
		seen[f.Name] = true

		fn, err := resolveFunction(f, shapes)
		if err != nil {
			return nil, nil, err
		}
		fns = append(fns, fn)
	}
	return declared, fns, nil
}

func resolveShape(dst *value.Shape, s Shape, shapes map[string]*value.Shape) error {
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		path := []string{"shapes", s.Name, f.Name}
		if err := naming.Validate(f.Name); err != nil {
			return errors.At(errors.PhaseManifest, err, path)
		}
		if seen[f.Name] {
			return errors.Duplicate("field", s.Name+"."+f.Name)
		}
		seen[f.Name] = true

		t, err := ParseType(f.Type, shapes)
		if err != nil {
			return errors.At(errors.PhaseManifest, err, path)
		}
		if f.Optional && !t.Nullable {
			t = value.OptionOf(t)
		}
		dst.Fields = append(dst.Fields, value.Field{
			Name:     f.Name,
			Key:      naming.Camel(f.Name),
			Type:     t,
			Optional: t.Nullable,
		})
	}
	return nil
}

func resolveFunction(f Function, shapes map[string]*value.Shape) (value.Function, error) {
	if err := naming.Validate(f.Name); err != nil {
		return value.Function{}, errors.At(errors.PhaseManifest, err, []string{"functions", f.Name})
	}
	fn := value.Function{
		Name:     f.Name,
		HostName: naming.Camel(f.Name),
		Params:   make([]value.Param, len(f.Params)),
		Result:   value.Scalar(value.CategoryUndefined),
	}

	seen := make(map[string]bool, len(f.Params))
	for i, p := range f.Params {
		path := []string{"functions", f.Name, fmt.Sprintf("param[%d]", i)}
		if err := naming.Validate(p.Name); err != nil {
			return fn, errors.At(errors.PhaseManifest, err, path)
		}
		if seen[p.Name] {
			return fn, errors.Duplicate("parameter", f.Name+"."+p.Name)
		}
		seen[p.Name] = true

		t, err := ParseType(p.Type, shapes)
		if err != nil {
			return fn, errors.At(errors.PhaseManifest, err, path)
		}
		fn.Params[i] = value.Param{Name: p.Name, Key: naming.Camel(p.Name), Type: t}
	}

	if f.Result != "" {
		t, err := ParseType(f.Result, shapes)
		if err != nil {
			return fn, errors.At(errors.PhaseManifest, err, []string{"functions", f.Name, "result"})
		}
		fn.Result = t
	}
	return fn, nil
}

// FromFunctions builds a manifest describing declared, fns and every shape
// fns use. Two different shapes sharing a name fail with a duplicate error.
func FromFunctions(pkg, iface string, fns []value.Function, declared ...*value.Shape) (*Manifest, error) {
	shapes, err := value.CollectShapes(declared, fns)
	if err != nil {
		return nil, err
	}

	m := &Manifest{Package: pkg, Interface: iface}
	for _, s := range shapes {
		ms := Shape{Name: naming.Snake(s.Name)}
		for _, f := range s.Fields {
			ms.Fields = append(ms.Fields, Field{Name: f.Name, Type: f.Type.String(), Optional: f.Optional})
		}
		m.Shapes = append(m.Shapes, ms)
	}

	for _, fn := range fns {
		mf := Function{Name: fn.Name}
		for _, p := range fn.Params {
			mf.Params = append(mf.Params, Param{Name: p.Name, Type: p.Type.String()})
		}
		if fn.Result.Category != value.CategoryUndefined || fn.Result.Nullable {
			mf.Result = fn.Result.String()
		}
		m.Functions = append(m.Functions, mf)
	}
	return m, nil
}
