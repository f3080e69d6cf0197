package shape

import (
	"reflect"

	"github.com/wippyai/hostbridge/convert"
	"github.com/wippyai/hostbridge/env"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/host"
	"github.com/wippyai/hostbridge/naming"
	"github.com/wippyai/hostbridge/value"
)

// Descriptor converts a struct T to and from host objects.
type Descriptor[T any] struct {
	info   *value.Shape
	fields []Field[T]
	keys   []string
}

// Describe validates fields against T and returns its descriptor. name is the
// snake_case or PascalCase name of the shape.
func Describe[T any](name string, fields ...Field[T]) (*Descriptor[T], error) {
	typ := reflect.TypeFor[T]()
	shapeName := naming.Pascal(name)

	fail := func(cause error) (*Descriptor[T], error) {
		return nil, errors.Registration("shape "+shapeName, cause)
	}

	if err := naming.ValidatePascal(shapeName); err != nil {
		return fail(err)
	}
	if typ.Kind() != reflect.Struct {
		return fail(errors.UnsupportedType(typ.String(), "shape target must be a struct"))
	}

	var zero T
	base := reflect.ValueOf(&zero).Elem()

	info := &value.Shape{Name: shapeName, Fields: make([]value.Field, 0, len(fields))}
	d := &Descriptor[T]{info: info, fields: fields, keys: make([]string, len(fields))}
	seen := make(map[string]bool, len(fields))

	for i, f := range fields {
		if err := naming.Validate(f.name); err != nil {
			return fail(err)
		}
		if seen[f.name] {
			return fail(errors.Duplicate("field", f.name))
		}
		seen[f.name] = true

		sf, ok := locate(base, f.addr(&zero))
		if !ok {
			return fail(errors.UnsupportedType(typ.String(),
				"accessor for "+f.name+" does not address a field of the struct"))
		}
		if !sf.IsExported() {
			return fail(errors.UnsupportedType(typ.String()+"."+sf.Name, "unexported field"))
		}
		if err := value.Check(f.goType, f.typ); err != nil {
			return fail(err)
		}

		key := naming.Camel(f.name)
		d.keys[i] = key
		info.Fields = append(info.Fields, value.Field{
			Name:     f.name,
			Key:      key,
			Type:     f.typ,
			Optional: f.optional,
		})
	}
	return d, nil
}

// MustDescribe is like Describe but panics on error. It is meant for
// package-level descriptors.
func MustDescribe[T any](name string, fields ...Field[T]) *Descriptor[T] {
	d, err := Describe(name, fields...)
	if err != nil {
		panic(err)
	}
	return d
}

// locate finds the struct field whose address is ptr.
func locate(base reflect.Value, ptr any) (reflect.StructField, bool) {
	pv := reflect.ValueOf(ptr)
	if pv.Kind() != reflect.Ptr || pv.IsNil() {
		return reflect.StructField{}, false
	}
	typ := base.Type()
	for i := 0; i < typ.NumField(); i++ {
		fv := base.Field(i)
		if fv.Addr().Pointer() == pv.Pointer() && fv.Type() == pv.Elem().Type() {
			return typ.Field(i), true
		}
	}
	return reflect.StructField{}, false
}

// Info returns the shape's data view used by the declaration synthesizer.
func (d *Descriptor[T]) Info() *value.Shape {
	return d.info
}

// Name returns the PascalCase shape name.
func (d *Descriptor[T]) Name() string {
	return d.info.Name
}

// Type returns the Object type described by d.
func (d *Descriptor[T]) Type() value.Type {
	return value.ShapeOf(d.info)
}

// ToNative converts a host object to T.
func (d *Descriptor[T]) ToNative(e *env.Env, h env.Handle) (T, error) {
	return d.Rule().ToNative(e, h)
}

// ToHost converts v to a fresh host object.
func (d *Descriptor[T]) ToHost(e *env.Env, v T) (env.Handle, error) {
	return d.Rule().ToHost(e, v)
}

// Rule returns a conversion rule for T, so shapes nest in ArrayOf, MapOf,
// Option and other shapes.
func (d *Descriptor[T]) Rule() convert.Rule[T] {
	return convert.New[T](d.Type(), value.CostPerMember, d.toNative, d.toHost)
}

func (d *Descriptor[T]) toNative(e *env.Env, h env.Handle, path []string) (T, error) {
	var out T
	k, err := e.TypeOf(h)
	if err != nil {
		return out, err
	}
	if k != host.KindObject {
		return out, errors.TypeMismatch(errors.PhaseToNative, path, reflect.TypeFor[T]().String(), k.String())
	}

	for i, f := range d.fields {
		fh, err := e.GetNamed(h, d.keys[i])
		if err != nil {
			return out, err
		}
		if err := f.toNative(e, fh, &out, appendPath(path, d.keys[i])); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (d *Descriptor[T]) toHost(e *env.Env, v T, path []string) (env.Handle, error) {
	obj, err := e.CreateObject()
	if err != nil {
		return env.Handle{}, err
	}
	for i, f := range d.fields {
		fh, err := f.toHost(e, &v, appendPath(path, d.keys[i]))
		if err != nil {
			return env.Handle{}, err
		}
		if err := e.SetNamed(obj, d.keys[i], fh); err != nil {
			return env.Handle{}, err
		}
	}
	return obj, nil
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
