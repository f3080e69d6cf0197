package host

import (
	"fmt"
	"reflect"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/value"
)

// MaxDepth bounds nesting for Import and Export.
const MaxDepth = 64

// Import builds a host value from a dynamic Go value: nil, value.Undefined,
// value.Null, bool, numeric types, string, []byte, slices and string-keyed maps.
// The caller owns the returned ref.
func (h *Heap) Import(v any) (Ref, error) {
	return h.importValue(v, 0)
}

func (h *Heap) importValue(v any, depth int) (Ref, error) {
	if depth > MaxDepth {
		return Invalid, errors.InvalidInput(errors.PhaseHost, fmt.Sprintf("nesting exceeds %d levels", MaxDepth))
	}

	switch x := v.(type) {
	case nil, value.Null:
		return NullRef, nil
	case value.Undefined:
		return UndefinedRef, nil
	case bool:
		return h.NewBool(x), nil
	case float64:
		return h.NewNumber(x), nil
	case float32:
		return h.NewNumber(float64(x)), nil
	case int:
		return h.NewNumber(float64(x)), nil
	case int32:
		return h.NewNumber(float64(x)), nil
	case int64:
		return h.NewNumber(float64(x)), nil
	case uint32:
		return h.NewNumber(float64(x)), nil
	case uint64:
		return h.NewNumber(float64(x)), nil
	case string:
		return h.NewString(x)
	case []byte:
		return h.NewBuffer(x)
	case []any:
		arr := h.NewArray(len(x))
		for i, el := range x {
			if err := h.importElem(arr, i, el, depth); err != nil {
				h.Release(arr)
				return Invalid, err
			}
		}
		return arr, nil
	case map[string]any:
		obj := h.NewObject()
		for k, el := range x {
			if err := h.importProp(obj, k, el, depth); err != nil {
				h.Release(obj)
				return Invalid, err
			}
		}
		return obj, nil
	}

	return h.importReflect(reflect.ValueOf(v), depth)
}

func (h *Heap) importReflect(rv reflect.Value, depth int) (Ref, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return h.NewNumber(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return h.NewNumber(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return h.NewNumber(rv.Float()), nil
	case reflect.String:
		return h.NewString(rv.String())
	case reflect.Bool:
		return h.NewBool(rv.Bool()), nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return NullRef, nil
		}
		return h.importValue(rv.Elem().Interface(), depth+1)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return NullRef, nil
		}
		arr := h.NewArray(rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if err := h.importElem(arr, i, rv.Index(i).Interface(), depth); err != nil {
				h.Release(arr)
				return Invalid, err
			}
		}
		return arr, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return NullRef, nil
		}
		obj := h.NewObject()
		iter := rv.MapRange()
		for iter.Next() {
			if err := h.importProp(obj, iter.Key().String(), iter.Value().Interface(), depth); err != nil {
				h.Release(obj)
				return Invalid, err
			}
		}
		return obj, nil
	}

	typeName := "<invalid>"
	if rv.IsValid() {
		typeName = rv.Type().String()
	}
	return Invalid, errors.New(errors.PhaseHost, errors.KindUnsupportedType).
		GoType(typeName).
		Detail("no host representation").
		Build()
}

func (h *Heap) importElem(arr Ref, i int, v any, depth int) error {
	el, err := h.importValue(v, depth+1)
	if err != nil {
		return err
	}
	defer h.Release(el)
	return h.SetIndex(arr, i, el)
}

func (h *Heap) importProp(obj Ref, key string, v any, depth int) error {
	el, err := h.importValue(v, depth+1)
	if err != nil {
		return err
	}
	defer h.Release(el)
	return h.Set(obj, key, el)
}

// Export converts a host value to a dynamic Go value. Undefined becomes
// value.Undefined{}, null becomes nil, numbers float64, strings string,
// buffers a copied []byte, arrays []any and objects map[string]any.
func (h *Heap) Export(r Ref) (any, error) {
	return h.export(r, 0)
}

func (h *Heap) export(r Ref, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, errors.InvalidInput(errors.PhaseHost, fmt.Sprintf("nesting exceeds %d levels", MaxDepth))
	}
	k, err := h.Kind(r)
	if err != nil {
		return nil, err
	}

	switch k {
	case KindUndefined:
		return value.Undefined{}, nil
	case KindNull:
		return nil, nil
	case KindBoolean:
		return h.Bool(r)
	case KindNumber:
		return h.Number(r)
	case KindString:
		return h.String(r)
	case KindBuffer:
		view, err := h.BufferBytes(r)
		if err != nil {
			return nil, err
		}
		return append([]byte{}, view...), nil
	case KindArray:
		n, _ := h.Len(r)
		out := make([]any, n)
		for i := range out {
			el, _ := h.Index(r, i)
			if out[i], err = h.export(el, depth+1); err != nil {
				return nil, err
			}
		}
		return out, nil
	case KindObject:
		keys, _ := h.Keys(r)
		out := make(map[string]any, len(keys))
		for _, key := range keys {
			el, _, _ := h.Get(r, key)
			if out[key], err = h.export(el, depth+1); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, errors.InvalidInput(errors.PhaseHost, "unknown host kind "+k.String())
}
