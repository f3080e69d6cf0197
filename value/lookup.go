package value

import (
	"math/big"
	"reflect"

	"github.com/wippyai/hostbridge/errors"
)

// HostTyped is implemented by native wrapper types that carry their own
// category, such as zero-copy buffer views.
type HostTyped interface {
	HostType() Type
}

var (
	undefinedType = reflect.TypeFor[Undefined]()
	nullType      = reflect.TypeFor[Null]()
	bigIntType    = reflect.TypeFor[*big.Int]()
	hostTypedType = reflect.TypeFor[HostTyped]()
	anyType       = reflect.TypeFor[any]()
)

// Of returns the Type of the Go type T.
func Of[T any]() (Type, error) {
	return Lookup(reflect.TypeFor[T]())
}

// Lookup maps a native Go type to its Type. Unregistered kinds and the reserved
// BigInt/TypedArray categories fail with an unsupported_type error.
// Struct types other than Undefined and Null need a shape descriptor and are
// rejected here.
func Lookup(t reflect.Type) (Type, error) {
	if t == nil {
		return Type{}, errors.UnsupportedType("<nil>", "nil type")
	}

	switch t {
	case undefinedType:
		return Scalar(CategoryUndefined), nil
	case nullType:
		return Scalar(CategoryNull), nil
	case bigIntType:
		return Type{}, errors.UnsupportedType(t.String(), "bigint category is reserved and not implemented")
	}

	if t.Implements(hostTypedType) {
		return reflect.Zero(t).Interface().(HostTyped).HostType(), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return Scalar(CategoryBoolean), nil
	case reflect.Int32:
		return Num(I32), nil
	case reflect.Uint32:
		return Num(U32), nil
	case reflect.Int64:
		return Num(I64), nil
	case reflect.Float64:
		return Num(F64), nil
	case reflect.String:
		return Scalar(CategoryString), nil

	case reflect.Int, reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return Type{}, errors.UnsupportedType(t.String(), "wide integers are excluded from number and reserved for bigint")
	case reflect.Int8, reflect.Int16, reflect.Uint8, reflect.Uint16, reflect.Float32:
		return Type{}, errors.UnsupportedType(t.String(), "number kinds are i32, u32, i64 and f64")

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Scalar(CategoryBuffer), nil
		}
		elem, err := Lookup(t.Elem())
		if err != nil {
			return Type{}, wrapElem(t, err)
		}
		return ArrayOf(elem), nil

	case reflect.Array:
		return Type{}, errors.UnsupportedType(t.String(), "fixed-size arrays are reserved for the typedarray category")

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return Type{}, errors.UnsupportedType(t.String(), "object keys must be strings")
		}
		if t.Elem() == anyType {
			return Scalar(CategoryObject), nil
		}
		elem, err := Lookup(t.Elem())
		if err != nil {
			return Type{}, wrapElem(t, err)
		}
		return MapOf(elem), nil

	case reflect.Ptr:
		elem, err := Lookup(t.Elem())
		if err != nil {
			return Type{}, wrapElem(t, err)
		}
		if elem.Nullable {
			return Type{}, errors.UnsupportedType(t.String(), "nested options are not representable")
		}
		return OptionOf(elem), nil

	case reflect.Struct:
		return Type{}, errors.UnsupportedType(t.String(), "struct types need a shape descriptor")
	}

	return Type{}, errors.UnsupportedType(t.String(), "no value category for kind "+t.Kind().String())
}

func wrapElem(outer reflect.Type, err error) error {
	return errors.New(errors.PhaseRegister, errors.KindUnsupportedType).
		GoType(outer.String()).
		Detail("element type not supported").
		Cause(err).
		Build()
}

// Check verifies that a declared Type agrees with the category registry's view
// of the Go type it converts. Shape types accept any struct; the shape
// descriptor validates its fields separately.
func Check(goType reflect.Type, declared Type) error {
	if declared.Category.Reserved() {
		return errors.UnsupportedType(goType.String(), declared.Category.String()+" category is reserved and not implemented")
	}

	if declared.Shape != nil {
		if declared.Nullable {
			if goType.Kind() != reflect.Ptr {
				return mismatch(goType, declared)
			}
			goType = goType.Elem()
		}
		if goType.Kind() != reflect.Struct {
			return mismatch(goType, declared)
		}
		return nil
	}

	switch {
	case declared.Nullable:
		if goType.Kind() != reflect.Ptr {
			return mismatch(goType, declared)
		}
		return Check(goType.Elem(), declared.Inner())
	case declared.Category == CategoryArray && declared.Elem != nil:
		if goType.Kind() != reflect.Slice || goType.Elem().Kind() == reflect.Uint8 {
			return mismatch(goType, declared)
		}
		return Check(goType.Elem(), *declared.Elem)
	case declared.Category == CategoryObject && declared.Elem != nil:
		if goType.Kind() != reflect.Map || goType.Key().Kind() != reflect.String {
			return mismatch(goType, declared)
		}
		return Check(goType.Elem(), *declared.Elem)
	}

	actual, err := Lookup(goType)
	if err != nil {
		return err
	}
	if !actual.Equal(declared) {
		return mismatch(goType, declared)
	}
	return nil
}

func mismatch(goType reflect.Type, declared Type) error {
	return errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
		GoType(goType.String()).
		HostType(declared.String()).
		Detail("declared type does not match the Go type's category").
		Build()
}
