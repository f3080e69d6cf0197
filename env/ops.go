package env

import (
	"github.com/wippyai/hostbridge/host"
)

// Each operation below is one host round trip.

func (e *Env) create(ref host.Ref, err error) (Handle, error) {
	if err != nil {
		return Handle{}, err
	}
	return e.adopt(ref), nil
}

func (e *Env) open(h Handle) (host.Ref, error) {
	if err := e.trip(); err != nil {
		return host.Invalid, err
	}
	return e.resolve(h)
}

// Undefined returns a handle to undefined.
func (e *Env) Undefined() (Handle, error) {
	if err := e.trip(); err != nil {
		return Handle{}, err
	}
	return e.adopt(host.UndefinedRef), nil
}

// Null returns a handle to null.
func (e *Env) Null() (Handle, error) {
	if err := e.trip(); err != nil {
		return Handle{}, err
	}
	return e.adopt(host.NullRef), nil
}

// Boolean returns a handle to b.
func (e *Env) Boolean(b bool) (Handle, error) {
	if err := e.trip(); err != nil {
		return Handle{}, err
	}
	return e.adopt(e.mgr.heap.NewBool(b)), nil
}

// Number creates a number.
func (e *Env) Number(f float64) (Handle, error) {
	if err := e.trip(); err != nil {
		return Handle{}, err
	}
	return e.adopt(e.mgr.heap.NewNumber(f)), nil
}

// CreateString creates a string from UTF-8 text.
func (e *Env) CreateString(s string) (Handle, error) {
	if err := e.trip(); err != nil {
		return Handle{}, err
	}
	return e.create(e.mgr.heap.NewString(s))
}

// CreateStringUTF16 creates a string from raw code units.
func (e *Env) CreateStringUTF16(units []uint16) (Handle, error) {
	if err := e.trip(); err != nil {
		return Handle{}, err
	}
	return e.create(e.mgr.heap.NewStringUnits(units))
}

// TypeOf returns the dynamic type of h.
func (e *Env) TypeOf(h Handle) (host.Kind, error) {
	ref, err := e.open(h)
	if err != nil {
		return 0, err
	}
	return e.mgr.heap.Kind(ref)
}

// NumberValue reads a number.
func (e *Env) NumberValue(h Handle) (float64, error) {
	ref, err := e.open(h)
	if err != nil {
		return 0, err
	}
	return e.mgr.heap.Number(ref)
}

// BoolValue reads a boolean.
func (e *Env) BoolValue(h Handle) (bool, error) {
	ref, err := e.open(h)
	if err != nil {
		return false, err
	}
	return e.mgr.heap.Bool(ref)
}

// StringLength returns the length of a string in UTF-16 code units.
func (e *Env) StringLength(h Handle) (int, error) {
	ref, err := e.open(h)
	if err != nil {
		return 0, err
	}
	return e.mgr.heap.StringLen(ref)
}

// StringValue decodes a string to UTF-8.
func (e *Env) StringValue(h Handle) (string, error) {
	ref, err := e.open(h)
	if err != nil {
		return "", err
	}
	return e.mgr.heap.String(ref)
}

// StringUTF16 returns a copy of a string's code units.
func (e *Env) StringUTF16(h Handle) ([]uint16, error) {
	ref, err := e.open(h)
	if err != nil {
		return nil, err
	}
	return e.mgr.heap.StringUTF16(ref)
}

// CreateBuffer copies data into a new host buffer.
func (e *Env) CreateBuffer(data []byte) (Handle, error) {
	if err := e.trip(); err != nil {
		return Handle{}, err
	}
	return e.create(e.mgr.heap.NewBuffer(data))
}

// BufferLength returns the size of a buffer in bytes.
func (e *Env) BufferLength(h Handle) (int, error) {
	ref, err := e.open(h)
	if err != nil {
		return 0, err
	}
	return e.mgr.heap.BufferLen(ref)
}

// BufferCopy returns an owned copy of a buffer's bytes.
func (e *Env) BufferCopy(h Handle) ([]byte, error) {
	ref, err := e.open(h)
	if err != nil {
		return nil, err
	}
	view, err := e.mgr.heap.BufferBytes(ref)
	if err != nil {
		return nil, err
	}
	return append(make([]byte, 0, len(view)), view...), nil
}

// BufferView returns a zero-copy view of a buffer, valid until the Env closes.
func (e *Env) BufferView(h Handle) (*BufferView, error) {
	ref, err := e.open(h)
	if err != nil {
		return nil, err
	}
	if _, err := e.mgr.heap.BufferLen(ref); err != nil {
		return nil, err
	}
	return &BufferView{env: e, h: h}, nil
}

// CreateObject creates an empty object.
func (e *Env) CreateObject() (Handle, error) {
	if err := e.trip(); err != nil {
		return Handle{}, err
	}
	return e.adopt(e.mgr.heap.NewObject()), nil
}

// GetNamed reads property key of obj. A missing property reads as undefined.
func (e *Env) GetNamed(obj Handle, key string) (Handle, error) {
	ref, err := e.open(obj)
	if err != nil {
		return Handle{}, err
	}
	v, _, err := e.mgr.heap.Get(ref, key)
	if err != nil {
		return Handle{}, err
	}
	return e.borrow(v)
}

// HasNamed reports whether obj has property key.
func (e *Env) HasNamed(obj Handle, key string) (bool, error) {
	ref, err := e.open(obj)
	if err != nil {
		return false, err
	}
	return e.mgr.heap.Has(ref, key)
}

// SetNamed stores val under key.
func (e *Env) SetNamed(obj Handle, key string, val Handle) error {
	ref, err := e.open(obj)
	if err != nil {
		return err
	}
	v, err := e.resolve(val)
	if err != nil {
		return err
	}
	return e.mgr.heap.Set(ref, key, v)
}

// PropertyNames returns the keys of obj in insertion order.
func (e *Env) PropertyNames(obj Handle) ([]string, error) {
	ref, err := e.open(obj)
	if err != nil {
		return nil, err
	}
	return e.mgr.heap.Keys(ref)
}

// CreateArray creates an array of n undefined elements.
func (e *Env) CreateArray(n int) (Handle, error) {
	if err := e.trip(); err != nil {
		return Handle{}, err
	}
	return e.adopt(e.mgr.heap.NewArray(n)), nil
}

// ArrayLength returns the length of arr.
func (e *Env) ArrayLength(arr Handle) (int, error) {
	ref, err := e.open(arr)
	if err != nil {
		return 0, err
	}
	return e.mgr.heap.Len(ref)
}

// GetElement reads element i of arr.
func (e *Env) GetElement(arr Handle, i int) (Handle, error) {
	ref, err := e.open(arr)
	if err != nil {
		return Handle{}, err
	}
	v, err := e.mgr.heap.Index(ref, i)
	if err != nil {
		return Handle{}, err
	}
	return e.borrow(v)
}

// SetElement stores val at index i of arr.
func (e *Env) SetElement(arr Handle, i int, val Handle) error {
	ref, err := e.open(arr)
	if err != nil {
		return err
	}
	v, err := e.resolve(val)
	if err != nil {
		return err
	}
	return e.mgr.heap.SetIndex(ref, i, v)
}
