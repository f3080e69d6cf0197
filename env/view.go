package env

import (
	"github.com/wippyai/hostbridge/value"
)

// BufferView is a zero-copy view of a host buffer. It re-reads linear memory on
// every access and fails with a scope violation once its Env has closed.
type BufferView struct {
	env *Env
	h   Handle
}

// HostType reports the Buffer category. It is safe to call on a nil view.
func (v *BufferView) HostType() value.Type {
	return value.Scalar(value.CategoryBuffer)
}

// Handle returns the handle of the viewed buffer.
func (v *BufferView) Handle() Handle {
	return v.h
}

// Bytes returns the buffer's bytes in place. The slice must not be retained
// across host operations that allocate, and never past the Env.
func (v *BufferView) Bytes() ([]byte, error) {
	ref, err := v.env.resolve(v.h)
	if err != nil {
		return nil, err
	}
	return v.env.mgr.heap.BufferBytes(ref)
}

// Len returns the buffer length in bytes.
func (v *BufferView) Len() (int, error) {
	ref, err := v.env.resolve(v.h)
	if err != nil {
		return 0, err
	}
	return v.env.mgr.heap.BufferLen(ref)
}

// Env returns the Env the view belongs to.
func (v *BufferView) Env() *Env {
	return v.env
}
