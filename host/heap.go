package host

import (
	"context"
	"math"

	"github.com/wippyai/hostbridge/errors"
)

// Ref addresses a value in the heap.
type Ref uint32

// Reserved refs. They are never freed and Retain/Release ignore them.
const (
	Invalid Ref = iota
	UndefinedRef
	NullRef
	TrueRef
	FalseRef

	reserved
)

// IsReserved reports whether r is one of the immortal refs.
func (r Ref) IsReserved() bool {
	return r < reserved
}

type entry struct {
	props map[string]Ref
	keys  []string
	elems []Ref
	num   float64
	ptr   uint32
	size  uint32
	refs  int32
	kind  Kind
}

// Heap is the host runtime's value store.
type Heap struct {
	mem     *LinearMemory
	entries []entry
	free    []Ref
	live    int
}

// NewHeap creates a heap whose payloads live in mem. The heap takes ownership
// of mem and closes it in Close.
func NewHeap(mem *LinearMemory) *Heap {
	h := &Heap{
		mem:     mem,
		entries: make([]entry, reserved, 64),
	}
	h.entries[UndefinedRef] = entry{kind: KindUndefined, refs: 1}
	h.entries[NullRef] = entry{kind: KindNull, refs: 1}
	h.entries[TrueRef] = entry{kind: KindBoolean, refs: 1, num: 1}
	h.entries[FalseRef] = entry{kind: KindBoolean, refs: 1}
	return h
}

// Memory returns the linear memory backing string and buffer payloads.
func (h *Heap) Memory() *LinearMemory {
	return h.mem
}

// Live returns the number of non-reserved values currently alive.
func (h *Heap) Live() int {
	return h.live
}

// Close releases the heap's linear memory. Refs must not be used afterwards.
func (h *Heap) Close(ctx context.Context) error {
	h.entries = nil
	h.free = nil
	h.live = 0
	return h.mem.Close(ctx)
}

func (h *Heap) alloc(e entry) Ref {
	e.refs = 1
	h.live++
	if n := len(h.free); n > 0 {
		r := h.free[n-1]
		h.free = h.free[:n-1]
		h.entries[r] = e
		return r
	}
	h.entries = append(h.entries, e)
	return Ref(len(h.entries) - 1)
}

func (h *Heap) lookup(r Ref) (*entry, error) {
	if r == Invalid || int(r) >= len(h.entries) || h.entries[r].refs <= 0 {
		return nil, errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Value(uint32(r)).
			Detail("invalid or released ref %d", r).
			Build()
	}
	return &h.entries[r], nil
}

func (h *Heap) expect(r Ref, k Kind) (*entry, error) {
	e, err := h.lookup(r)
	if err != nil {
		return nil, err
	}
	if e.kind != k {
		return nil, errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			HostType(e.kind.String()).
			Detail("expected %s, got %s", k, e.kind).
			Build()
	}
	return e, nil
}

// Kind returns the dynamic type of r.
func (h *Heap) Kind(r Ref) (Kind, error) {
	e, err := h.lookup(r)
	if err != nil {
		return 0, err
	}
	return e.kind, nil
}

// Retain increments the reference count of r.
func (h *Heap) Retain(r Ref) error {
	if r.IsReserved() && r != Invalid {
		return nil
	}
	e, err := h.lookup(r)
	if err != nil {
		return err
	}
	e.refs++
	return nil
}

// Release decrements the reference count of r, freeing it and releasing its
// members when the count reaches zero.
func (h *Heap) Release(r Ref) {
	if r.IsReserved() || int(r) >= len(h.entries) {
		return
	}
	e := &h.entries[r]
	if e.refs <= 0 {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}

	dead := *e
	h.entries[r] = entry{}
	h.free = append(h.free, r)
	h.live--

	if dead.size > 0 {
		h.mem.Free(dead.ptr, dead.size, 1)
	}
	for _, k := range dead.keys {
		h.Release(dead.props[k])
	}
	for _, el := range dead.elems {
		h.Release(el)
	}
}

// NewNumber creates a number value.
func (h *Heap) NewNumber(f float64) Ref {
	return h.alloc(entry{kind: KindNumber, num: f})
}

// NewBool returns the reserved ref for b.
func (h *Heap) NewBool(b bool) Ref {
	if b {
		return TrueRef
	}
	return FalseRef
}

// Number returns the value of a number.
func (h *Heap) Number(r Ref) (float64, error) {
	e, err := h.expect(r, KindNumber)
	if err != nil {
		return 0, err
	}
	return e.num, nil
}

// Bool returns the value of a boolean.
func (h *Heap) Bool(r Ref) (bool, error) {
	e, err := h.expect(r, KindBoolean)
	if err != nil {
		return false, err
	}
	return e.num != 0, nil
}

// NewBuffer copies data into linear memory and returns a buffer value.
func (h *Heap) NewBuffer(data []byte) (Ref, error) {
	ptr, size, err := h.store(data)
	if err != nil {
		return Invalid, err
	}
	return h.alloc(entry{kind: KindBuffer, ptr: ptr, size: size}), nil
}

func (h *Heap) store(data []byte) (uint32, uint32, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return 0, 0, errors.AllocationFailed(errors.PhaseHost, math.MaxUint32, 1)
	}
	size := uint32(len(data))
	ptr, err := h.mem.Alloc(size, 1)
	if err != nil {
		return 0, 0, err
	}
	if err := h.mem.Write(ptr, data); err != nil {
		h.mem.Free(ptr, size, 1)
		return 0, 0, errors.Wrap(errors.PhaseHost, errors.KindAllocation, err, "write payload")
	}
	return ptr, size, nil
}

// BufferBytes returns a view of the buffer's bytes in linear memory. The view
// is only valid until the next allocation, which may grow the memory.
func (h *Heap) BufferBytes(r Ref) ([]byte, error) {
	e, err := h.expect(r, KindBuffer)
	if err != nil {
		return nil, err
	}
	return h.mem.Read(e.ptr, e.size)
}

// BufferLen returns the buffer length in bytes.
func (h *Heap) BufferLen(r Ref) (int, error) {
	e, err := h.expect(r, KindBuffer)
	if err != nil {
		return 0, err
	}
	return int(e.size), nil
}

// NewObject creates an empty object.
func (h *Heap) NewObject() Ref {
	return h.alloc(entry{kind: KindObject, props: make(map[string]Ref)})
}

// Get returns the property key of obj. A missing key yields UndefinedRef and
// false. The returned ref is borrowed from the object.
func (h *Heap) Get(obj Ref, key string) (Ref, bool, error) {
	e, err := h.expect(obj, KindObject)
	if err != nil {
		return Invalid, false, err
	}
	v, ok := e.props[key]
	if !ok {
		return UndefinedRef, false, nil
	}
	return v, true, nil
}

// Has reports whether obj has the property key.
func (h *Heap) Has(obj Ref, key string) (bool, error) {
	e, err := h.expect(obj, KindObject)
	if err != nil {
		return false, err
	}
	_, ok := e.props[key]
	return ok, nil
}

// Set stores v under key, retaining v and releasing any previous value.
func (h *Heap) Set(obj Ref, key string, v Ref) error {
	if _, err := h.lookup(v); err != nil {
		return err
	}
	e, err := h.expect(obj, KindObject)
	if err != nil {
		return err
	}
	if err := h.Retain(v); err != nil {
		return err
	}
	// Retain cannot grow entries, so e is still valid
	old, ok := e.props[key]
	if !ok {
		e.keys = append(e.keys, key)
	}
	e.props[key] = v
	if ok {
		h.Release(old)
	}
	return nil
}

// Keys returns the property names of obj in insertion order.
func (h *Heap) Keys(obj Ref) ([]string, error) {
	e, err := h.expect(obj, KindObject)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), e.keys...), nil
}

// NewArray creates an array of n undefined elements.
func (h *Heap) NewArray(n int) Ref {
	elems := make([]Ref, n)
	for i := range elems {
		elems[i] = UndefinedRef
	}
	return h.alloc(entry{kind: KindArray, elems: elems})
}

// Len returns the length of an array.
func (h *Heap) Len(arr Ref) (int, error) {
	e, err := h.expect(arr, KindArray)
	if err != nil {
		return 0, err
	}
	return len(e.elems), nil
}

// Index returns element i of arr, or UndefinedRef when i is out of range.
// The returned ref is borrowed from the array.
func (h *Heap) Index(arr Ref, i int) (Ref, error) {
	e, err := h.expect(arr, KindArray)
	if err != nil {
		return Invalid, err
	}
	if i < 0 || i >= len(e.elems) {
		return UndefinedRef, nil
	}
	return e.elems[i], nil
}

// SetIndex stores v at index i, extending the array with undefined as needed.
func (h *Heap) SetIndex(arr Ref, i int, v Ref) error {
	if i < 0 {
		return errors.InvalidInput(errors.PhaseHost, "negative array index")
	}
	if _, err := h.lookup(v); err != nil {
		return err
	}
	e, err := h.expect(arr, KindArray)
	if err != nil {
		return err
	}
	if err := h.Retain(v); err != nil {
		return err
	}
	for len(e.elems) <= i {
		e.elems = append(e.elems, UndefinedRef)
	}
	old := e.elems[i]
	e.elems[i] = v
	h.Release(old)
	return nil
}
