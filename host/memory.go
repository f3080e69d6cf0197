package host

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/errors"
)

const (
	// PageSize is the WebAssembly page size.
	PageSize = 65536

	// MaxPages is the largest 32-bit linear memory.
	MaxPages = 65536

	// payload blocks are 8-byte aligned; offset 0 is never handed out
	blockAlign = 8
	firstPtr   = blockAlign
)

var (
	_ hostbridge.Memory    = (*LinearMemory)(nil)
	_ hostbridge.Allocator = (*LinearMemory)(nil)
)

// LinearMemory is a wazero linear memory used as the payload store of the heap,
// with a first-fit free-list allocator on top.
type LinearMemory struct {
	rt       wazero.Runtime
	mod      api.Module
	mem      api.Memory
	free     []block
	next     uint32
	inUse    uint32
	maxPages uint32
}

type block struct {
	ptr  uint32
	size uint32
}

// NewLinearMemory instantiates a module exporting a single memory of
// initialPages pages that may grow up to maxPages.
func NewLinearMemory(ctx context.Context, initialPages, maxPages uint32) (*LinearMemory, error) {
	if initialPages == 0 {
		initialPages = 1
	}
	if maxPages == 0 || maxPages > MaxPages {
		maxPages = MaxPages
	}
	if initialPages > maxPages {
		return nil, errors.InvalidInput(errors.PhaseHost,
			fmt.Sprintf("initial pages %d exceed maximum %d", initialPages, maxPages))
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithMemoryLimitPages(maxPages).
		WithDebugInfoEnabled(false))

	mod, err := rt.InstantiateWithConfig(ctx, memoryModule(initialPages),
		wazero.NewModuleConfig().WithName("hostbridge-heap"))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseHost, errors.KindAllocation, err, "instantiate linear memory")
	}

	mem := mod.Memory()
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.InvalidInput(errors.PhaseHost, "heap module has no memory")
	}

	return &LinearMemory{
		rt:       rt,
		mod:      mod,
		mem:      mem,
		next:     firstPtr,
		maxPages: maxPages,
	}, nil
}

// memoryModule encodes (module (memory (export "memory") N)).
func memoryModule(pages uint32) []byte {
	limits := appendULEB128([]byte{0x01, 0x00}, pages)

	bin := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	bin = append(bin, 0x05)
	bin = appendULEB128(bin, uint32(len(limits)))
	bin = append(bin, limits...)

	name := "memory"
	export := []byte{0x01, byte(len(name))}
	export = append(export, name...)
	export = append(export, 0x02, 0x00)

	bin = append(bin, 0x07)
	bin = appendULEB128(bin, uint32(len(export)))
	return append(bin, export...)
}

func appendULEB128(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}

// Read returns a view of length bytes at offset. The view aliases linear
// memory and must be copied if it is kept.
func (m *LinearMemory) Read(offset uint32, length uint32) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *LinearMemory) Write(offset uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

// Size returns the current memory size in bytes.
func (m *LinearMemory) Size() uint32 {
	return m.mem.Size()
}

// InUse returns the number of allocated payload bytes.
func (m *LinearMemory) InUse() uint32 {
	return m.inUse
}

// Alloc reserves size bytes. Zero-sized requests return offset 0.
// Blocks are 8-byte aligned, which satisfies every align up to 8.
func (m *LinearMemory) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		return 0, nil
	}
	if align > blockAlign {
		return 0, errors.AllocationFailed(errors.PhaseHost, size, align)
	}
	rounded, ok := roundUp(size)
	if !ok {
		return 0, errors.AllocationFailed(errors.PhaseHost, size, align)
	}

	for i, b := range m.free {
		if b.size < rounded {
			continue
		}
		if b.size == rounded {
			m.free = append(m.free[:i], m.free[i+1:]...)
		} else {
			m.free[i] = block{ptr: b.ptr + rounded, size: b.size - rounded}
		}
		m.inUse += rounded
		return b.ptr, nil
	}

	end := uint64(m.next) + uint64(rounded)
	if end > uint64(m.mem.Size()) {
		if err := m.grow(end); err != nil {
			return 0, err
		}
	}

	ptr := m.next
	m.next = uint32(end)
	m.inUse += rounded
	return ptr, nil
}

func (m *LinearMemory) grow(end uint64) error {
	have := uint64(m.mem.Size())
	delta := (end - have + PageSize - 1) / PageSize
	current := have / PageSize
	if current+delta > uint64(m.maxPages) {
		return errors.New(errors.PhaseHost, errors.KindAllocation).
			Detail("linear memory limit of %d pages reached", m.maxPages).
			Build()
	}
	if _, ok := m.mem.Grow(uint32(delta)); !ok {
		return errors.New(errors.PhaseHost, errors.KindAllocation).
			Detail("grow linear memory by %d pages", delta).
			Build()
	}
	return nil
}

// Free returns a block to the allocator.
func (m *LinearMemory) Free(ptr, size, align uint32) {
	if ptr == 0 || size == 0 {
		return
	}
	rounded, ok := roundUp(size)
	if !ok {
		return
	}
	m.inUse -= rounded

	// release the tail block back to the bump region
	if ptr+rounded == m.next {
		m.next = ptr
		return
	}
	m.free = append(m.free, block{ptr: ptr, size: rounded})
}

// Close releases the wazero runtime backing the memory.
func (m *LinearMemory) Close(ctx context.Context) error {
	return m.rt.Close(ctx)
}

func roundUp(size uint32) (uint32, bool) {
	r := (uint64(size) + blockAlign - 1) &^ (blockAlign - 1)
	if r > uint64(^uint32(0)) {
		return 0, false
	}
	return uint32(r), true
}
