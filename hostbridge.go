package hostbridge

// Memory is the host runtime's linear memory holding string and buffer payloads
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	Size() uint32
}

// Allocator allocates payload space in linear memory
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}
