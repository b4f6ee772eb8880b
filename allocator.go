package assuan

import "github.com/codacy-stress-test/libassuan/system"

// gcAllocator is the default Allocator: plain Go-GC-backed slices. It is
// what Context.Alloc holds when no embedder has supplied a locked/secure
// heap. The core's own line buffers, strings and command table are plain
// Go allocations and do not go through Context.Alloc.
type gcAllocator struct{}

func (gcAllocator) Allocate(n int) []byte                  { return make([]byte, n) }
func (gcAllocator) Reallocate(buf []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, buf)
	return out
}
func (gcAllocator) Free(buf []byte) {}

func allocatorOrDefault(a system.Allocator) system.Allocator {
	if a != nil {
		return a
	}
	cfg := currentConfig()
	if cfg.Allocator != nil {
		return cfg.Allocator
	}
	return gcAllocator{}
}
