package wasm

import "sync"

// Store is the collection of module instances an embedder has instantiated into one namespace,
// keyed by the name each was instantiated under, plus the id allocator that hands out stable
// integer handles for external references (spec.md §4.7's "Store" component). The id allocator is
// a plain free list: a released id is handed out again as-is, and no generation count tells a
// stale holder of that id apart from its new owner.
type Store struct {
	mu      sync.Mutex
	modules map[string]*ModuleInstance
	ids     idAllocator
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{modules: make(map[string]*ModuleInstance)}
}

// Register adds inst under name, replacing (and returning for the caller to close) any prior
// instance of that name — a fresh Instantiate of the same module name is meant to supersede the
// old one, mirroring how a host environment reloads a module.
func (s *Store) Register(name string, inst *ModuleInstance) (replaced *ModuleInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced = s.modules[name]
	s.modules[name] = inst
	return replaced
}

// Module looks up a previously registered instance by name.
func (s *Store) Module(name string) *ModuleInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modules[name]
}

// Unregister removes name from the namespace, returning the removed instance if any.
func (s *Store) Unregister(name string) *ModuleInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst := s.modules[name]
	delete(s.modules, name)
	return inst
}

// idAllocator hands out small dense integer ids with reuse, the way toywasm's lib/idalloc.c backs
// externref handles: a free list of released ids is preferred over always growing the counter, so
// long-running embedders that instantiate and close many modules don't leak id space.
type idAllocator struct {
	next uint32
	free []uint32
}

// Alloc returns an unused id, preferring a released one over minting a new one.
func (a *idAllocator) Alloc() uint32 {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		return id
	}
	id := a.next
	a.next++
	return id
}

// Free releases id back to the pool.
func (a *idAllocator) Free(id uint32) {
	a.free = append(a.free, id)
}
