package wasm

import (
	"sync"

	"github.com/wasmlite/wasmlite/api"
)

// ModuleInstance is the runtime object a Linker produces from a validated Module: every index
// space resolved to concrete storage, whether owned locally or borrowed from an import
// (spec.md §4.7).
type ModuleInstance struct {
	Name string

	Types     []*FunctionType
	Functions []*FunctionInstance
	Tables    []*TableInstance
	Memories  []*MemoryInstance
	Globals   []*GlobalInstance

	Exports map[string]*Export

	DataSegments    []*DataSegmentInstance
	ElementSegments []*ElementSegmentInstance

	// StartFunction is the module's start function, if any, resolved to its instance. Instantiate
	// does not call it; the caller invokes it once after a successful Instantiate.
	StartFunction *FunctionInstance

	// exited and exitCode record a WASI-style voluntary exit so in-flight calls on other goroutines
	// observe it as a Trap on their next host-call boundary check (spec.md §7).
	mu       sync.Mutex
	exited   bool
	exitCode uint32
}

// SetExited marks the instance as having voluntarily exited with the given code. Safe for
// concurrent use; idempotent.
func (m *ModuleInstance) SetExited(code uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exited {
		m.exited = true
		m.exitCode = code
	}
}

// Exited reports whether the instance has voluntarily exited, and its exit code if so.
func (m *ModuleInstance) Exited() (bool, uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exited, m.exitCode
}

// LookupExport resolves a name to an index-space member, or nil if absent.
func (m *ModuleInstance) LookupExport(name string) *Export {
	return m.Exports[name]
}

// FunctionInstance is either a Wasm-defined function (Code/Module set, GoFunc nil) or a host
// function supplied by the embedder (GoFunc set, Code nil), unified so the call path and
// call_indirect's signature check don't need to special-case the origin (spec.md §4.7, §6).
type FunctionInstance struct {
	Type *FunctionType

	// Wasm-defined function fields.
	Module *ModuleInstance // the defining instance, for local.get of globals etc. during execution
	Code   *Code

	// Host function fields.
	GoFunc     api.GoModuleFunction
	HostModule string
	HostName   string

	// DebugName is used in trap backtraces and CLI output only.
	DebugName string
}

// IsHostFunction reports whether this instance wraps an embedder-supplied Go function.
func (f *FunctionInstance) IsHostFunction() bool { return f.GoFunc != nil }

// TableInstance is a table's runtime storage: a slice of (possibly null) references. Elements are
// stored as raw uint64s using the same encoding as value-stack cells (funcref: an index into the
// owning module instance's function index space plus 1, 0 meaning null; externref: an opaque host-assigned id,
// see api.EncodeExternref).
type TableInstance struct {
	Type     ValueType
	Max      *uint32
	Elements []uint64
}

// Grow attempts to grow the table by delta elements, filling new slots with init. Returns the
// previous length, or false if the growth was refused (exceeds Max or the runtime ceiling).
func (t *TableInstance) Grow(delta uint32, init uint64) (previous uint32, ok bool) {
	previous = uint32(len(t.Elements))
	newLen := uint64(previous) + uint64(delta)
	max := TableMaxSize
	if t.Max != nil && *t.Max < max {
		max = *t.Max
	}
	if newLen > uint64(max) {
		return previous, false
	}
	grown := make([]uint64, newLen)
	copy(grown, t.Elements)
	for i := previous; i < uint32(newLen); i++ {
		grown[i] = init
	}
	t.Elements = grown
	return previous, true
}

// waitBucketCount is the number of address buckets memory.atomic.wait/notify hash into. A fixed
// small table (rather than one lock per byte address, or one lock for the whole memory) bounds
// both contention between unrelated addresses and the bookkeeping cost of tracking live waiters.
const waitBucketCount = 32

// waitBucket is one of a MemoryInstance's address-keyed wait queues: a stdlib Mutex/Cond pair,
// matching the portable semantics spec.md §4.6 needs (no OS-specific futex).
type waitBucket struct {
	mu   sync.Mutex
	cond *sync.Cond
}

// MemoryInstance is a linear memory's runtime storage, growable up to Max pages (or
// MemoryMaxPages absent a declared max). IsShared memories additionally support the threads
// proposal's atomic wait/notify, backed by address-bucketed condition variables (spec.md §4.6).
type MemoryInstance struct {
	Data     []byte
	Max      uint32 // in pages; MemoryMaxPages if the module declared none
	IsShared bool

	waitBuckets [waitBucketCount]waitBucket
}

// NewMemoryInstance allocates a MemoryInstance with the given initial page count.
func NewMemoryInstance(initialPages, maxPages uint32, shared bool) *MemoryInstance {
	m := &MemoryInstance{
		Data:     make([]byte, uint64(initialPages)*uint64(MemoryPageSize)),
		Max:      maxPages,
		IsShared: shared,
	}
	for i := range m.waitBuckets {
		m.waitBuckets[i].cond = sync.NewCond(&m.waitBuckets[i].mu)
	}
	return m
}

// bucketFor hashes a byte address down to one of the fixed wait buckets. Addresses that collide
// share a queue and simply wake spuriously, which memory.atomic.wait's re-check-after-wake
// contract already has to tolerate.
func (m *MemoryInstance) bucketFor(addr uint32) *waitBucket {
	return &m.waitBuckets[(addr/8)%waitBucketCount]
}

// PageCount returns the current size in pages.
func (m *MemoryInstance) PageCount() uint32 { return uint32(len(m.Data)) / MemoryPageSize }

// Grow extends memory by delta pages, returning the previous size, or false if refused.
func (m *MemoryInstance) Grow(delta uint32) (previous uint32, ok bool) {
	previous = m.PageCount()
	newPages := uint64(previous) + uint64(delta)
	if newPages > uint64(m.Max) {
		return previous, false
	}
	grown := make([]byte, newPages*uint64(MemoryPageSize))
	copy(grown, m.Data)
	m.Data = grown
	return previous, true
}

// Wait blocks the calling goroutine on addr's bucket until Notify targeting that bucket is called
// or timeoutNanos elapses (<0 meaning forever), returning 0 ("ok, woken by notify"), 1 ("timed
// out"); the caller re-reads the expected value before calling Wait, so a spurious wake from a
// bucket collision is indistinguishable from (and handled the same as) a real notify.
func (m *MemoryInstance) Wait(addr uint32, timeoutNanos int64) (result uint32) {
	b := m.bucketFor(addr)
	b.mu.Lock()
	defer b.mu.Unlock()
	if timeoutNanos < 0 {
		b.cond.Wait()
		return 0
	}
	done := make(chan struct{})
	timer := newWaitTimer(timeoutNanos, func() { b.mu.Lock(); close(done); b.cond.Broadcast(); b.mu.Unlock() })
	defer timer.Stop()
	woken := make(chan struct{})
	go func() {
		b.cond.Wait()
		close(woken)
	}()
	select {
	case <-woken:
		return 0
	case <-done:
		return 1
	}
}

// Notify wakes goroutines blocked in Wait on addr's bucket. The count argument (how many waiters
// to wake) is advisory: Broadcast wakes every waiter on the bucket, and each re-checks its own
// address, matching the externally observable semantics spec.md requires even when two addresses
// happen to share a bucket.
func (m *MemoryInstance) Notify(addr uint32, count uint32) {
	b := m.bucketFor(addr)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cond.Broadcast()
}

// AtomicRMW performs a locked read-modify-write of the size bytes (little-endian) at addr,
// reusing the same address-bucketed mutex Wait/Notify already hash into rather than adding a
// second lock family: an atomic RMW and a waiter on the same address need to serialize against
// each other anyway. Returns the prior value.
func (m *MemoryInstance) AtomicRMW(addr uint32, size int, fn func(old uint64) uint64) uint64 {
	b := m.bucketFor(addr)
	b.mu.Lock()
	defer b.mu.Unlock()
	var old uint64
	for i := size - 1; i >= 0; i-- {
		old = old<<8 | uint64(m.Data[uint32(i)+addr])
	}
	nv := fn(old)
	for i := 0; i < size; i++ {
		m.Data[addr+uint32(i)] = byte(nv)
		nv >>= 8
	}
	return old
}

// GlobalInstance is a global's runtime storage cell.
type GlobalInstance struct {
	Type  GlobalType
	Value uint64
	mu    sync.Mutex
}

// Get reads the current value. Locking only matters for shared-memory multi-threaded embedders;
// single-threaded callers pay an uncontended mutex, not a measurable cost.
func (g *GlobalInstance) Get() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Value
}

// Set stores v. Panics are not possible; mutability is enforced by the validator, not here.
func (g *GlobalInstance) Set(v uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Value = v
}

// DataSegmentInstance is a passive or already-applied-active data segment's runtime state: bytes
// plus a Dropped flag data.drop sets (spec.md §4.6).
type DataSegmentInstance struct {
	Bytes   []byte
	Dropped bool
}

// ElementSegmentInstance is the table analogue of DataSegmentInstance.
type ElementSegmentInstance struct {
	Elements []uint64
	Type     ValueType
	Dropped  bool
}
