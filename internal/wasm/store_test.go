package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreRegisterAndLookup(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.Module("mod"))

	inst1 := &ModuleInstance{Name: "mod"}
	replaced := s.Register("mod", inst1)
	require.Nil(t, replaced)
	require.Same(t, inst1, s.Module("mod"))

	inst2 := &ModuleInstance{Name: "mod"}
	replaced = s.Register("mod", inst2)
	require.Same(t, inst1, replaced)
	require.Same(t, inst2, s.Module("mod"))
}

func TestStoreUnregister(t *testing.T) {
	s := NewStore()
	inst := &ModuleInstance{Name: "mod"}
	s.Register("mod", inst)

	removed := s.Unregister("mod")
	require.Same(t, inst, removed)
	require.Nil(t, s.Module("mod"))
	require.Nil(t, s.Unregister("mod"))
}

func TestIdAllocatorReusesFreedIds(t *testing.T) {
	var a idAllocator
	id0 := a.Alloc()
	id1 := a.Alloc()
	require.Equal(t, uint32(0), id0)
	require.Equal(t, uint32(1), id1)

	a.Free(id0)
	reused := a.Alloc()
	require.Equal(t, id0, reused, "a freed id must be preferred over minting a new one")

	id2 := a.Alloc()
	require.Equal(t, uint32(2), id2, "once the free list is empty, allocation keeps growing the counter")
}
