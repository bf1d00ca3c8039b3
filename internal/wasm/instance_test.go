package wasm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTableInstanceGrow(t *testing.T) {
	max := uint32(4)
	tbl := &TableInstance{Type: ValueTypeFuncref, Max: &max, Elements: make([]uint64, 2)}

	prev, ok := tbl.Grow(2, 7)
	require.True(t, ok)
	require.Equal(t, uint32(2), prev)
	require.Len(t, tbl.Elements, 4)
	require.Equal(t, uint64(7), tbl.Elements[2])
	require.Equal(t, uint64(7), tbl.Elements[3])

	_, ok = tbl.Grow(1, 0)
	require.False(t, ok, "growth beyond Max must be refused")
}

func TestMemoryInstanceGrow(t *testing.T) {
	mem := NewMemoryInstance(1, 3, false)
	require.Equal(t, uint32(1), mem.PageCount())

	prev, ok := mem.Grow(2)
	require.True(t, ok)
	require.Equal(t, uint32(1), prev)
	require.Equal(t, uint32(3), mem.PageCount())
	require.Len(t, mem.Data, int(3*MemoryPageSize))

	_, ok = mem.Grow(1)
	require.False(t, ok, "growth beyond Max must be refused")
}

func TestMemoryInstanceWaitNotify(t *testing.T) {
	mem := NewMemoryInstance(1, 1, true)

	woken := make(chan uint32, 1)
	go func() { woken <- mem.Wait(0, -1) }()

	// Give the waiter goroutine a chance to block before notifying.
	time.Sleep(10 * time.Millisecond)
	mem.Notify(0, 1)

	select {
	case result := <-woken:
		require.Equal(t, uint32(0), result)
	case <-time.After(time.Second):
		t.Fatal("Notify did not wake the waiter")
	}
}

func TestMemoryInstanceWaitTimesOut(t *testing.T) {
	mem := NewMemoryInstance(1, 1, true)
	result := mem.Wait(0, int64(5*time.Millisecond))
	require.Equal(t, uint32(1), result)
}

func TestGlobalInstanceGetSet(t *testing.T) {
	g := &GlobalInstance{Type: GlobalType{ValType: ValueTypeI32, Mutable: true}}
	require.Equal(t, uint64(0), g.Get())
	g.Set(42)
	require.Equal(t, uint64(42), g.Get())
}

func TestModuleInstanceExitedIsIdempotent(t *testing.T) {
	inst := &ModuleInstance{}
	exited, _ := inst.Exited()
	require.False(t, exited)

	inst.SetExited(7)
	inst.SetExited(99) // second call must not overwrite the first exit code
	exited, code := inst.Exited()
	require.True(t, exited)
	require.Equal(t, uint32(7), code)
}
