package wasi

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmlite/wasmlite/api"
)

// fakeMemory is a minimal api.Memory backed by a plain byte slice, enough to drive the functions
// in this package without standing up a full ModuleInstance.
type fakeMemory struct {
	data []byte
}

func (m *fakeMemory) Size(context.Context) uint32 { return uint32(len(m.data)) }
func (m *fakeMemory) Grow(context.Context, uint32) (uint32, bool) { return 0, false }

func (m *fakeMemory) ReadByte(_ context.Context, offset uint32) (byte, bool) {
	if int(offset) >= len(m.data) {
		return 0, false
	}
	return m.data[offset], true
}

func (m *fakeMemory) ReadUint32Le(_ context.Context, offset uint32) (uint32, bool) {
	if int(offset)+4 > len(m.data) {
		return 0, false
	}
	b := m.data[offset : offset+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, true
}

func (m *fakeMemory) ReadUint64Le(_ context.Context, offset uint32) (uint64, bool) {
	lo, ok := m.ReadUint32Le(context.Background(), offset)
	if !ok {
		return 0, false
	}
	hi, ok := m.ReadUint32Le(context.Background(), offset+4)
	if !ok {
		return 0, false
	}
	return uint64(lo) | uint64(hi)<<32, true
}

func (m *fakeMemory) ReadFloat32Le(context.Context, uint32) (float32, bool) { return 0, false }
func (m *fakeMemory) ReadFloat64Le(context.Context, uint32) (float64, bool) { return 0, false }

func (m *fakeMemory) Read(_ context.Context, offset, byteCount uint32) ([]byte, bool) {
	if int(offset)+int(byteCount) > len(m.data) {
		return nil, false
	}
	return m.data[offset : offset+byteCount], true
}

func (m *fakeMemory) WriteByte(_ context.Context, offset uint32, v byte) bool {
	if int(offset) >= len(m.data) {
		return false
	}
	m.data[offset] = v
	return true
}

func (m *fakeMemory) WriteUint32Le(_ context.Context, offset, v uint32) bool {
	if int(offset)+4 > len(m.data) {
		return false
	}
	b := m.data[offset : offset+4]
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	return true
}

func (m *fakeMemory) WriteUint64Le(_ context.Context, offset uint32, v uint64) bool {
	if !m.WriteUint32Le(context.Background(), offset, uint32(v)) {
		return false
	}
	return m.WriteUint32Le(context.Background(), offset+4, uint32(v>>32))
}

func (m *fakeMemory) WriteFloat32Le(context.Context, uint32, float32) bool { return false }
func (m *fakeMemory) WriteFloat64Le(context.Context, uint32, float64) bool { return false }

func (m *fakeMemory) Write(_ context.Context, offset uint32, v []byte) bool {
	if int(offset)+len(v) > len(m.data) {
		return false
	}
	copy(m.data[offset:], v)
	return true
}

// fakeModule is a minimal api.Module wrapping a fakeMemory, with CloseWithExitCode recording the
// exit code for assertions.
type fakeModule struct {
	mem      *fakeMemory
	exited   bool
	exitCode uint32
}

func (m *fakeModule) String() string          { return "fake" }
func (m *fakeModule) Name() string             { return "fake" }
func (m *fakeModule) Memory() api.Memory       { return m.mem }
func (m *fakeModule) ExportedFunction(string) api.Function { return nil }
func (m *fakeModule) ExportedMemory(string) api.Memory     { return nil }
func (m *fakeModule) ExportedGlobal(string) api.Global     { return nil }

func (m *fakeModule) CloseWithExitCode(_ context.Context, exitCode uint32) error {
	m.exited = true
	m.exitCode = exitCode
	return nil
}

func newFakeModule(size int) *fakeModule {
	return &fakeModule{mem: &fakeMemory{data: make([]byte, size)}}
}

func TestArgsGetWritesOffsetsAndNullTerminatedValues(t *testing.T) {
	cfg := &Config{Args: []string{"a", "bc"}}
	mod := newFakeModule(64)

	const argv, argvBuf = 0, 16
	errno := argsGetFn(cfg)(context.Background(), mod, []uint64{argv, argvBuf})
	require.Equal(t, ErrnoSuccess, errno)

	off0, _ := mod.mem.ReadUint32Le(context.Background(), argv)
	off1, _ := mod.mem.ReadUint32Le(context.Background(), argv+4)
	require.Equal(t, uint32(argvBuf), off0)
	require.Equal(t, uint32(argvBuf+2), off1)

	b, _ := mod.mem.Read(context.Background(), argvBuf, 5)
	require.Equal(t, []byte{'a', 0, 'b', 'c', 0}, b)
}

func TestArgsSizesGet(t *testing.T) {
	cfg := &Config{Args: []string{"a", "bc"}}
	mod := newFakeModule(16)

	errno := argsSizesGetFn(cfg)(context.Background(), mod, []uint64{0, 8})
	require.Equal(t, ErrnoSuccess, errno)

	argc, _ := mod.mem.ReadUint32Le(context.Background(), 0)
	argvLen, _ := mod.mem.ReadUint32Le(context.Background(), 8)
	require.Equal(t, uint32(2), argc)
	require.Equal(t, uint32(5), argvLen) // "a\0bc\0"
}

func TestEnvironGetMirrorsArgsGet(t *testing.T) {
	cfg := &Config{Environ: []string{"FOO=bar"}}
	mod := newFakeModule(32)

	errno := environGetFn(cfg)(context.Background(), mod, []uint64{0, 8})
	require.Equal(t, ErrnoSuccess, errno)

	b, _ := mod.mem.Read(context.Background(), 8, 8)
	require.Equal(t, append([]byte("FOO=bar"), 0), b)
}

func TestArgsGetFaultsOnOutOfBoundsOffset(t *testing.T) {
	cfg := &Config{Args: []string{"toolong"}}
	mod := newFakeModule(4)

	errno := argsGetFn(cfg)(context.Background(), mod, []uint64{0, 100})
	require.Equal(t, ErrnoFault, errno)
}

func TestClockTimeGetRealtimeAndMonotonic(t *testing.T) {
	cfg := &Config{
		Walltime: func() (int64, uint32) { return 1_700_000_000, 123 },
		Nanotime: func() int64 { return 42 },
	}
	mod := newFakeModule(16)

	errno := clockTimeGetFn(cfg)(context.Background(), mod, []uint64{clockIDRealtime, 0, 0})
	require.Equal(t, ErrnoSuccess, errno)
	ts, _ := mod.mem.ReadUint64Le(context.Background(), 0)
	require.Equal(t, uint64(1_700_000_000)*1e9+123, ts)

	errno = clockTimeGetFn(cfg)(context.Background(), mod, []uint64{clockIDMonotonic, 0, 8})
	require.Equal(t, ErrnoSuccess, errno)
	mono, _ := mod.mem.ReadUint64Le(context.Background(), 8)
	require.Equal(t, uint64(42), mono)
}

func TestClockTimeGetInvalidClockID(t *testing.T) {
	cfg := &Config{}
	mod := newFakeModule(16)
	errno := clockTimeGetFn(cfg)(context.Background(), mod, []uint64{99, 0, 0})
	require.Equal(t, ErrnoInval, errno)
}

func TestFdWriteGathersIovecsToStdout(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Stdout: &buf}
	mod := newFakeModule(64)

	// iovs at 0: two entries pointing at "wasm" (offset 32, len 4) and "lite" (offset 40, len 4).
	copy(mod.mem.data[32:], []byte("wasm"))
	copy(mod.mem.data[40:], []byte("lite"))
	mod.mem.WriteUint32Le(context.Background(), 0, 32)
	mod.mem.WriteUint32Le(context.Background(), 4, 4)
	mod.mem.WriteUint32Le(context.Background(), 8, 40)
	mod.mem.WriteUint32Le(context.Background(), 12, 4)

	errno := fdWriteFn(cfg)(context.Background(), mod, []uint64{1, 0, 2, 16})
	require.Equal(t, ErrnoSuccess, errno)
	require.Equal(t, "wasmlite", buf.String())

	written, _ := mod.mem.ReadUint32Le(context.Background(), 16)
	require.Equal(t, uint32(8), written)
}

func TestFdWriteBadFileDescriptor(t *testing.T) {
	cfg := &Config{}
	mod := newFakeModule(32)
	errno := fdWriteFn(cfg)(context.Background(), mod, []uint64{3, 0, 0, 16})
	require.Equal(t, ErrnoBadf, errno)
}

func TestProcExitClosesModuleWithCode(t *testing.T) {
	cfg := &Config{}
	mod := newFakeModule(0)
	procExitFn(cfg)(context.Background(), mod, []uint64{42})
	require.True(t, mod.exited)
	require.Equal(t, uint32(42), mod.exitCode)
}

func TestNewHostModuleRegistersExpectedExports(t *testing.T) {
	inst := NewHostModule(&Config{})
	for _, name := range []string{
		"args_get", "args_sizes_get",
		"environ_get", "environ_sizes_get",
		"clock_time_get", "fd_write", "proc_exit",
	} {
		require.NotNil(t, inst.LookupExport(name), name)
	}
	require.Equal(t, ModuleName, inst.Name)
}
