package wasi

import (
	"context"

	"github.com/wasmlite/wasmlite/api"
)

// argsGetFn implements args_get: writes argc null-terminated strings to argvBuf, and an array of
// uint32le offsets into argvBuf (one per argument) to argv. Grounded on libwasi's
// args_environ_get (wasi_abi_environ.c), shared by both args_get and environ_get there.
func argsGetFn(cfg *Config) func(context.Context, api.Module, []uint64) Errno {
	return func(ctx context.Context, mod api.Module, params []uint64) Errno {
		return writeStrings(ctx, mod, uint32(params[0]), uint32(params[1]), cfg.Args)
	}
}

// argsSizesGetFn implements args_sizes_get: writes the argument count to resultArgc and the total
// null-terminated byte length of all arguments to resultArgvLen.
func argsSizesGetFn(cfg *Config) func(context.Context, api.Module, []uint64) Errno {
	return func(ctx context.Context, mod api.Module, params []uint64) Errno {
		return writeSizes(ctx, mod, uint32(params[0]), uint32(params[1]), cfg.Args)
	}
}

// writeStrings writes len(values) uint32le offsets to ptr, then the values themselves
// null-terminated to buf, matching the layout args_get and environ_get share.
func writeStrings(ctx context.Context, mod api.Module, ptr, buf uint32, values []string) Errno {
	mem := mod.Memory()
	offsets := make([]uint32, len(values))
	cursor := buf
	for i, v := range values {
		offsets[i] = cursor
		cursor += uint32(len(v)) + 1
	}
	for i, off := range offsets {
		if !mem.WriteUint32Le(ctx, ptr+uint32(i)*4, off) {
			return ErrnoFault
		}
	}
	for i, v := range values {
		if !mem.Write(ctx, offsets[i], append([]byte(v), 0)) {
			return ErrnoFault
		}
	}
	return ErrnoSuccess
}

// writeSizes writes len(values) to countPtr and the total null-terminated byte length to lenPtr.
func writeSizes(ctx context.Context, mod api.Module, countPtr, lenPtr uint32, values []string) Errno {
	total := uint32(0)
	for _, v := range values {
		total += uint32(len(v)) + 1
	}
	mem := mod.Memory()
	if !mem.WriteUint32Le(ctx, countPtr, uint32(len(values))) {
		return ErrnoFault
	}
	if !mem.WriteUint32Le(ctx, lenPtr, total) {
		return ErrnoFault
	}
	return ErrnoSuccess
}
