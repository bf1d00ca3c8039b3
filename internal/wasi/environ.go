package wasi

import (
	"context"

	"github.com/wasmlite/wasmlite/api"
)

// environGetFn implements environ_get, laid out identically to args_get but over cfg.Environ
// (libwasi's args_environ_get serves both from the same helper for the same reason).
func environGetFn(cfg *Config) func(context.Context, api.Module, []uint64) Errno {
	return func(ctx context.Context, mod api.Module, params []uint64) Errno {
		return writeStrings(ctx, mod, uint32(params[0]), uint32(params[1]), cfg.Environ)
	}
}

// environSizesGetFn implements environ_sizes_get.
func environSizesGetFn(cfg *Config) func(context.Context, api.Module, []uint64) Errno {
	return func(ctx context.Context, mod api.Module, params []uint64) Errno {
		return writeSizes(ctx, mod, uint32(params[0]), uint32(params[1]), cfg.Environ)
	}
}
