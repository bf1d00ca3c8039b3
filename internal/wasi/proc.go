package wasi

import (
	"context"

	"github.com/wasmlite/wasmlite/api"
	"go.uber.org/zap"
)

// procExitFn implements proc_exit, which has no WASI return value: preview1 specifies the module
// stops executing immediately. This engine achieves that through CloseWithExitCode rather than a
// panic/longjmp, since every call boundary (Engine.callFunction) already checks Module.Exited()
// before doing further work, matching libwasi's wasi_proc_exit except for the unwind mechanism.
func procExitFn(cfg *Config) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		exitCode := uint32(stack[0])
		cfg.logger().Debug("proc_exit", zap.String("module", mod.Name()), zap.Uint32("code", exitCode))
		_ = mod.CloseWithExitCode(ctx, exitCode)
	}
}
