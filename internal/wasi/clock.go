package wasi

import (
	"context"
	"time"

	"github.com/wasmlite/wasmlite/api"
)

// WASI clock IDs this package supports. Process/thread CPU-time clocks were removed upstream and
// are not implemented (see libwasi/wasi_abi_clock.c's wasi_convert_clockid).
const (
	clockIDRealtime = iota
	clockIDMonotonic
)

// clockTimeGetFn implements clock_time_get: writes epoch (realtime) or arbitrary-origin
// (monotonic) nanoseconds as a uint64le to resultTimestamp. precision is accepted but ignored,
// matching libwasi's own "REVISIT what to do with the precision" stance.
func clockTimeGetFn(cfg *Config) func(context.Context, api.Module, []uint64) Errno {
	return func(ctx context.Context, mod api.Module, params []uint64) Errno {
		id := uint32(params[0])
		resultTimestamp := uint32(params[2])

		var nanos uint64
		switch id {
		case clockIDRealtime:
			sec, nsec := cfg.walltime()
			nanos = uint64(sec)*uint64(time.Second) + uint64(nsec)
		case clockIDMonotonic:
			nanos = uint64(cfg.nanotime())
		default:
			return ErrnoInval
		}
		if !mod.Memory().WriteUint64Le(ctx, resultTimestamp, nanos) {
			return ErrnoFault
		}
		return ErrnoSuccess
	}
}

func (c *Config) walltime() (int64, uint32) {
	if c.Walltime != nil {
		return c.Walltime()
	}
	now := time.Now()
	return now.Unix(), uint32(now.Nanosecond())
}

func (c *Config) nanotime() int64 {
	if c.Nanotime != nil {
		return c.Nanotime()
	}
	return time.Now().UnixNano()
}
