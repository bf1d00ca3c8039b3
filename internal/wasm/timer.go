package wasm

import "time"

// newWaitTimer schedules fn to run after the given nanosecond duration, used by
// MemoryInstance.Wait to implement atomic wait's optional timeout.
func newWaitTimer(durationNanos int64, fn func()) *time.Timer {
	return time.AfterFunc(time.Duration(durationNanos), fn)
}
