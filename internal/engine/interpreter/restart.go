package interpreter

import "context"

// InterruptedError is what Engine.Call, CallWithRestart and Resume return instead of a *wasm.Trap
// when the call's context was canceled: an interruption is the embedder asking execution to stop,
// not the module doing something wrong, so it is never reported as a trap.
type InterruptedError struct {
	Cause error
}

func (e *InterruptedError) Error() string { return "wasm: interrupted: " + e.Cause.Error() }
func (e *InterruptedError) Unwrap() error { return e.Cause }

// SuspendRequest is how a host function asks the call it is part of to suspend rather than return
// normally, so the embedder can later resume it with Engine.Resume. A host function obtains one
// from its context with SuspendRequestFromContext and calls Request before returning; the engine
// only honors the request when the host function was called directly by the function passed to
// CallWithRestart (frame depth 0) — see RestartRecord.
type SuspendRequest struct {
	requested bool
}

// Request marks the call for suspension. Calling it from a host function nested more than one call
// deep has no effect: this runtime only supports single-level resumption.
func (r *SuspendRequest) Request() { r.requested = true }

type suspendRequestKey struct{}

// withSuspendRequest returns a context carrying a fresh SuspendRequest a nested host function can
// signal through, along with that request so the caller can inspect it after the call returns.
func withSuspendRequest(ctx context.Context) (context.Context, *SuspendRequest) {
	r := &SuspendRequest{}
	return context.WithValue(ctx, suspendRequestKey{}, r), r
}

// SuspendRequestFromContext returns the SuspendRequest a host function running under
// Engine.CallWithRestart or Engine.Resume can call Request on, or nil outside that call.
func SuspendRequestFromContext(ctx context.Context) *SuspendRequest {
	r, _ := ctx.Value(suspendRequestKey{}).(*SuspendRequest)
	return r
}
