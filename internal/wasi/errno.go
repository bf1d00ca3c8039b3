// Package wasi implements a minimal wasi_snapshot_preview1 host module: enough of the proc,
// environment and fd_write surface to run end-to-end command and reactor modules, grounded on
// libwasi/wasi_abi_proc.c, wasi_abi_environ.c, wasi_abi_clock.c. Filesystem, socket and poll
// surfaces are not implemented.
package wasi

// Errno is the error code a WASI function returns, the uint32 result slot of every call in this
// package. ErrnoSuccess is not an error; it is the normal result.
type Errno = uint32

// Only the subset of the full errno table this package's functions can actually produce.
const (
	ErrnoSuccess Errno = iota
	ErrnoBadf
	ErrnoFault
	ErrnoInval
	ErrnoIo
	ErrnoNosys
)

var errnoNames = [...]string{
	ErrnoSuccess: "ESUCCESS",
	ErrnoBadf:    "EBADF",
	ErrnoFault:   "EFAULT",
	ErrnoInval:   "EINVAL",
	ErrnoIo:      "EIO",
	ErrnoNosys:   "ENOSYS",
}

// ErrnoName returns the POSIX-style name of errno, or "EUNKNOWN" if out of range.
func ErrnoName(errno Errno) string {
	if int(errno) < len(errnoNames) {
		return errnoNames[errno]
	}
	return "EUNKNOWN"
}
