package wasi

import (
	"context"
	"io"

	"github.com/wasmlite/wasmlite/api"
)

// fdWriterFor resolves a WASI file descriptor to the io.Writer backing it. Only the two standard
// stream descriptors are supported; everything else is ErrnoBadf, matching the reduced scope that
// drops libwasi's full fd table.
func (c *Config) fdWriterFor(fd uint32) io.Writer {
	switch fd {
	case 1:
		if c.Stdout != nil {
			return c.Stdout
		}
		return io.Discard
	case 2:
		if c.Stderr != nil {
			return c.Stderr
		}
		return io.Discard
	default:
		return nil
	}
}

// fdWriteFn implements fd_write: reads iovsLen (offset, length) pairs from iovs, writes each
// referenced region to fd in order, and writes the total bytes written to resultSize.
func fdWriteFn(cfg *Config) func(context.Context, api.Module, []uint64) Errno {
	return func(ctx context.Context, mod api.Module, params []uint64) Errno {
		fd := uint32(params[0])
		iovs := uint32(params[1])
		iovsLen := uint32(params[2])
		resultSize := uint32(params[3])

		w := cfg.fdWriterFor(fd)
		if w == nil {
			return ErrnoBadf
		}

		mem := mod.Memory()
		var written uint32
		for i := uint32(0); i < iovsLen; i++ {
			base := iovs + i*8
			offset, ok := mem.ReadUint32Le(ctx, base)
			if !ok {
				return ErrnoFault
			}
			length, ok := mem.ReadUint32Le(ctx, base+4)
			if !ok {
				return ErrnoFault
			}
			if length == 0 {
				continue
			}
			b, ok := mem.Read(ctx, offset, length)
			if !ok {
				return ErrnoFault
			}
			n, err := w.Write(b)
			if err != nil {
				return ErrnoIo
			}
			written += uint32(n)
		}
		if !mem.WriteUint32Le(ctx, resultSize, written) {
			return ErrnoFault
		}
		return ErrnoSuccess
	}
}
