package part

import (
	"io"

	"github.com/go-wii/wiiso/pkg/group"
	"github.com/go-wii/wiiso/pkg/wiierr"
	"github.com/go-wii/wiiso/pkg/wlog"
)

const (
	h3TableSize = 0x18000
)

// StreamEncryptor is an append-only plaintext sink that buffers into 2 MiB
// groups, flushes each full group through the group codec, and accumulates
// the per-partition H3 table. It is not safe for concurrent use.
type StreamEncryptor struct {
	dst        io.WriterAt
	dataOffset int64
	titleKey   []byte
	log        wlog.Logger

	buf          []byte // group.DataSize, only buf[:fill] is valid
	fill         int
	filledGroups int64
	position     int64

	h3 []byte
}

// NewStreamEncryptor constructs an encryptor writing ciphertext groups to
// dst starting at dataOffset.
func NewStreamEncryptor(dst io.WriterAt, dataOffset int64, titleKey []byte) *StreamEncryptor {
	return &StreamEncryptor{
		dst:        dst,
		dataOffset: dataOffset,
		titleKey:   titleKey,
		buf:        make([]byte, group.DataSize),
	}
}

// SetLogger attaches an optional logger; a nil logger (the default) keeps
// the encryptor silent.
func (e *StreamEncryptor) SetLogger(log wlog.Logger) {
	e.log = log
}

// Position returns the number of plaintext bytes accepted so far.
func (e *StreamEncryptor) Position() int64 { return e.position }

// Write buffers p, flushing full groups as the buffer fills.
func (e *StreamEncryptor) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		n := copy(e.buf[e.fill:], p)
		e.fill += n
		e.position += int64(n)
		p = p[n:]
		total += n

		if e.fill == len(e.buf) {
			if err := e.flushGroup(); err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

func (e *StreamEncryptor) flushGroup() error {
	scratch := make([]byte, group.Size)
	for b := 0; b < group.BlocksPerGroup; b++ {
		src := e.buf[b*group.BlockDataSize : (b+1)*group.BlockDataSize]
		dst := scratch[b*group.BlockSize+group.BlockHeaderSize : (b+1)*group.BlockSize]
		copy(dst, src)
	}

	h3, err := group.Encrypt(scratch, e.titleKey)
	if err != nil {
		return err
	}
	e.h3 = append(e.h3, h3...)

	at := e.dataOffset + e.filledGroups*group.Size
	if _, err := e.dst.WriteAt(scratch, at); err != nil {
		return wiierr.Wrap(wiierr.Io, "part: write group", err)
	}

	if e.log != nil {
		e.log.Debugf("part: flushed group_index=%d bytes=%d", e.filledGroups, len(scratch))
	}

	e.filledGroups++
	e.fill = 0
	return nil
}

// Close flushes any partial group, zero-padding it to a full group first.
// A writer that never received a byte still emits exactly one (all-zero)
// group, guaranteeing at least one group per partition.
func (e *StreamEncryptor) Close() error {
	if e.fill > 0 || e.filledGroups == 0 {
		for i := e.fill; i < len(e.buf); i++ {
			e.buf[i] = 0
		}
		e.fill = len(e.buf)
		if err := e.flushGroup(); err != nil {
			return err
		}
	}
	return nil
}

// H3Table returns the accumulated H3 digests, zero-padded to the fixed
// 0x18000-byte per-partition table size.
func (e *StreamEncryptor) H3Table() []byte {
	out := make([]byte, h3TableSize)
	copy(out, e.h3)
	return out
}
