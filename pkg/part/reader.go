// Package part implements random-access decryption and streaming encryption
// over one Wii partition's 2 MiB group stream.
package part

import (
	"io"

	"github.com/go-wii/wiiso/pkg/group"
	"github.com/go-wii/wiiso/pkg/wiierr"
	"github.com/go-wii/wiiso/pkg/wlog"
)

// DecryptingReader exposes plaintext random access over an encrypted
// partition's data area. It keeps a single decrypted group cached; it is not
// safe for concurrent use.
type DecryptingReader struct {
	src        io.ReaderAt
	dataOffset int64
	dataSize   int64
	titleKey   []byte
	log        wlog.Logger

	cachedIndex int64
	cachedPlain []byte
	haveCached  bool
}

// NewDecryptingReader constructs a reader over src's ciphertext region
// [dataOffset, dataOffset+dataSize), decrypting with titleKey.
func NewDecryptingReader(src io.ReaderAt, dataOffset, dataSize int64, titleKey []byte) *DecryptingReader {
	return &DecryptingReader{
		src:         src,
		dataOffset:  dataOffset,
		dataSize:    dataSize,
		titleKey:    titleKey,
		cachedIndex: -1,
	}
}

// SetLogger attaches an optional logger; a nil logger (the default) keeps
// the reader silent.
func (r *DecryptingReader) SetLogger(log wlog.Logger) {
	r.log = log
}

func (r *DecryptingReader) fill(groupIndex int64) ([]byte, error) {
	if r.haveCached && r.cachedIndex == groupIndex {
		if r.log != nil {
			r.log.Debugf("part: cache hit group_index=%d", groupIndex)
		}
		return r.cachedPlain, nil
	}

	if r.log != nil {
		r.log.Debugf("part: cache miss group_index=%d, decrypting", groupIndex)
	}

	raw := make([]byte, group.Size)
	at := r.dataOffset + groupIndex*group.Size
	if _, err := io.ReadFull(newOffsetReader(r.src, at), raw); err != nil {
		return nil, wiierr.Wrap(wiierr.Io, "part: read group", err)
	}

	plain, err := group.Decrypt(raw, r.titleKey)
	if err != nil {
		return nil, err
	}

	r.cachedIndex = groupIndex
	r.cachedPlain = plain
	r.haveCached = true
	return plain, nil
}

// ReadAt implements io.ReaderAt over the partition's plaintext address space.
func (r *DecryptingReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > r.numGroups()*group.DataSize {
		return 0, wiierr.New(wiierr.OutOfRange, "part: read at", "read past partition plaintext size")
	}

	total := 0
	for total < len(p) {
		cur := off + int64(total)
		groupIndex := cur / group.DataSize
		offInGroup := cur % group.DataSize

		plain, err := r.fill(groupIndex)
		if err != nil {
			return total, err
		}

		n := copy(p[total:], plain[offInGroup:])
		total += n
	}
	return total, nil
}

// ReadAll decrypts every group in order and returns the full plaintext.
// Intended for tests and small partitions; production reads should prefer
// ReadAt.
func (r *DecryptingReader) ReadAll() ([]byte, error) {
	out := make([]byte, r.numGroups()*group.DataSize)
	if _, err := r.ReadAt(out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DecryptingReader) numGroups() int64 {
	return (r.dataSize + group.Size - 1) / group.Size
}

// offsetReader adapts an io.ReaderAt plus a fixed base into an io.Reader
// suitable for io.ReadFull, without disturbing any cursor on src.
type offsetReader struct {
	src io.ReaderAt
	pos int64
}

func newOffsetReader(src io.ReaderAt, at int64) *offsetReader {
	return &offsetReader{src: src, pos: at}
}

func (o *offsetReader) Read(p []byte) (int, error) {
	n, err := o.src.ReadAt(p, o.pos)
	o.pos += int64(n)
	return n, err
}
