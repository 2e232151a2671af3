// Package copybuild implements the copy-mode partition builder: it
// represents one source partition to the disc builder, allowing its FST
// tree to be edited, while file contents are always copied verbatim from
// the source partition.
package copybuild

import (
	"io"

	"github.com/go-wii/wiiso/pkg/fst"
	"github.com/go-wii/wiiso/pkg/wiierr"
	"github.com/go-wii/wiiso/pkg/wlog"
)

type fileRange struct {
	offset int64
	length int64
}

// Partition wraps one source partition plus the FST builder over its
// (possibly already-mutated) tree.
type Partition struct {
	builder *fst.Builder
	source  io.ReaderAt // the source partition's decrypting reader
	// snapshot is the DFS-ordered (offset, length) of every file as it
	// existed in the source at construction time, captured before any later
	// offset mutation — this is the copy plan.
	snapshot []fileRange
	files    []*fst.File
	log      wlog.Logger
}

// New snapshots root's current file offsets/lengths (the source layout)
// before the caller is allowed to mutate the tree or reassign offsets.
// source is the decrypting reader over the partition root was read from.
func New(root *fst.Directory, source io.ReaderAt) (*Partition, error) {
	b := fst.NewBuilder(root)
	p := &Partition{builder: b, source: source}

	err := b.WalkFiles(func(_ []string, f *fst.File) error {
		p.snapshot = append(p.snapshot, fileRange{offset: f.Offset, length: f.Length})
		p.files = append(p.files, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Builder exposes the underlying FST builder, e.g. for ByteSize().
func (p *Partition) Builder() *fst.Builder { return p.builder }

// SetLogger attaches an optional logger; a nil logger (the default) keeps
// file-copy progress silent.
func (p *Partition) SetLogger(log wlog.Logger) {
	p.log = log
}

// AssignFileOffsets walks files in DFS order, placing each at the next
// 4-byte-aligned offset after the previous file's end, starting at start.
func (p *Partition) AssignFileOffsets(start int64) {
	current := start
	for _, f := range p.files {
		f.Offset = current
		current += f.Length
		current = (current + 3) &^ 3
	}
}

// WriteFileData streams each file's bytes from the source partition to sink,
// in source snapshot order (independent of any offset mutation since).
// Each file's bytes are followed by zero padding up to the next 4-byte
// boundary, matching the layout AssignFileOffsets computes.
// progress, if non-nil, is called once per file (including zero-length
// files, which are counted but never read).
func (p *Partition) WriteFileData(sink io.Writer, progress func(done, total int)) error {
	total := len(p.snapshot)
	for i, r := range p.snapshot {
		if r.length > 0 {
			buf := make([]byte, r.length)
			if _, err := readExactAt(p.source, buf, r.offset); err != nil {
				return err
			}
			if _, err := sink.Write(buf); err != nil {
				return wiierr.Wrap(wiierr.Io, "copybuild: write file data", err)
			}
			if pad := (4 - r.length%4) % 4; pad > 0 {
				if _, err := sink.Write(make([]byte, pad)); err != nil {
					return wiierr.Wrap(wiierr.Io, "copybuild: write file data", err)
				}
			}
			if p.log != nil {
				p.log.Debugf("copybuild: copied file %d/%d bytes=%d", i+1, total, r.length)
			}
		}
		if progress != nil {
			progress(i+1, total)
		}
	}
	return nil
}

func readExactAt(r io.ReaderAt, buf []byte, off int64) (int, error) {
	n, err := r.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return n, wiierr.Wrap(wiierr.Io, "copybuild: read source", err)
	}
	if n != len(buf) {
		return n, wiierr.New(wiierr.Io, "copybuild: read source", "short read from source partition")
	}
	return n, nil
}
