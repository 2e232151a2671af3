// Package wio provides the byte-level plumbing shared by every layer of the
// disc codec: a zero-fill reader with PadTo, a sub-window over an
// io.ReaderAt with its own independent cursor, and a lazily opened
// ReadCloser.
package wio

import (
	"io"

	"github.com/go-wii/wiiso/pkg/wiierr"
)

type zeroesReader struct{}

func (z *zeroesReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = 0
	for bp := 1; bp < len(p); bp *= 2 {
		copy(p[bp:], p[:bp])
	}
	return len(p), nil
}

// Zeroes is an infinite stream of zero bytes.
var Zeroes io.Reader = &zeroesReader{}

// PadTo writes zero bytes to w until *pos reaches target. It is a no-op if
// *pos already equals target, and returns an OutOfRange error if *pos is
// already past target.
func PadTo(w io.Writer, pos *int64, target int64) error {
	if *pos > target {
		return wiierr.New(wiierr.OutOfRange, "wio: pad to", "current position is past the pad target")
	}
	if *pos == target {
		return nil
	}
	n, err := io.CopyN(w, Zeroes, target-*pos)
	*pos += n
	if err != nil {
		return wiierr.Wrap(wiierr.Io, "wio: pad to", err)
	}
	return nil
}

// Window is an independent-cursor view over the byte range [offset, offset+length)
// of an underlying io.ReaderAt. Reads past the window are reported as io.EOF,
// matching the semantics of a bounded file.
type Window struct {
	base   io.ReaderAt
	offset int64
	length int64
	pos    int64
}

// NewWindow returns a Window over base starting at offset, spanning length bytes.
func NewWindow(base io.ReaderAt, offset, length int64) *Window {
	return &Window{base: base, offset: offset, length: length}
}

func (win *Window) Len() int64 { return win.length }

// ReadAt implements io.ReaderAt relative to the window's own offset.
func (win *Window) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, wiierr.New(wiierr.OutOfRange, "wio: window read", "negative offset")
	}
	if off >= win.length {
		return 0, io.EOF
	}
	truncated := false
	if max := win.length - off; int64(len(p)) > max {
		p = p[:max]
		truncated = true
	}
	n, err := win.base.ReadAt(p, win.offset+off)
	if err != nil && err != io.EOF {
		return n, wiierr.Wrap(wiierr.Io, "wio: window read", err)
	}
	if err == nil && truncated {
		err = io.EOF
	}
	return n, err
}

// Read advances the window's own cursor.
func (win *Window) Read(p []byte) (int, error) {
	n, err := win.ReadAt(p, win.pos)
	win.pos += int64(n)
	return n, err
}

// Seek repositions the window's cursor relative to its own bounds.
func (win *Window) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = win.pos + offset
	case io.SeekEnd:
		target = win.length + offset
	default:
		return 0, wiierr.New(wiierr.MalformedInput, "wio: window seek", "invalid whence")
	}
	if target < 0 {
		return 0, wiierr.New(wiierr.OutOfRange, "wio: window seek", "negative resulting offset")
	}
	win.pos = target
	return target, nil
}

// LazyReadCloser defers calling openFunc until the first Read, and runs
// closeFunc exactly once on Close regardless of whether a Read ever
// happened. Useful for wrapping a progress-tracked reader that shouldn't
// start ticking until its consumer actually pulls bytes.
func LazyReadCloser(openFunc func() (io.Reader, error), closeFunc func() error) io.ReadCloser {
	return &lazyReadCloser{openFunc: openFunc, closeFunc: closeFunc}
}

type lazyReadCloser struct {
	opened    bool
	closed    bool
	r         io.Reader
	openFunc  func() (io.Reader, error)
	closeFunc func() error
}

func (rc *lazyReadCloser) Read(p []byte) (int, error) {
	if rc.closed {
		return 0, wiierr.New(wiierr.Io, "wio: lazy read closer", "read after close")
	}
	if rc.r == nil {
		r, err := rc.openFunc()
		if err != nil {
			return 0, err
		}
		rc.r = r
	}
	return rc.r.Read(p)
}

func (rc *lazyReadCloser) Close() error {
	if rc.closed {
		return nil
	}
	rc.closed = true
	if rc.closeFunc == nil {
		return nil
	}
	return rc.closeFunc()
}
