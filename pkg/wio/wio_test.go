package wio

import (
	"bytes"
	"io"
	"testing"
)

func TestPadTo(t *testing.T) {
	var buf bytes.Buffer
	pos := int64(4)
	if err := PadTo(&buf, &pos, 10); err != nil {
		t.Fatalf("PadTo: %v", err)
	}
	if pos != 10 {
		t.Fatalf("pos = %d, want 10", pos)
	}
	if !bytes.Equal(buf.Bytes(), make([]byte, 6)) {
		t.Fatalf("expected 6 zero bytes, got %x", buf.Bytes())
	}
}

func TestPadToNoOp(t *testing.T) {
	var buf bytes.Buffer
	pos := int64(10)
	if err := PadTo(&buf, &pos, 10); err != nil {
		t.Fatalf("PadTo: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no bytes written, got %d", buf.Len())
	}
}

func TestPadToPastTargetErrors(t *testing.T) {
	var buf bytes.Buffer
	pos := int64(11)
	if err := PadTo(&buf, &pos, 10); err == nil {
		t.Fatal("expected an error when pos is already past target")
	}
}

func TestWindowReadAtBounds(t *testing.T) {
	base := bytes.NewReader([]byte("0123456789abcdef"))
	win := NewWindow(base, 4, 6) // "456789"

	if win.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", win.Len())
	}

	buf := make([]byte, 3)
	n, err := win.ReadAt(buf, 2)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if n != 3 || string(buf) != "678" {
		t.Fatalf("ReadAt = %q, want %q", buf[:n], "678")
	}

	_, err = win.ReadAt(buf, 6)
	if err != io.EOF {
		t.Fatalf("expected io.EOF reading past window end, got %v", err)
	}
}

func TestWindowSeekAndRead(t *testing.T) {
	base := bytes.NewReader([]byte("abcdefghij"))
	win := NewWindow(base, 2, 5) // "cdefg"

	if _, err := win.Seek(2, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, 3)
	n, err := win.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "efg" {
		t.Fatalf("Read = %q, want %q", buf[:n], "efg")
	}
}

func TestLazyReadCloserDefersOpen(t *testing.T) {
	opened := false
	rc := LazyReadCloser(func() (io.Reader, error) {
		opened = true
		return bytes.NewReader([]byte("hi")), nil
	}, func() error { return nil })

	if opened {
		t.Fatal("open func ran before first Read")
	}
	buf := make([]byte, 2)
	if _, err := rc.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !opened {
		t.Fatal("open func never ran")
	}
	if err := rc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := rc.Read(buf); err == nil {
		t.Fatal("expected read-after-close to error")
	}
}
