package part

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/go-wii/wiiso/pkg/group"
)

// memDisc is a growable in-memory buffer implementing both io.WriterAt and
// io.ReaderAt, standing in for a disc image file in tests.
type memDisc struct {
	buf []byte
}

func (m *memDisc) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[off:end], p)
	return len(p), nil
}

func (m *memDisc) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, bytes.ErrTooLarge
	}
	return n, nil
}

func TestStreamEncryptorDecryptingReaderRoundTrip(t *testing.T) {
	titleKey := bytes.Repeat([]byte{0x77}, 16)
	disc := &memDisc{}

	plaintext := make([]byte, group.DataSize+1234)
	for i := range plaintext {
		plaintext[i] = byte(i % 241)
	}

	enc := NewStreamEncryptor(disc, 0, titleKey)
	if _, err := enc.Write(plaintext); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if enc.Position() != int64(len(plaintext)) {
		t.Fatalf("Position = %d, want %d", enc.Position(), len(plaintext))
	}
	if len(enc.H3Table()) != h3TableSize {
		t.Fatalf("len(H3Table()) = %d, want %d", len(enc.H3Table()), h3TableSize)
	}

	dataSize := int64(2) * group.Size // two groups were flushed
	r := NewDecryptingReader(disc, 0, dataSize, titleKey)
	got, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got[:len(plaintext)], plaintext) {
		t.Fatal("decrypted plaintext does not match what was written")
	}
	for _, b := range got[len(plaintext):] {
		if b != 0 {
			t.Fatal("expected zero padding in the trailing partial group")
		}
	}
}

func TestDecryptingReaderReadAtOutOfRange(t *testing.T) {
	r := NewDecryptingReader(&memDisc{}, 0, group.Size, make([]byte, 16))
	buf := make([]byte, 16)
	if _, err := r.ReadAt(buf, group.DataSize); err == nil {
		t.Fatal("expected an error reading past the partition's plaintext size")
	}
}

func TestStreamEncryptorEmitsOneGroupWhenEmpty(t *testing.T) {
	disc := &memDisc{}
	enc := NewStreamEncryptor(disc, 0, bytes.Repeat([]byte{0x01}, 16))
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(disc.buf) != group.Size {
		t.Fatalf("wrote %d bytes, want exactly one group (%d)", len(disc.buf), group.Size)
	}
}

// fakeLogger records Debugf/Infof calls for assertions; the other Logger
// methods are unused by this package but must exist to satisfy the
// interface.
type fakeLogger struct {
	debugs []string
	infos  []string
}

func (f *fakeLogger) Debugf(format string, x ...interface{}) {
	f.debugs = append(f.debugs, fmt.Sprintf(format, x...))
}
func (f *fakeLogger) Errorf(format string, x ...interface{}) {}
func (f *fakeLogger) Infof(format string, x ...interface{}) {
	f.infos = append(f.infos, fmt.Sprintf(format, x...))
}
func (f *fakeLogger) Printf(format string, x ...interface{}) {}
func (f *fakeLogger) Warnf(format string, x ...interface{})  {}
func (f *fakeLogger) IsInfoEnabled() bool                     { return true }
func (f *fakeLogger) IsDebugEnabled() bool                    { return true }

func TestDecryptingReaderLogsCacheMissThenHit(t *testing.T) {
	titleKey := bytes.Repeat([]byte{0x22}, 16)
	disc := &memDisc{}
	enc := NewStreamEncryptor(disc, 0, titleKey)
	if _, err := enc.Write(make([]byte, group.DataSize)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	log := &fakeLogger{}
	r := NewDecryptingReader(disc, 0, group.Size, titleKey)
	r.SetLogger(log)

	buf := make([]byte, 16)
	if _, err := r.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if _, err := r.ReadAt(buf, 16); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}

	if len(log.debugs) != 2 {
		t.Fatalf("len(debugs) = %d, want 2 (one miss, one hit), got %v", len(log.debugs), log.debugs)
	}
}

func TestStreamEncryptorLogsFlush(t *testing.T) {
	disc := &memDisc{}
	log := &fakeLogger{}
	enc := NewStreamEncryptor(disc, 0, bytes.Repeat([]byte{0x01}, 16))
	enc.SetLogger(log)
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(log.debugs) != 1 {
		t.Fatalf("len(debugs) = %d, want 1 flush logged, got %v", len(log.debugs), log.debugs)
	}
}
