package structs

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/go-wii/wiiso/pkg/wiierr"
)

// Every leaf record on a Wii disc is big-endian, fixed-layout, and padded
// with documented runs of zero bytes; these helpers read/write one field at
// a time the way the reference implementation does, keeping each struct's
// Read/Write a straight-line transcription of its on-disc layout.

func readFull(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wiierr.Wrap(wiierr.Io, "structs: read", err)
	}
	return buf, nil
}

func readU8(r io.Reader) (uint8, error) {
	b, err := readFull(r, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func readU16(r io.Reader) (uint16, error) {
	b, err := readFull(r, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func readU32(r io.Reader) (uint32, error) {
	b, err := readFull(r, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func readU64(r io.Reader) (uint64, error) {
	b, err := readFull(r, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// readU32Shifted reads a u32 and left-shifts it by 2, the encoding used for
// every on-disc offset field that addresses 4-byte-aligned data.
func readU32Shifted(r io.Reader) (uint64, error) {
	v, err := readU32(r)
	if err != nil {
		return 0, err
	}
	return uint64(v) << 2, nil
}

func readSkip(r io.Reader, n int) error {
	_, err := readFull(r, n)
	return err
}

// readCString reads a fixed-size field and trims it at the first NUL,
// decoding the remainder as ASCII.
func readCString(r io.Reader, n int) (string, error) {
	b, err := readFull(r, n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

func writeBytes(w io.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return wiierr.Wrap(wiierr.Io, "structs: write", err)
	}
	return nil
}

func writeZero(w io.Writer, n int) error {
	return writeBytes(w, make([]byte, n))
}

func writeU8(w io.Writer, v uint8) error {
	return writeBytes(w, []byte{v})
}

func writeU16(w io.Writer, v uint16) error {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return writeBytes(w, b)
}

func writeU32(w io.Writer, v uint32) error {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return writeBytes(w, b)
}

func writeU64(w io.Writer, v uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return writeBytes(w, b)
}

func writeU32Shifted(w io.Writer, v uint64) error {
	return writeU32(w, uint32(v>>2))
}

func writeCString(w io.Writer, s string, n int) error {
	b := make([]byte, n)
	copy(b, s)
	return writeBytes(w, b)
}
