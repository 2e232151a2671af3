package structs

import "io"

// DOLHeader describes the segment layout of the main PowerPC executable.
//
// https://wiibrew.org/wiki/DOL
type DOLHeader struct {
	TextOffset []uint32 // 7
	DataOffset []uint32 // 11
	TextStart  []uint32 // 7
	DataStart  []uint32 // 11
	TextLength []uint32 // 7
	DataLength []uint32 // 11
	BSSStart   uint32
	BSSSize    uint32
	EntryPoint uint32
}

func readU32Array(r io.Reader, n int) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		v, err := readU32(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func writeU32Array(w io.Writer, vs []uint32) error {
	for _, v := range vs {
		if err := writeU32(w, v); err != nil {
			return err
		}
	}
	return nil
}

func ReadDOLHeader(r io.Reader) (*DOLHeader, error) {
	h := &DOLHeader{}
	var err error
	if h.TextOffset, err = readU32Array(r, 7); err != nil {
		return nil, err
	}
	if h.DataOffset, err = readU32Array(r, 11); err != nil {
		return nil, err
	}
	if h.TextStart, err = readU32Array(r, 7); err != nil {
		return nil, err
	}
	if h.DataStart, err = readU32Array(r, 11); err != nil {
		return nil, err
	}
	if h.TextLength, err = readU32Array(r, 7); err != nil {
		return nil, err
	}
	if h.DataLength, err = readU32Array(r, 11); err != nil {
		return nil, err
	}
	if h.BSSStart, err = readU32(r); err != nil {
		return nil, err
	}
	if h.BSSSize, err = readU32(r); err != nil {
		return nil, err
	}
	if h.EntryPoint, err = readU32(r); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x1C); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *DOLHeader) Write(w io.Writer) error {
	for _, vs := range [][]uint32{h.TextOffset, h.DataOffset, h.TextStart, h.DataStart, h.TextLength, h.DataLength} {
		if err := writeU32Array(w, vs); err != nil {
			return err
		}
	}
	if err := writeU32(w, h.BSSStart); err != nil {
		return err
	}
	if err := writeU32(w, h.BSSSize); err != nil {
		return err
	}
	if err := writeU32(w, h.EntryPoint); err != nil {
		return err
	}
	return writeZero(w, 0x1C)
}

// Size computes the total DOL size: the header (0x100) floor, extended to
// cover the furthest text or data segment's offset+length.
func (h *DOLHeader) Size() uint32 {
	max := uint32(0x100)
	for i, off := range h.TextOffset {
		if end := off + h.TextLength[i]; end > max {
			max = end
		}
	}
	for i, off := range h.DataOffset {
		if end := off + h.DataLength[i]; end > max {
			max = end
		}
	}
	return max
}
