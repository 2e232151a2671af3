package structs

import "io"

// TMDContent describes one content chunk (CMD) listed in a TMD.
//
// https://wiibrew.org/wiki/Title_metadata
type TMDContent struct {
	ID          uint32
	Index       uint16
	ContentType uint16 // 0x0001 normal, 0x4001 DLC, 0x8001 shared
	Size        uint64
	Hash        []byte // 0x14, SHA-1
}

func ReadTMDContent(r io.Reader) (*TMDContent, error) {
	c := &TMDContent{}
	var err error
	if c.ID, err = readU32(r); err != nil {
		return nil, err
	}
	if c.Index, err = readU16(r); err != nil {
		return nil, err
	}
	if c.ContentType, err = readU16(r); err != nil {
		return nil, err
	}
	if c.Size, err = readU64(r); err != nil {
		return nil, err
	}
	if c.Hash, err = readFull(r, 0x14); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *TMDContent) Write(w io.Writer) error {
	if err := writeU32(w, c.ID); err != nil {
		return err
	}
	if err := writeU16(w, c.Index); err != nil {
		return err
	}
	if err := writeU16(w, c.ContentType); err != nil {
		return err
	}
	if err := writeU64(w, c.Size); err != nil {
		return err
	}
	return writeBytes(w, c.Hash)
}
