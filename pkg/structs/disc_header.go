package structs

import "io"

// DiscHeader is the 0x440-byte header at partition plaintext offset 0,
// describing the embedded GameCube-style boot image.
//
// https://wiibrew.org/wiki/Wii_disc#Header
type DiscHeader struct {
	GameID                   []byte // 0x06
	DiscNum                  uint8
	DiscVersion              uint8
	AudioStreaming           uint8
	AudioStreamBufSize       uint8
	WiiMagicWord             uint32
	GameCubeMagicWord        uint32
	GameTitle                string // 0x40, ASCII
	DisableHashVerification  uint8
	DisableDiscEncryption    uint8
	DebugMonOffset           uint32
	DebugLoadAddress         uint32
	DOLOffset                uint64
	FSTOffset                uint64
	FSTSize                  uint64
	FSTMaxSize               uint64
	FSTMemoryAddress         uint32
	UserPosition             uint32
	UserSize                 uint32
}

func ReadDiscHeader(r io.Reader) (*DiscHeader, error) {
	h := &DiscHeader{}
	var err error

	if h.GameID, err = readFull(r, 0x06); err != nil {
		return nil, err
	}
	if h.DiscNum, err = readU8(r); err != nil {
		return nil, err
	}
	if h.DiscVersion, err = readU8(r); err != nil {
		return nil, err
	}
	if h.AudioStreaming, err = readU8(r); err != nil {
		return nil, err
	}
	if h.AudioStreamBufSize, err = readU8(r); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x0E); err != nil {
		return nil, err
	}
	if h.WiiMagicWord, err = readU32(r); err != nil {
		return nil, err
	}
	if h.GameCubeMagicWord, err = readU32(r); err != nil {
		return nil, err
	}
	if h.GameTitle, err = readCString(r, 0x40); err != nil {
		return nil, err
	}
	if h.DisableHashVerification, err = readU8(r); err != nil {
		return nil, err
	}
	if h.DisableDiscEncryption, err = readU8(r); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x39E); err != nil {
		return nil, err
	}
	if h.DebugMonOffset, err = readU32(r); err != nil {
		return nil, err
	}
	if h.DebugLoadAddress, err = readU32(r); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x18); err != nil {
		return nil, err
	}
	if h.DOLOffset, err = readU32Shifted(r); err != nil {
		return nil, err
	}
	if h.FSTOffset, err = readU32Shifted(r); err != nil {
		return nil, err
	}
	if h.FSTSize, err = readU32Shifted(r); err != nil {
		return nil, err
	}
	if h.FSTMaxSize, err = readU32Shifted(r); err != nil {
		return nil, err
	}
	if h.FSTMemoryAddress, err = readU32(r); err != nil {
		return nil, err
	}
	if h.UserPosition, err = readU32(r); err != nil {
		return nil, err
	}
	if h.UserSize, err = readU32(r); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x04); err != nil {
		return nil, err
	}

	return h, nil
}

func (h *DiscHeader) Write(w io.Writer) error {
	if err := writeBytes(w, h.GameID); err != nil {
		return err
	}
	if err := writeU8(w, h.DiscNum); err != nil {
		return err
	}
	if err := writeU8(w, h.DiscVersion); err != nil {
		return err
	}
	if err := writeU8(w, h.AudioStreaming); err != nil {
		return err
	}
	if err := writeU8(w, h.AudioStreamBufSize); err != nil {
		return err
	}
	if err := writeZero(w, 0x0E); err != nil {
		return err
	}
	if err := writeU32(w, h.WiiMagicWord); err != nil {
		return err
	}
	if err := writeU32(w, h.GameCubeMagicWord); err != nil {
		return err
	}
	if err := writeCString(w, h.GameTitle, 0x40); err != nil {
		return err
	}
	if err := writeU8(w, h.DisableHashVerification); err != nil {
		return err
	}
	if err := writeU8(w, h.DisableDiscEncryption); err != nil {
		return err
	}
	if err := writeZero(w, 0x39E); err != nil {
		return err
	}
	if err := writeU32(w, h.DebugMonOffset); err != nil {
		return err
	}
	if err := writeU32(w, h.DebugLoadAddress); err != nil {
		return err
	}
	if err := writeZero(w, 0x18); err != nil {
		return err
	}
	if err := writeU32Shifted(w, h.DOLOffset); err != nil {
		return err
	}
	if err := writeU32Shifted(w, h.FSTOffset); err != nil {
		return err
	}
	if err := writeU32Shifted(w, h.FSTSize); err != nil {
		return err
	}
	if err := writeU32Shifted(w, h.FSTMaxSize); err != nil {
		return err
	}
	if err := writeU32(w, h.FSTMemoryAddress); err != nil {
		return err
	}
	if err := writeU32(w, h.UserPosition); err != nil {
		return err
	}
	if err := writeU32(w, h.UserSize); err != nil {
		return err
	}
	return writeZero(w, 0x04)
}
