package structs

import "io"

// TMD is the Title Metadata for a Wii partition.
//
// https://wiibrew.org/wiki/Title_metadata
type TMD struct {
	SignatureType   SignatureType
	Signature       []byte // 0x100
	SignatureIssuer []byte // 0x40
	Version         uint8
	CaCRLVersion    uint8
	SignerCRLVersion uint8
	IsVirtualWii    uint8
	SystemVersion   uint64
	TitleID         uint64
	TitleType       uint32
	GroupID         uint16
	FakeSignaturePadding []byte // 0x38
	AccessFlags     uint32
	TitleVersion    uint16
	BootIndex       uint16
	Contents        []*TMDContent
}

func ReadTMD(r io.Reader) (*TMD, error) {
	t := &TMD{}
	var err error

	sig, err := readU32(r)
	if err != nil {
		return nil, err
	}
	t.SignatureType = SignatureType(sig)
	if t.Signature, err = readFull(r, 0x100); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x3C); err != nil {
		return nil, err
	}
	if t.SignatureIssuer, err = readFull(r, 0x40); err != nil {
		return nil, err
	}
	if t.Version, err = readU8(r); err != nil {
		return nil, err
	}
	if t.CaCRLVersion, err = readU8(r); err != nil {
		return nil, err
	}
	if t.SignerCRLVersion, err = readU8(r); err != nil {
		return nil, err
	}
	if t.IsVirtualWii, err = readU8(r); err != nil {
		return nil, err
	}
	if t.SystemVersion, err = readU64(r); err != nil {
		return nil, err
	}
	if t.TitleID, err = readU64(r); err != nil {
		return nil, err
	}
	if t.TitleType, err = readU32(r); err != nil {
		return nil, err
	}
	if t.GroupID, err = readU16(r); err != nil {
		return nil, err
	}
	if t.FakeSignaturePadding, err = readFull(r, 0x38); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x06); err != nil {
		return nil, err
	}
	if t.AccessFlags, err = readU32(r); err != nil {
		return nil, err
	}
	if t.TitleVersion, err = readU16(r); err != nil {
		return nil, err
	}
	numContents, err := readU16(r)
	if err != nil {
		return nil, err
	}
	if t.BootIndex, err = readU16(r); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x02); err != nil {
		return nil, err
	}
	t.Contents = make([]*TMDContent, numContents)
	for i := range t.Contents {
		c, err := ReadTMDContent(r)
		if err != nil {
			return nil, err
		}
		t.Contents[i] = c
	}

	return t, nil
}

func (t *TMD) Write(w io.Writer) error {
	if err := writeU32(w, uint32(t.SignatureType)); err != nil {
		return err
	}
	if err := writeBytes(w, t.Signature); err != nil {
		return err
	}
	if err := writeZero(w, 0x3C); err != nil {
		return err
	}
	if err := writeBytes(w, t.SignatureIssuer); err != nil {
		return err
	}
	if err := writeU8(w, t.Version); err != nil {
		return err
	}
	if err := writeU8(w, t.CaCRLVersion); err != nil {
		return err
	}
	if err := writeU8(w, t.SignerCRLVersion); err != nil {
		return err
	}
	if err := writeU8(w, t.IsVirtualWii); err != nil {
		return err
	}
	if err := writeU64(w, t.SystemVersion); err != nil {
		return err
	}
	if err := writeU64(w, t.TitleID); err != nil {
		return err
	}
	if err := writeU32(w, t.TitleType); err != nil {
		return err
	}
	if err := writeU16(w, t.GroupID); err != nil {
		return err
	}
	if err := writeBytes(w, t.FakeSignaturePadding); err != nil {
		return err
	}
	if err := writeZero(w, 0x06); err != nil {
		return err
	}
	if err := writeU32(w, t.AccessFlags); err != nil {
		return err
	}
	if err := writeU16(w, t.TitleVersion); err != nil {
		return err
	}
	if err := writeU16(w, uint16(len(t.Contents))); err != nil {
		return err
	}
	if err := writeU16(w, t.BootIndex); err != nil {
		return err
	}
	if err := writeZero(w, 0x02); err != nil {
		return err
	}
	for _, c := range t.Contents {
		if err := c.Write(w); err != nil {
			return err
		}
	}
	return nil
}
