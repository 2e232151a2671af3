package structs

import (
	"io"

	"github.com/go-wii/wiiso/pkg/keys"
)

// Ticket is a Wii partition ticket: the signed blob carrying the encrypted
// title key and the metadata needed to unwrap it.
//
// https://wiibrew.org/wiki/Ticket
type Ticket struct {
	SignatureType SignatureType
	Signature     []byte // 0x100
	SignatureIssuer []byte // 0x40
	ECDH          []byte // 0x3C
	EncryptedKey  []byte // 0x10, title key wrapped under the common key
	TicketID      []byte // 0x08
	ConsoleID     []byte // 0x04
	TitleID       []byte // 0x08, doubles as the AES-CBC IV for the title key
	Unknown       uint16
	TicketVersion uint16
	PermittedTitleMask uint32
	PermitMask    uint32
	TitleExportAllowed uint8
	CommonKeyIndex     uint8
	ContentAccessPermission []byte // 0x40
	Unknown2      uint16
	TimeLimits    [8]*TicketTimeLimit

	// TitleKey is derived on Read, never serialised directly; Write re-wraps
	// it under CommonKeyIndex/TitleID.
	TitleKey []byte
}

func ReadTicket(r io.Reader) (*Ticket, error) {
	t := &Ticket{}
	sig, err := readU32(r)
	if err != nil {
		return nil, err
	}
	t.SignatureType = SignatureType(sig)

	if t.Signature, err = readFull(r, 0x100); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x3C); err != nil { // padding
		return nil, err
	}
	if t.SignatureIssuer, err = readFull(r, 0x40); err != nil {
		return nil, err
	}
	if t.ECDH, err = readFull(r, 0x3C); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x03); err != nil { // reserved
		return nil, err
	}
	if t.EncryptedKey, err = readFull(r, 0x10); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x01); err != nil {
		return nil, err
	}
	if t.TicketID, err = readFull(r, 0x08); err != nil {
		return nil, err
	}
	if t.ConsoleID, err = readFull(r, 0x04); err != nil {
		return nil, err
	}
	if t.TitleID, err = readFull(r, 0x08); err != nil {
		return nil, err
	}
	if t.Unknown, err = readU16(r); err != nil {
		return nil, err
	}
	if t.TicketVersion, err = readU16(r); err != nil {
		return nil, err
	}
	if t.PermittedTitleMask, err = readU32(r); err != nil {
		return nil, err
	}
	if t.PermitMask, err = readU32(r); err != nil {
		return nil, err
	}
	exportAllowed, err := readU8(r)
	if err != nil {
		return nil, err
	}
	t.TitleExportAllowed = exportAllowed
	ckIndex, err := readU8(r)
	if err != nil {
		return nil, err
	}
	t.CommonKeyIndex = ckIndex
	if err = readSkip(r, 0x30); err != nil { // padding, follows common_key_index on disc
		return nil, err
	}
	if t.ContentAccessPermission, err = readFull(r, 0x40); err != nil {
		return nil, err
	}
	if t.Unknown2, err = readU16(r); err != nil {
		return nil, err
	}
	for i := range t.TimeLimits {
		tl, err := ReadTicketTimeLimit(r)
		if err != nil {
			return nil, err
		}
		t.TimeLimits[i] = tl
	}

	titleKey, err := keys.DecryptTitleKey(t.EncryptedKey, int(t.CommonKeyIndex), t.TitleID)
	if err != nil {
		return nil, err
	}
	t.TitleKey = titleKey

	return t, nil
}

func (t *Ticket) Write(w io.Writer) error {
	encrypted, err := keys.EncryptTitleKey(t.TitleKey, int(t.CommonKeyIndex), t.TitleID)
	if err != nil {
		return err
	}

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
	if err := writeBytes(w, t.ECDH); err != nil {
		return err
	}
	if err := writeZero(w, 0x03); err != nil {
		return err
	}
	if err := writeBytes(w, encrypted); err != nil {
		return err
	}
	if err := writeZero(w, 0x01); err != nil {
		return err
	}
	if err := writeBytes(w, t.TicketID); err != nil {
		return err
	}
	if err := writeBytes(w, t.ConsoleID); err != nil {
		return err
	}
	if err := writeBytes(w, t.TitleID); err != nil {
		return err
	}
	if err := writeU16(w, t.Unknown); err != nil {
		return err
	}
	if err := writeU16(w, t.TicketVersion); err != nil {
		return err
	}
	if err := writeU32(w, t.PermittedTitleMask); err != nil {
		return err
	}
	if err := writeU32(w, t.PermitMask); err != nil {
		return err
	}
	if err := writeU8(w, t.TitleExportAllowed); err != nil {
		return err
	}
	if err := writeU8(w, t.CommonKeyIndex); err != nil {
		return err
	}
	if err := writeZero(w, 0x30); err != nil {
		return err
	}
	if err := writeBytes(w, t.ContentAccessPermission); err != nil {
		return err
	}
	if err := writeU16(w, t.Unknown2); err != nil {
		return err
	}
	for _, tl := range t.TimeLimits {
		if tl == nil {
			tl = &TicketTimeLimit{}
		}
		if err := tl.Write(w); err != nil {
			return err
		}
	}
	return nil
}
