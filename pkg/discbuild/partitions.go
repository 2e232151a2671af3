package discbuild

import (
	"encoding/binary"

	"github.com/go-wii/wiiso/pkg/structs"
)

// Layout constants for the pieces of a partition's internal (plaintext)
// boot segment that every partition shares, regardless of content.
const (
	InternalDiscHeaderSize = 0x440
	BI2Offset              = 0x440
	BI2Size                = 0x2000
	ApploaderOffset        = 0x2440
)

// NewInternalDiscHeader builds the plaintext disc header written at the
// very start of a partition's data, carrying the identity fields a caller
// supplies; DOL/FST offsets are filled in by the caller before AddPartition,
// since they depend on the boot image and FST sizes.
func NewInternalDiscHeader(gameID string, discNum, discVersion uint8, gameTitle string) *structs.DiscHeader {
	return &structs.DiscHeader{
		GameID:            []byte(padGameID(gameID)),
		DiscNum:           discNum,
		DiscVersion:       discVersion,
		WiiMagicWord:      0x5D1C9EA3,
		GameCubeMagicWord: 0,
		GameTitle:         gameTitle,
	}
}

func padGameID(id string) string {
	b := []byte(id)
	for len(b) < 6 {
		b = append(b, 0)
	}
	return string(b[:6])
}

// NewRegion builds the 32-byte region descriptor written at the fixed
// 0x4E000 offset; regionCode is one of the documented codes (0=Japan,
// 1=USA, 2=Europe, 3=region free, 4=Korea).
func NewRegion(regionCode uint32) []byte {
	out := make([]byte, regionSize)
	binary.BigEndian.PutUint32(out[:4], regionCode)
	return out
}
