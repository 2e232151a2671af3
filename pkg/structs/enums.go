package structs

// SignatureType identifies the RSA/ECC signature algorithm of a signed blob
// (ticket, TMD, or certificate).
type SignatureType uint32

const (
	SignatureNone    SignatureType = 0xFFFFFFFF
	SignatureRSA4096 SignatureType = 0x00010000
	SignatureRSA2048 SignatureType = 0x00010001
	SignatureECC     SignatureType = 0x00010002
)

// KeyType identifies the public key algorithm carried by a certificate.
type KeyType uint32

const (
	KeyRSA4096 KeyType = 0
	KeyRSA2048 KeyType = 1
	KeyECC     KeyType = 2
	KeyNone    KeyType = 0xFFFFFFFF
)

// PartType classifies an outer partition-table entry.
type PartType uint32

const (
	// PartData is the main game data partition.
	PartData PartType = 0
	// PartUpdate carries the embedded IOS/system update.
	PartUpdate PartType = 1
	// PartChannel carries a bundled channel install.
	PartChannel PartType = 2
)

func (t PartType) String() string {
	switch t {
	case PartData:
		return "data"
	case PartUpdate:
		return "update"
	case PartChannel:
		return "channel"
	default:
		return "unknown"
	}
}
