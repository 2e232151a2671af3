// Package group implements the 2 MiB encryption and hash-tree unit shared by
// every Wii partition: decrypting a raw group into plaintext, and encrypting
// a plaintext-laid-out group while building its nested H0/H1/H2 tree and
// returning the per-group H3 digest.
package group

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"

	"github.com/go-wii/wiiso/pkg/wiierr"
)

const (
	// BlockSize is the raw on-disc size of one block: header + data.
	BlockSize = 0x8000
	// BlockHeaderSize is the size of the hash/IV header prefixing each block.
	BlockHeaderSize = 0x400
	// BlockDataSize is the usable plaintext payload per block.
	BlockDataSize = BlockSize - BlockHeaderSize
	// BlocksPerGroup is the number of blocks making up one group.
	BlocksPerGroup = 64
	// Size is the raw on-disc size of one group.
	Size = BlockSize * BlocksPerGroup
	// DataSize is the usable plaintext payload per group.
	DataSize = BlockDataSize * BlocksPerGroup

	// SubblocksPerBlock is the number of H0-hashed chunks per block's data.
	SubblocksPerBlock = 31
	// BlocksPerSubgroup is the number of blocks covered by one H1 digest.
	BlocksPerSubgroup = 8
	// SubgroupsPerGroup is the number of subgroups (and H2 digests) per group.
	SubgroupsPerGroup = 8

	subblockSize = BlockDataSize / SubblocksPerBlock
	subgroupSize = BlockSize * BlocksPerSubgroup

	sha1Size = sha1.Size

	h0Offset = 0x000
	h1Offset = 0x280
	h2Offset = 0x340
	ivOffset = 0x3D0
)

// Decrypt decrypts one raw 0x200000-byte group into 0x1F0000 bytes of
// plaintext. Block headers (the hash tree) are not verified.
func Decrypt(raw []byte, titleKey []byte) ([]byte, error) {
	if len(raw) != Size {
		return nil, wiierr.New(wiierr.MalformedInput, "group: decrypt", "raw group must be 0x200000 bytes")
	}
	block, err := aes.NewCipher(titleKey)
	if err != nil {
		return nil, wiierr.Wrap(wiierr.Io, "group: decrypt", err)
	}

	out := make([]byte, DataSize)
	for b := 0; b < BlocksPerGroup; b++ {
		start := b * BlockSize
		raw := raw[start : start+BlockSize]
		iv := append([]byte(nil), raw[ivOffset:ivOffset+16]...)
		plain := out[b*BlockDataSize : (b+1)*BlockDataSize]
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, raw[BlockHeaderSize:])
	}
	return out, nil
}

// DecryptBlock decrypts a single 0x8000-byte block, returning its 0x7C00
// bytes of plaintext. Exposed for tests and for partial-group inspection.
func DecryptBlock(raw []byte, titleKey []byte) ([]byte, error) {
	if len(raw) != BlockSize {
		return nil, wiierr.New(wiierr.MalformedInput, "group: decrypt block", "raw block must be 0x8000 bytes")
	}
	block, err := aes.NewCipher(titleKey)
	if err != nil {
		return nil, wiierr.Wrap(wiierr.Io, "group: decrypt block", err)
	}
	iv := append([]byte(nil), raw[ivOffset:ivOffset+16]...)
	out := make([]byte, BlockDataSize)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, raw[BlockHeaderSize:])
	return out, nil
}

// Encrypt hashes and encrypts a 0x200000-byte buffer whose 64 block-data
// regions already carry plaintext (block headers may be undefined on entry).
// It returns the same buffer, fully encrypted in place, and the 20-byte H3
// digest of the group's H2 table.
func Encrypt(buf []byte, titleKey []byte) (h3 []byte, err error) {
	if len(buf) != Size {
		return nil, wiierr.New(wiierr.MalformedInput, "group: encrypt", "group buffer must be 0x200000 bytes")
	}
	block, cerr := aes.NewCipher(titleKey)
	if cerr != nil {
		return nil, wiierr.Wrap(wiierr.Io, "group: encrypt", cerr)
	}

	h2 := make([]byte, sha1Size*SubgroupsPerGroup)

	for s := 0; s < SubgroupsPerGroup; s++ {
		h1 := make([]byte, sha1Size*BlocksPerSubgroup)

		for b := 0; b < BlocksPerSubgroup; b++ {
			blockStart := s*subgroupSize + b*BlockSize
			blockData := buf[blockStart+BlockHeaderSize : blockStart+BlockSize]

			h0 := make([]byte, sha1Size*SubblocksPerBlock)
			for j := 0; j < SubblocksPerBlock; j++ {
				sub := blockData[j*subblockSize : (j+1)*subblockSize]
				digest := sha1.Sum(sub)
				copy(h0[j*sha1Size:(j+1)*sha1Size], digest[:])
			}

			digest := sha1.Sum(h0)
			copy(h1[b*sha1Size:(b+1)*sha1Size], digest[:])

			copy(buf[blockStart+h0Offset:blockStart+h0Offset+len(h0)], h0)
			zero(buf[blockStart+h0Offset+len(h0) : blockStart+h1Offset])
		}

		digest := sha1.Sum(h1)
		copy(h2[s*sha1Size:(s+1)*sha1Size], digest[:])

		for b := 0; b < BlocksPerSubgroup; b++ {
			blockStart := s*subgroupSize + b*BlockSize
			copy(buf[blockStart+h1Offset:blockStart+h1Offset+len(h1)], h1)
			zero(buf[blockStart+h1Offset+len(h1) : blockStart+h2Offset])
		}
	}

	sum := sha1.Sum(h2)
	h3 = sum[:]

	for s := 0; s < SubgroupsPerGroup; s++ {
		for b := 0; b < BlocksPerSubgroup; b++ {
			blockStart := s*subgroupSize + b*BlockSize

			copy(buf[blockStart+h2Offset:blockStart+h2Offset+len(h2)], h2)
			zero(buf[blockStart+h2Offset+len(h2) : blockStart+BlockHeaderSize])

			header := buf[blockStart : blockStart+BlockHeaderSize]
			cipher.NewCBCEncrypter(block, bytes.Repeat([]byte{0}, 16)).CryptBlocks(header, header)

			iv := append([]byte(nil), header[ivOffset:ivOffset+16]...)
			data := buf[blockStart+BlockHeaderSize : blockStart+BlockSize]
			cipher.NewCBCEncrypter(block, iv).CryptBlocks(data, data)
		}
	}

	return h3, nil
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
