// Package keys holds the two compile-time Wii common keys and the AES-CBC
// title-key unwrap/wrap used to recover a partition's data key from its ticket.
package keys

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/go-wii/wiiso/pkg/wiierr"
)

// Normal is common key index 0, used by the large majority of retail discs.
var Normal = [16]byte{
	0xeb, 0xe4, 0x2a, 0x22, 0x5e, 0x85, 0x93, 0xe4,
	0x48, 0xd9, 0xc5, 0x45, 0x73, 0x81, 0xaa, 0xf7,
}

// Korean is common key index 1, used for Korean-region titles.
var Korean = [16]byte{
	0x63, 0xb8, 0x2b, 0xb4, 0xf4, 0x61, 0x4e, 0x2e,
	0x13, 0xf2, 0xfe, 0xfb, 0xba, 0x4c, 0x9b, 0x7e,
}

// Common indexes the two known common keys by the ticket's common_key_index field.
var Common = [][16]byte{Normal, Korean}

// titleKeyIV builds the AES-CBC IV used to wrap/unwrap a title key: the
// 8-byte title ID followed by 8 zero bytes.
func titleKeyIV(titleID []byte) ([]byte, error) {
	if len(titleID) != 8 {
		return nil, wiierr.New(wiierr.MalformedInput, "keys: title key iv", "title id must be 8 bytes")
	}
	iv := make([]byte, 16)
	copy(iv, titleID)
	return iv, nil
}

func commonKey(index int) ([]byte, error) {
	if index < 0 || index >= len(Common) {
		return nil, wiierr.New(wiierr.Unsupported, "keys: common key", "common key index out of range")
	}
	k := Common[index]
	return k[:], nil
}

// DecryptTitleKey recovers the 16-byte plaintext title key from the
// ticket's encrypted_key field using AES-128-CBC under common_key[index].
func DecryptTitleKey(encryptedKey []byte, commonKeyIndex int, titleID []byte) ([]byte, error) {
	if len(encryptedKey) != 16 {
		return nil, wiierr.New(wiierr.MalformedInput, "keys: decrypt title key", "encrypted key must be 16 bytes")
	}
	key, err := commonKey(commonKeyIndex)
	if err != nil {
		return nil, err
	}
	iv, err := titleKeyIV(titleID)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wiierr.Wrap(wiierr.Io, "keys: decrypt title key", err)
	}
	out := make([]byte, 16)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, encryptedKey)
	return out, nil
}

// EncryptTitleKey is the inverse of DecryptTitleKey, used when writing a
// ticket back out after the title key has been set or re-derived.
func EncryptTitleKey(titleKey []byte, commonKeyIndex int, titleID []byte) ([]byte, error) {
	if len(titleKey) != 16 {
		return nil, wiierr.New(wiierr.MalformedInput, "keys: encrypt title key", "title key must be 16 bytes")
	}
	key, err := commonKey(commonKeyIndex)
	if err != nil {
		return nil, err
	}
	iv, err := titleKeyIV(titleID)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wiierr.Wrap(wiierr.Io, "keys: encrypt title key", err)
	}
	out := make([]byte, 16)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, titleKey)
	return out, nil
}
