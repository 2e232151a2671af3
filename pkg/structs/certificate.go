package structs

import (
	"io"

	"github.com/go-wii/wiiso/pkg/wiierr"
)

// Certificate is one link in a Wii trust chain. Signature and key sizes are
// determined by SignatureType and KeyType respectively.
//
// https://wiibrew.org/wiki/Certificate_chain
type Certificate struct {
	SignatureType   SignatureType
	Signature       []byte
	Issuer          []byte // 0x40
	KeyType         KeyType
	ChildIdentity   []byte // 0x40
	KeyID           uint32
	Key             []byte
	PublicExponent  uint32
}

func signatureLength(t SignatureType) (int, error) {
	switch t {
	case SignatureRSA2048:
		return 0x100, nil
	case SignatureRSA4096:
		return 0x200, nil
	case SignatureECC:
		return 0x40, nil
	default:
		return 0, wiierr.New(wiierr.Unsupported, "structs: certificate", "unhandled signature type")
	}
}

func ReadCertificate(r io.Reader) (*Certificate, error) {
	c := &Certificate{}

	sig, err := readU32(r)
	if err != nil {
		return nil, err
	}
	c.SignatureType = SignatureType(sig)

	length, err := signatureLength(c.SignatureType)
	if err != nil {
		return nil, err
	}
	if c.Signature, err = readFull(r, length); err != nil {
		return nil, err
	}
	if err = readSkip(r, 0x3C); err != nil {
		return nil, err
	}
	if c.Issuer, err = readFull(r, 0x40); err != nil {
		return nil, err
	}
	kt, err := readU32(r)
	if err != nil {
		return nil, err
	}
	c.KeyType = KeyType(kt)
	if c.ChildIdentity, err = readFull(r, 0x40); err != nil {
		return nil, err
	}
	if c.KeyID, err = readU32(r); err != nil {
		return nil, err
	}

	switch c.KeyType {
	case KeyRSA2048:
		if c.Key, err = readFull(r, 0x100); err != nil {
			return nil, err
		}
		if c.PublicExponent, err = readU32(r); err != nil {
			return nil, err
		}
		if err = readSkip(r, 0x34); err != nil {
			return nil, err
		}
	case KeyRSA4096:
		if c.Key, err = readFull(r, 0x200); err != nil {
			return nil, err
		}
		if c.PublicExponent, err = readU32(r); err != nil {
			return nil, err
		}
		if err = readSkip(r, 0x34); err != nil {
			return nil, err
		}
	case KeyECC:
		if c.Key, err = readFull(r, 0x3C); err != nil {
			return nil, err
		}
		if err = readSkip(r, 0x60); err != nil {
			return nil, err
		}
	default:
		return nil, wiierr.New(wiierr.Unsupported, "structs: certificate", "unhandled key type")
	}

	return c, nil
}

// ReadCertificateChain reads certificates back to back from r until it is
// exhausted. The chain's byte length is not passed in, so r should already
// be bounded to it (e.g. via io.NewSectionReader).
func ReadCertificateChain(r io.Reader) ([]*Certificate, error) {
	var chain []*Certificate
	for {
		c, err := ReadCertificate(r)
		if err != nil {
			if kind, ok := wiierr.KindOf(err); ok && kind == wiierr.Io && len(chain) > 0 {
				break
			}
			return nil, err
		}
		chain = append(chain, c)
	}
	return chain, nil
}

func (c *Certificate) Write(w io.Writer) error {
	if err := writeU32(w, uint32(c.SignatureType)); err != nil {
		return err
	}
	if err := writeBytes(w, c.Signature); err != nil {
		return err
	}
	if err := writeZero(w, 0x3C); err != nil {
		return err
	}
	if err := writeBytes(w, c.Issuer); err != nil {
		return err
	}
	if err := writeU32(w, uint32(c.KeyType)); err != nil {
		return err
	}
	if err := writeBytes(w, c.ChildIdentity); err != nil {
		return err
	}
	if err := writeU32(w, c.KeyID); err != nil {
		return err
	}
	if err := writeBytes(w, c.Key); err != nil {
		return err
	}

	switch c.KeyType {
	case KeyRSA4096, KeyRSA2048:
		if err := writeU32(w, c.PublicExponent); err != nil {
			return err
		}
		return writeZero(w, 0x34)
	case KeyECC:
		return writeZero(w, 0x60)
	default:
		return wiierr.New(wiierr.Unsupported, "structs: certificate", "unhandled key type")
	}
}
