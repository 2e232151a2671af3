// Package wiso ties the disc codec together into a single read path: open a
// disc image file, locate its partitions from the outer partition table, and
// read a partition's boot segment and file system through one decrypting
// view over its data.
package wiso

import (
	"io"
	"os"

	"github.com/go-wii/wiiso/pkg/fst"
	"github.com/go-wii/wiiso/pkg/part"
	"github.com/go-wii/wiiso/pkg/structs"
	"github.com/go-wii/wiiso/pkg/wiierr"
	"github.com/go-wii/wiiso/pkg/wlog"
)

const (
	bootHeaderSize      = 0x440
	bi2Offset           = 0x440
	bi2Size             = 0x2000
	apploaderOffset     = 0x2440
	apploaderHeaderSize = 0x20
	dolHeaderSize       = 0x100

	// partitionHeaderMaxSize bounds the section read when parsing a
	// partition header: ticket + TMD/cert pointer fields never run past it.
	partitionHeaderMaxSize = 1 << 16
)

// Image is an opened disc image file, giving access to its outer header and
// partition table. The region descriptor at 0x4E000 is not read.
type Image struct {
	f       *os.File
	header  *structs.DiscHeader
	entries []*structs.PartitionEntry
	log     wlog.Logger
}

// SetLogger attaches an optional logger; a nil logger (the default) keeps
// the image and partitions it opens silent. Partitions opened before this
// call are unaffected.
func (img *Image) SetLogger(log wlog.Logger) {
	img.log = log
}

// Open reads the outer disc header and partition table from the file at
// path. The returned Image owns the file and must be closed by the caller.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wiierr.Wrap(wiierr.Io, "wiso: open", err)
	}

	header, err := structs.ReadDiscHeader(io.NewSectionReader(f, 0, bootHeaderSize))
	if err != nil {
		f.Close()
		return nil, err
	}

	entries, err := structs.ReadPartitionTable(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Image{f: f, header: header, entries: entries}, nil
}

// OpenWithLogger is Open plus an attached logger (nil-safe): partition
// opens and the decrypting reader's cache hits/misses of every partition
// later opened through the returned Image are narrated through log.
func OpenWithLogger(path string, log wlog.Logger) (*Image, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	img.SetLogger(log)
	if log != nil {
		log.Infof("wiso: opened disc game_id=%s partitions=%d", string(img.header.GameID), len(img.entries))
	}
	return img, nil
}

// Close closes the underlying file.
func (img *Image) Close() error {
	return img.f.Close()
}

// Header returns the outer disc header read at Open.
func (img *Image) Header() *structs.DiscHeader { return img.header }

// Partitions returns every entry in the outer partition table, in on-disc order.
func (img *Image) Partitions() []*structs.PartitionEntry { return img.entries }

// OpenPartition opens the partition at entries[index] for reading.
func (img *Image) OpenPartition(index int) (*Partition, error) {
	if index < 0 || index >= len(img.entries) {
		return nil, wiierr.New(wiierr.OutOfRange, "wiso: open partition", "partition index out of range")
	}
	return img.openPartitionAt(img.entries[index].Offset)
}

// OpenPartitionOfType opens the first partition of the given type, or
// NotFound if the disc has none.
func (img *Image) OpenPartitionOfType(t structs.PartType) (*Partition, error) {
	for i, e := range img.entries {
		if e.PartType == t {
			return img.OpenPartition(i)
		}
	}
	return nil, wiierr.New(wiierr.NotFound, "wiso: open partition", "no partition of the requested type")
}

func (img *Image) openPartitionAt(offset uint64) (*Partition, error) {
	win := io.NewSectionReader(img.f, int64(offset), (1 << 40))

	header, err := structs.ReadPartitionHeader(io.NewSectionReader(win, 0, partitionHeaderMaxSize))
	if err != nil {
		return nil, err
	}

	tmd, err := structs.ReadTMD(io.NewSectionReader(win, int64(header.TMDOffset), int64(header.TMDSize)))
	if err != nil {
		return nil, err
	}

	certs, err := structs.ReadCertificateChain(io.NewSectionReader(win, int64(header.CertChainOffset), int64(header.CertChainSize)))
	if err != nil {
		return nil, err
	}

	reader := part.NewDecryptingReader(win, int64(header.DataOffset), int64(header.DataSize), header.Ticket.TitleKey)
	reader.SetLogger(img.log)

	if img.log != nil {
		img.log.Infof("wiso: opened partition offset=0x%X", offset)
	}

	return &Partition{
		header: header,
		tmd:    tmd,
		certs:  certs,
		reader: reader,
	}, nil
}

// Partition is one opened Wii partition: its trust chain plus a decrypting
// view over its plaintext boot segment and file system.
type Partition struct {
	header *structs.PartitionHeader
	tmd    *structs.TMD
	certs  []*structs.Certificate
	reader *part.DecryptingReader

	boot *structs.DiscHeader
	root *fst.Directory
}

// Header returns the partition's on-disc header.
func (p *Partition) Header() *structs.PartitionHeader { return p.header }

// TMD returns the partition's title metadata.
func (p *Partition) TMD() *structs.TMD { return p.tmd }

// Certificates returns the partition's certificate chain, in on-disc order.
func (p *Partition) Certificates() []*structs.Certificate { return p.certs }

// PlaintextReader returns random access over the partition's decrypted data
// area, addressed by plaintext offset.
func (p *Partition) PlaintextReader() io.ReaderAt { return p.reader }

// ReadBoot reads and caches the plaintext disc header at the start of the
// partition's data area.
func (p *Partition) ReadBoot() (*structs.DiscHeader, error) {
	if p.boot != nil {
		return p.boot, nil
	}
	h, err := structs.ReadDiscHeader(io.NewSectionReader(p.reader, 0, bootHeaderSize))
	if err != nil {
		return nil, err
	}
	p.boot = h
	return h, nil
}

// ReadBI2 reads the 0x2000-byte BI2 region following the boot header.
func (p *Partition) ReadBI2() ([]byte, error) {
	buf := make([]byte, bi2Size)
	if _, err := p.reader.ReadAt(buf, bi2Offset); err != nil {
		return nil, wiierr.Wrap(wiierr.Io, "wiso: read bi2", err)
	}
	return buf, nil
}

// ReadApploader reads the apploader image starting at 0x2440: its header
// followed by the two size fields it declares.
func (p *Partition) ReadApploader() ([]byte, error) {
	hdr, err := structs.ReadApploaderHeader(io.NewSectionReader(p.reader, apploaderOffset, apploaderHeaderSize))
	if err != nil {
		return nil, err
	}
	total := int64(apploaderHeaderSize) + int64(hdr.Size1) + int64(hdr.Size2)
	buf := make([]byte, total)
	if _, err := p.reader.ReadAt(buf, apploaderOffset); err != nil {
		return nil, wiierr.Wrap(wiierr.Io, "wiso: read apploader", err)
	}
	return buf, nil
}

// ReadDOL reads the main executable located at the boot header's DOLOffset.
func (p *Partition) ReadDOL() ([]byte, error) {
	boot, err := p.ReadBoot()
	if err != nil {
		return nil, err
	}
	hdr, err := structs.ReadDOLHeader(io.NewSectionReader(p.reader, int64(boot.DOLOffset), dolHeaderSize))
	if err != nil {
		return nil, err
	}
	size := int64(hdr.Size())
	buf := make([]byte, size)
	if _, err := p.reader.ReadAt(buf, int64(boot.DOLOffset)); err != nil {
		return nil, wiierr.Wrap(wiierr.Io, "wiso: read dol", err)
	}
	return buf, nil
}

// FST reads and caches the partition's file system tree.
func (p *Partition) FST() (*fst.Directory, error) {
	if p.root != nil {
		return p.root, nil
	}
	boot, err := p.ReadBoot()
	if err != nil {
		return nil, err
	}
	root, err := fst.Read(p.reader, int64(boot.FSTOffset))
	if err != nil {
		return nil, err
	}
	p.root = root
	return root, nil
}

// ListFiles returns the slash-joined path of every file in the partition.
func (p *Partition) ListFiles() ([]string, error) {
	root, err := p.FST()
	if err != nil {
		return nil, err
	}
	return root.ListFiles(), nil
}

// ReadFile resolves path in the partition's file system and returns its
// full contents.
func (p *Partition) ReadFile(path string) ([]byte, error) {
	root, err := p.FST()
	if err != nil {
		return nil, err
	}
	f, err := root.LookupFile(path)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, f.Length)
	if f.Length > 0 {
		if _, err := p.reader.ReadAt(buf, f.Offset); err != nil {
			return nil, wiierr.Wrap(wiierr.Io, "wiso: read file", err)
		}
	}
	return buf, nil
}
