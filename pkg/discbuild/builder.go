// Package discbuild assembles a new Wii disc image: it places partitions,
// drives each partition's header/TMD/cert/data emit sequence, and finalises
// the outer partition table.
package discbuild

import (
	"io"

	"github.com/go-wii/wiiso/pkg/copybuild"
	"github.com/go-wii/wiiso/pkg/group"
	"github.com/go-wii/wiiso/pkg/part"
	"github.com/go-wii/wiiso/pkg/structs"
	"github.com/go-wii/wiiso/pkg/wio"
	"github.com/go-wii/wiiso/pkg/wiierr"
	"github.com/go-wii/wiiso/pkg/wlog"
)

const (
	// firstPartitionOffset is the fixed absolute offset of the first
	// partition in a freshly built disc.
	firstPartitionOffset = 0xF800000
	// partitionReserve is the space reserved for a partition's metadata
	// (header, TMD, certs, H3 table) ahead of its data; the next partition
	// starts at the previous offset plus this reserve plus its data size,
	// aligned up.
	partitionReserve = 0x20000
	// partitionAlignment keeps subsequent partitions group-aligned.
	partitionAlignment = 0x200000

	regionOffset = 0x4E000
	regionSize   = 32
)

func alignUp(v, n int64) int64 {
	return (v + n - 1) / n * n
}

// PartitionSource describes one partition to add to the disc: its header
// (ticket, TMD, certs already populated except data_size), its
// internal disc header, boot segment payloads, and its FST content.
type PartitionSource struct {
	Header       *structs.PartitionHeader
	TMD          *structs.TMD
	Certs        []*structs.Certificate
	InternalDisc *structs.DiscHeader
	BI2          []byte // exactly 0x2000 bytes
	Apploader    []byte // starting at plaintext 0x2440
	DOL          []byte
	Content      *copybuild.Partition
	Progress     func(done, total int)
}

// Builder accumulates partitions for a new disc image and writes the final
// outer layout on Finish.
type Builder struct {
	header  *structs.DiscHeader
	region  [regionSize]byte
	entries []*structs.PartitionEntry
	sizes   []int64
	log     wlog.Logger
}

// SetLogger attaches an optional logger; a nil logger (the default) keeps
// the builder silent. The logger is also handed to each partition's
// streaming encryptor.
func (b *Builder) SetLogger(log wlog.Logger) {
	b.log = log
}

// NewBuilder starts a new disc with the given outer disc header and region
// descriptor. The region bytes are copied; the header is retained by
// reference.
func NewBuilder(header *structs.DiscHeader, region []byte) *Builder {
	b := &Builder{header: header}
	copy(b.region[:], region)
	return b
}

// AddPartition lays out one partition at the next available slot, writes its
// header/TMD/certs/data through w, and records its placement for Finish.
func (b *Builder) AddPartition(w io.WriterAt, src PartitionSource, partType structs.PartType) error {
	offset := b.nextOffset()

	internal := *src.InternalDisc // copy so later mutation doesn't leak

	fstSize := src.Content.Builder().ByteSize()
	fstSizePadded := (int64(fstSize) + 3) &^ 3 // padded variant, see design notes
	internal.FSTSize = uint64(fstSizePadded)
	internal.FSTMaxSize = uint64(fstSizePadded)
	fileDataStart := int64(internal.FSTOffset) + fstSizePadded
	src.Content.AssignFileOffsets(fileDataStart)

	header := *src.Header // copy
	header.DataSize = 0
	partWindow := partitionWriter{w: w, base: offset}

	if err := writeAt(&partWindow, 0, &header); err != nil {
		return err
	}
	if err := writeAt(&partWindow, int64(header.TMDOffset), src.TMD); err != nil {
		return err
	}
	certOff := int64(header.CertChainOffset)
	for _, c := range src.Certs {
		if err := writeAt(&partWindow, certOff, c); err != nil {
			return err
		}
		certOff += certificateSize(c)
	}

	enc := part.NewStreamEncryptor(&partWindow, int64(header.DataOffset), src.Header.Ticket.TitleKey)
	enc.SetLogger(b.log)
	src.Content.SetLogger(b.log)

	if err := internal.Write(enc); err != nil {
		return err
	}
	if err := padEncryptor(enc, 0x440); err != nil {
		return err
	}
	if _, err := enc.Write(src.BI2); err != nil {
		return wiierr.Wrap(wiierr.Io, "discbuild: write bi2", err)
	}
	if err := padEncryptor(enc, 0x2440); err != nil {
		return err
	}
	if _, err := enc.Write(src.Apploader); err != nil {
		return wiierr.Wrap(wiierr.Io, "discbuild: write apploader", err)
	}
	if err := padEncryptor(enc, int64(internal.DOLOffset)); err != nil {
		return err
	}
	if _, err := enc.Write(src.DOL); err != nil {
		return wiierr.Wrap(wiierr.Io, "discbuild: write dol", err)
	}
	if err := padEncryptor(enc, int64(internal.FSTOffset)); err != nil {
		return err
	}
	if _, err := src.Content.Builder().WriteTo(enc); err != nil {
		return wiierr.Wrap(wiierr.Io, "discbuild: write fst", err)
	}
	if err := padEncryptor(enc, fileDataStart); err != nil {
		return err
	}
	if err := src.Content.WriteFileData(enc, src.Progress); err != nil {
		return err
	}

	if err := enc.Close(); err != nil {
		return err
	}

	if _, err := w.WriteAt(enc.H3Table(), offset+int64(header.H3TableOffset)); err != nil {
		return wiierr.Wrap(wiierr.Io, "discbuild: write h3 table", err)
	}

	header.DataSize = uint64((enc.Position()/group.DataSize + 1) * group.Size)
	if err := writeAt(&partWindow, 0, &header); err != nil {
		return err
	}

	b.entries = append(b.entries, &structs.PartitionEntry{Offset: uint64(offset), PartType: partType})
	b.sizes = append(b.sizes, int64(header.DataSize))

	if b.log != nil {
		b.log.Infof("discbuild: wrote partition type=%s offset=0x%X bytes=%d", partType, offset, header.DataSize)
	}
	return nil
}

func (b *Builder) nextOffset() int64 {
	if len(b.entries) == 0 {
		return firstPartitionOffset
	}
	prev := b.entries[len(b.entries)-1]
	prevSize := b.sizes[len(b.sizes)-1]
	return alignUp(int64(prev.Offset)+partitionReserve+prevSize, partitionAlignment)
}

// Finish writes the outer disc header, region descriptor, and partition
// table, completing the image.
func (b *Builder) Finish(w io.WriterAt) error {
	if err := writeAt(atWriter{w}, 0, b.header); err != nil {
		return err
	}
	if _, err := w.WriteAt(b.region[:], regionOffset); err != nil {
		return wiierr.Wrap(wiierr.Io, "discbuild: write region", err)
	}
	if err := structs.WritePartitionTable(w, b.entries); err != nil {
		return err
	}
	if b.log != nil {
		b.log.Infof("discbuild: finished disc partitions=%d", len(b.entries))
	}
	return nil
}

// --- small local plumbing -------------------------------------------------

// partitionWriter adapts an absolute io.WriterAt plus a partition base into
// the relative-offset io.WriterAt that the streaming encryptor writes through.
type partitionWriter struct {
	w    io.WriterAt
	base int64
}

func (pw *partitionWriter) WriteAt(p []byte, off int64) (int, error) {
	return pw.w.WriteAt(p, pw.base+off)
}

type writerAtFromOffset struct {
	w   io.WriterAt
	off int64
}

func (w *writerAtFromOffset) Write(p []byte) (int, error) {
	n, err := w.w.WriteAt(p, w.off)
	w.off += int64(n)
	return n, err
}

type serializer interface {
	Write(w io.Writer) error
}

func writeAt(w io.WriterAt, off int64, s serializer) error {
	return s.Write(&writerAtFromOffset{w: w, off: off})
}

type atWriter struct{ w io.WriterAt }

func (a atWriter) WriteAt(p []byte, off int64) (int, error) { return a.w.WriteAt(p, off) }

type byteCounter struct{ n int64 }

func (c *byteCounter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

func certificateSize(c *structs.Certificate) int64 {
	var counter byteCounter
	_ = c.Write(&counter)
	return counter.n
}

func padEncryptor(enc *part.StreamEncryptor, target int64) error {
	pos := enc.Position()
	return wio.PadTo(enc, &pos, target)
}
