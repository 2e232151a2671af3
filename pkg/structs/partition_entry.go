package structs

import (
	"encoding/binary"
	"io"

	"github.com/go-wii/wiiso/pkg/wiierr"
)

const (
	// PartitionTableDescriptorOffset is the outer group-count/offset table.
	PartitionTableDescriptorOffset = 0x40000
	// partitionTableGroups is the fixed number of descriptor slots.
	partitionTableGroups = 4
)

// PartitionEntry is one row of the outer partition table: an absolute
// partition offset and its type.
//
// On-disc encoding is big-endian, matching both the documented format and
// the read path; a historical variant of the reference writer emitted
// little-endian here, which this implementation does not reproduce (see
// the design notes on partition-table endianness).
type PartitionEntry struct {
	Offset   uint64
	PartType PartType
}

func ReadPartitionEntry(r io.Reader) (*PartitionEntry, error) {
	off, err := readU32Shifted(r)
	if err != nil {
		return nil, err
	}
	t, err := readU32(r)
	if err != nil {
		return nil, err
	}
	return &PartitionEntry{Offset: off, PartType: PartType(t)}, nil
}

func (e *PartitionEntry) Write(w io.Writer) error {
	if err := writeU32Shifted(w, e.Offset); err != nil {
		return err
	}
	return writeU32(w, uint32(e.PartType))
}

// ReadPartitionTable reads the four-group outer descriptor at
// PartitionTableDescriptorOffset and every entry it references.
func ReadPartitionTable(r io.ReaderAt) ([]*PartitionEntry, error) {
	desc := io.NewSectionReader(r, PartitionTableDescriptorOffset, partitionTableGroups*8)

	type group struct {
		count  uint32
		offset uint64
	}
	groups := make([]group, partitionTableGroups)
	for i := range groups {
		count, err := readU32(desc)
		if err != nil {
			return nil, err
		}
		offset, err := readU32Shifted(desc)
		if err != nil {
			return nil, err
		}
		groups[i] = group{count: count, offset: offset}
	}

	var entries []*PartitionEntry
	for _, g := range groups {
		if g.count == 0 {
			continue
		}
		sr := io.NewSectionReader(r, int64(g.offset), int64(g.count)*8)
		for i := uint32(0); i < g.count; i++ {
			e, err := ReadPartitionEntry(sr)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// WritePartitionTable writes the outer descriptor (one populated group, three
// zeroed groups) at PartitionTableDescriptorOffset and the entries
// immediately after it, as produced by the disc builder's Finish step.
func WritePartitionTable(w io.WriterAt, entries []*PartitionEntry) error {
	entriesOffset := uint32(PartitionTableDescriptorOffset + partitionTableGroups*8)

	desc := make([]byte, partitionTableGroups*8)
	binary.BigEndian.PutUint32(desc[0:4], uint32(len(entries)))
	binary.BigEndian.PutUint32(desc[4:8], entriesOffset>>2)
	if _, err := w.WriteAt(desc, PartitionTableDescriptorOffset); err != nil {
		return wiierr.Wrap(wiierr.Io, "structs: write partition table", err)
	}

	buf := make([]byte, len(entries)*8)
	for i, e := range entries {
		binary.BigEndian.PutUint32(buf[i*8:i*8+4], uint32(e.Offset>>2))
		binary.BigEndian.PutUint32(buf[i*8+4:i*8+8], uint32(e.PartType))
	}
	if _, err := w.WriteAt(buf, int64(entriesOffset)); err != nil {
		return wiierr.Wrap(wiierr.Io, "structs: write partition table", err)
	}
	return nil
}
