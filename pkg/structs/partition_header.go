package structs

import "io"

// PartitionHeader sits at the start of a partition and locates its ticket,
// TMD, certificate chain, H3 table, and data area.
//
// https://wiibrew.org/wiki/Wii_disc#Partition
type PartitionHeader struct {
	Ticket              *Ticket
	TMDSize             uint32
	TMDOffset           uint64
	CertChainSize       uint32
	CertChainOffset     uint64
	H3TableOffset       uint64
	DataOffset          uint64
	DataSize            uint64
}

func ReadPartitionHeader(r io.Reader) (*PartitionHeader, error) {
	h := &PartitionHeader{}
	var err error

	if h.Ticket, err = ReadTicket(r); err != nil {
		return nil, err
	}
	if h.TMDSize, err = readU32(r); err != nil {
		return nil, err
	}
	if h.TMDOffset, err = readU32Shifted(r); err != nil {
		return nil, err
	}
	if h.CertChainSize, err = readU32(r); err != nil {
		return nil, err
	}
	if h.CertChainOffset, err = readU32Shifted(r); err != nil {
		return nil, err
	}
	if h.H3TableOffset, err = readU32Shifted(r); err != nil {
		return nil, err
	}
	if h.DataOffset, err = readU32Shifted(r); err != nil {
		return nil, err
	}
	if h.DataSize, err = readU32Shifted(r); err != nil {
		return nil, err
	}

	return h, nil
}

func (h *PartitionHeader) Write(w io.Writer) error {
	if err := h.Ticket.Write(w); err != nil {
		return err
	}
	if err := writeU32(w, h.TMDSize); err != nil {
		return err
	}
	if err := writeU32Shifted(w, h.TMDOffset); err != nil {
		return err
	}
	if err := writeU32(w, h.CertChainSize); err != nil {
		return err
	}
	if err := writeU32Shifted(w, h.CertChainOffset); err != nil {
		return err
	}
	if err := writeU32Shifted(w, h.H3TableOffset); err != nil {
		return err
	}
	if err := writeU32Shifted(w, h.DataOffset); err != nil {
		return err
	}
	return writeU32Shifted(w, h.DataSize)
}
