package discbuild

import (
	"bytes"
	"testing"

	"github.com/go-wii/wiiso/pkg/copybuild"
	"github.com/go-wii/wiiso/pkg/fst"
	"github.com/go-wii/wiiso/pkg/part"
	"github.com/go-wii/wiiso/pkg/structs"
)

// memDisc is a sparse, byte-addressed backing store implementing both
// io.WriterAt and io.ReaderAt, standing in for a disc image file in tests.
// A real disc image spaces its first partition 0xF800000 bytes in; a plain
// growable []byte would force every test to allocate that much memory, so
// this stores only the bytes actually written and reads zeroes elsewhere.
type memDisc struct {
	data map[int64]byte
}

func (m *memDisc) WriteAt(p []byte, off int64) (int, error) {
	if m.data == nil {
		m.data = make(map[int64]byte)
	}
	for i, b := range p {
		m.data[off+int64(i)] = b
	}
	return len(p), nil
}

func (m *memDisc) ReadAt(p []byte, off int64) (int, error) {
	for i := range p {
		p[i] = m.data[off+int64(i)]
	}
	return len(p), nil
}

// section reads length bytes starting at offset, for assertions that want a
// plain []byte/io.Reader over a known-bounded region.
func (m *memDisc) section(offset, length int64) []byte {
	out := make([]byte, length)
	_, _ = m.ReadAt(out, offset)
	return out
}

func testHeader() *structs.PartitionHeader {
	ticket := &structs.Ticket{
		SignatureType:           structs.SignatureRSA2048,
		Signature:               make([]byte, 0x100),
		SignatureIssuer:         make([]byte, 0x40),
		ECDH:                    make([]byte, 0x3C),
		TicketID:                make([]byte, 8),
		ConsoleID:               make([]byte, 4),
		TitleID:                 []byte{0, 1, 0, 1, 'T', 'E', 'S', 'T'},
		CommonKeyIndex:          0,
		ContentAccessPermission: make([]byte, 0x40),
		TitleKey:                bytes.Repeat([]byte{0x55}, 16),
	}
	return &structs.PartitionHeader{
		Ticket:          ticket,
		TMDSize:         0,
		TMDOffset:       0x2C0,
		CertChainSize:   0,
		CertChainOffset: 0x700,
		H3TableOffset:   0x8000,
		DataOffset:      0x20000,
	}
}

func testCert() *structs.Certificate {
	return &structs.Certificate{
		SignatureType: structs.SignatureECC,
		Signature:     make([]byte, 0x40),
		Issuer:        make([]byte, 0x40),
		KeyType:       structs.KeyECC,
		ChildIdentity: make([]byte, 0x40),
		Key:           make([]byte, 0x3C),
	}
}

func testTMD() *structs.TMD {
	return &structs.TMD{
		SignatureType:        structs.SignatureRSA2048,
		Signature:            make([]byte, 0x100),
		SignatureIssuer:      make([]byte, 0x40),
		FakeSignaturePadding: make([]byte, 0x38),
	}
}

func TestAddPartitionAndFinishRoundTrip(t *testing.T) {
	disc := &memDisc{}

	root := &fst.Directory{
		Children: []fst.Node{
			&fst.File{Name: "a.bin", RawName: []byte("a.bin"), Length: 5},
			&fst.File{Name: "bb.bin", RawName: []byte("bb.bin"), Length: 3},
		},
	}
	sourceData := []byte("HELLOxyz")
	// a.bin = source[0:5] = "HELLO", bb.bin = source[5:8] = "xyz"
	root.Children[0].(*fst.File).Offset = 0
	root.Children[1].(*fst.File).Offset = 5

	content, err := copybuild.New(root, bytes.NewReader(sourceData))
	if err != nil {
		t.Fatalf("copybuild.New: %v", err)
	}

	internal := NewInternalDiscHeader("TEST01", 0, 1, "Test Game")
	internal.DOLOffset = 0x3000
	internal.FSTOffset = 0x4000

	header := testHeader()
	b := NewBuilder(internal, NewRegion(1))

	src := PartitionSource{
		Header:       header,
		TMD:          testTMD(),
		Certs:        []*structs.Certificate{testCert()},
		InternalDisc: internal,
		BI2:          make([]byte, BI2Size),
		Apploader:    bytes.Repeat([]byte{0xAA}, 0x40),
		DOL:          bytes.Repeat([]byte{0xBB}, 0x20),
		Content:      content,
	}

	if err := b.AddPartition(disc, src, structs.PartData); err != nil {
		t.Fatalf("AddPartition: %v", err)
	}
	if err := b.Finish(disc); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	entries, err := structs.ReadPartitionTable(disc)
	if err != nil {
		t.Fatalf("ReadPartitionTable: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Offset != firstPartitionOffset {
		t.Fatalf("partition offset = %#x, want %#x", entries[0].Offset, firstPartitionOffset)
	}
	if entries[0].PartType != structs.PartData {
		t.Fatalf("PartType = %v, want PartData", entries[0].PartType)
	}

	partHeader, err := structs.ReadPartitionHeader(bytes.NewReader(disc.section(int64(entries[0].Offset), 4096)))
	if err != nil {
		t.Fatalf("ReadPartitionHeader: %v", err)
	}
	if partHeader.DataSize == 0 {
		t.Fatal("expected a nonzero DataSize after AddPartition finalized the header")
	}

	r := part.NewDecryptingReader(disc, int64(entries[0].Offset)+int64(partHeader.DataOffset), int64(partHeader.DataSize), partHeader.Ticket.TitleKey)
	plain, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	gotInternal, err := structs.ReadDiscHeader(bytes.NewReader(plain[:InternalDiscHeaderSize]))
	if err != nil {
		t.Fatalf("ReadDiscHeader: %v", err)
	}
	if string(bytes.TrimRight(gotInternal.GameID, "\x00")) != "TEST01" {
		t.Fatalf("GameID = %q, want %q", gotInternal.GameID, "TEST01")
	}
	if gotInternal.GameTitle != "Test Game" {
		t.Fatalf("GameTitle = %q, want %q", gotInternal.GameTitle, "Test Game")
	}

	gotFST, err := fst.Read(bytes.NewReader(plain), int64(gotInternal.FSTOffset))
	if err != nil {
		t.Fatalf("fst.Read: %v", err)
	}
	aFile, err := gotFST.LookupFile("a.bin")
	if err != nil {
		t.Fatalf("LookupFile a.bin: %v", err)
	}
	got := plain[aFile.Offset : aFile.Offset+aFile.Length]
	if string(got) != "HELLO" {
		t.Fatalf("a.bin content = %q, want %q", got, "HELLO")
	}

	bFile, err := gotFST.LookupFile("bb.bin")
	if err != nil {
		t.Fatalf("LookupFile bb.bin: %v", err)
	}
	got2 := plain[bFile.Offset : bFile.Offset+bFile.Length]
	if string(got2) != "xyz" {
		t.Fatalf("bb.bin content = %q, want %q", got2, "xyz")
	}
}

func TestNewRegion(t *testing.T) {
	r := NewRegion(2)
	if len(r) != regionSize {
		t.Fatalf("len(NewRegion) = %d, want %d", len(r), regionSize)
	}
	if r[3] != 2 {
		t.Fatalf("region code byte = %d, want 2", r[3])
	}
}

func TestPadGameIDTruncatesAndPads(t *testing.T) {
	h := NewInternalDiscHeader("ABCDEFGH", 0, 0, "")
	if len(h.GameID) != 6 {
		t.Fatalf("len(GameID) = %d, want 6", len(h.GameID))
	}
	if string(h.GameID) != "ABCDEF" {
		t.Fatalf("GameID = %q, want %q", h.GameID, "ABCDEF")
	}

	h2 := NewInternalDiscHeader("AB", 0, 0, "")
	if len(h2.GameID) != 6 || h2.GameID[2] != 0 {
		t.Fatalf("short GameID not zero-padded: %x", h2.GameID)
	}
}
