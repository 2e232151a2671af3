package wiso

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-wii/wiiso/pkg/copybuild"
	"github.com/go-wii/wiiso/pkg/discbuild"
	"github.com/go-wii/wiiso/pkg/fst"
	"github.com/go-wii/wiiso/pkg/structs"
)

// buildTestImage assembles a minimal one-partition disc image at dir/name
// using the builder pipeline, so this package's read path can be exercised
// end to end without a real retail disc fixture.
func buildTestImage(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer out.Close()

	root := &fst.Directory{
		Children: []fst.Node{
			&fst.File{Name: "readme.txt", RawName: []byte("readme.txt"), Length: 11},
		},
	}
	source := []byte("hello disc!")
	root.Children[0].(*fst.File).Offset = 0

	content, err := copybuild.New(root, bytes.NewReader(source))
	if err != nil {
		t.Fatalf("copybuild.New: %v", err)
	}

	internal := discbuild.NewInternalDiscHeader("TEST01", 0, 1, "Test Disc")
	internal.DOLOffset = 0x3000
	internal.FSTOffset = 0x4000

	ticket := &structs.Ticket{
		SignatureType:           structs.SignatureRSA2048,
		Signature:               make([]byte, 0x100),
		SignatureIssuer:         make([]byte, 0x40),
		ECDH:                    make([]byte, 0x3C),
		TicketID:                make([]byte, 8),
		ConsoleID:               make([]byte, 4),
		TitleID:                 []byte{0, 1, 0, 1, 'T', 'E', 'S', 'T'},
		ContentAccessPermission: make([]byte, 0x40),
		TitleKey:                bytes.Repeat([]byte{0x5A}, 16),
	}
	header := &structs.PartitionHeader{
		Ticket:          ticket,
		TMDOffset:       0x2C0,
		TMDSize:         0x1E4, // TMD with no content records
		CertChainOffset: 0x700,
		CertChainSize:   0x1A4, // one ECC-signed certificate with an ECC key
		H3TableOffset:   0x8000,
		DataOffset:      0x20000,
	}
	tmd := &structs.TMD{
		SignatureType:        structs.SignatureRSA2048,
		Signature:            make([]byte, 0x100),
		SignatureIssuer:      make([]byte, 0x40),
		FakeSignaturePadding: make([]byte, 0x38),
	}
	cert := &structs.Certificate{
		SignatureType: structs.SignatureECC,
		Signature:     make([]byte, 0x40),
		Issuer:        make([]byte, 0x40),
		KeyType:       structs.KeyECC,
		ChildIdentity: make([]byte, 0x40),
		Key:           make([]byte, 0x3C),
	}

	b := discbuild.NewBuilder(internal, discbuild.NewRegion(1))
	err = b.AddPartition(out, discbuild.PartitionSource{
		Header:       header,
		TMD:          tmd,
		Certs:        []*structs.Certificate{cert},
		InternalDisc: internal,
		BI2:          make([]byte, discbuild.BI2Size),
		Apploader:    bytes.Repeat([]byte{0xAA}, 0x40),
		DOL:          bytes.Repeat([]byte{0xBB}, 0x20),
		Content:      content,
	}, structs.PartData)
	if err != nil {
		t.Fatalf("AddPartition: %v", err)
	}
	if err := b.Finish(out); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return path
}

func TestOpenReadPartitionAndFiles(t *testing.T) {
	path := buildTestImage(t, t.TempDir(), "test.iso")

	img, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer img.Close()

	if got := string(bytes.TrimRight(img.Header().GameID, "\x00")); got != "TEST01" {
		t.Fatalf("GameID = %q, want %q", got, "TEST01")
	}

	parts := img.Partitions()
	if len(parts) != 1 {
		t.Fatalf("len(Partitions()) = %d, want 1", len(parts))
	}

	part, err := img.OpenPartition(0)
	if err != nil {
		t.Fatalf("OpenPartition: %v", err)
	}

	boot, err := part.ReadBoot()
	if err != nil {
		t.Fatalf("ReadBoot: %v", err)
	}
	if boot.GameTitle != "Test Disc" {
		t.Fatalf("GameTitle = %q, want %q", boot.GameTitle, "Test Disc")
	}

	files, err := part.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0] != "readme.txt" {
		t.Fatalf("ListFiles = %v, want [readme.txt]", files)
	}

	data, err := part.ReadFile("readme.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello disc!" {
		t.Fatalf("ReadFile content = %q, want %q", data, "hello disc!")
	}
}

func TestOpenPartitionOfTypeNotFound(t *testing.T) {
	path := buildTestImage(t, t.TempDir(), "test.iso")

	img, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer img.Close()

	if _, err := img.OpenPartitionOfType(structs.PartChannel); err == nil {
		t.Fatal("expected NotFound opening a partition type absent from the disc")
	}
}

func TestOpenPartitionIndexOutOfRange(t *testing.T) {
	path := buildTestImage(t, t.TempDir(), "test.iso")

	img, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer img.Close()

	if _, err := img.OpenPartition(5); err == nil {
		t.Fatal("expected an error opening an out-of-range partition index")
	}
}
