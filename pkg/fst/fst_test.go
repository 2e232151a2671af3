package fst

import (
	"bytes"
	"testing"

	"github.com/go-wii/wiiso/pkg/wiierr"
)

func sampleTree() *Directory {
	return &Directory{
		Name: "", RawName: nil,
		Children: []Node{
			&File{Name: "boot.dol", RawName: []byte("boot.dol"), Offset: 0x2440, Length: 0x1000},
			&Directory{
				Name: "data", RawName: []byte("data"),
				Children: []Node{
					&File{Name: "save.bin", RawName: []byte("save.bin"), Offset: 0x4440, Length: 0x200},
				},
			},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	root := sampleTree()

	var buf bytes.Buffer
	if _, err := Write(&buf, root); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(bytes.NewReader(buf.Bytes()), 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	files := got.ListFiles()
	want := map[string]bool{"boot.dol": true, "data/save.bin": true}
	if len(files) != len(want) {
		t.Fatalf("ListFiles = %v, want keys of %v", files, want)
	}
	for _, f := range files {
		if !want[f] {
			t.Fatalf("unexpected file path %q", f)
		}
	}

	f, err := got.LookupFile("data/save.bin")
	if err != nil {
		t.Fatalf("LookupFile: %v", err)
	}
	if f.Offset != 0x4440 || f.Length != 0x200 {
		t.Fatalf("save.bin = %+v, want offset 0x4440 length 0x200", f)
	}
}

func TestLookupFileOnDirectoryFails(t *testing.T) {
	root := sampleTree()
	_, err := root.LookupFile("data")
	if kind, ok := wiierr.KindOf(err); !ok || kind != wiierr.WrongNodeKind {
		t.Fatalf("expected WrongNodeKind, got %v", err)
	}
}

func TestLookupDirectoryOnFileFails(t *testing.T) {
	root := sampleTree()
	_, err := root.LookupDirectory("boot.dol")
	if kind, ok := wiierr.KindOf(err); !ok || kind != wiierr.WrongNodeKind {
		t.Fatalf("expected WrongNodeKind, got %v", err)
	}
}

func TestLookupMissingFails(t *testing.T) {
	root := sampleTree()
	_, err := root.LookupFile("nope")
	if kind, ok := wiierr.KindOf(err); !ok || kind != wiierr.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCountNodes(t *testing.T) {
	root := sampleTree()
	if got := root.CountNodes(); got != 4 {
		t.Fatalf("CountNodes = %d, want 4", got)
	}
}

func TestBuilderByteSizeInvariantUnderOffsetMutation(t *testing.T) {
	root := sampleTree()
	b := NewBuilder(root)
	before := b.ByteSize()

	if err := b.WalkFiles(func(_ []string, f *File) error {
		f.Offset += 0x100000
		f.Length += 4
		return nil
	}); err != nil {
		t.Fatalf("WalkFiles: %v", err)
	}

	if after := b.ByteSize(); after != before {
		t.Fatalf("ByteSize changed after offset mutation: before %d, after %d", before, after)
	}

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if int(n) != before {
		t.Fatalf("WriteTo wrote %d bytes, want %d", n, before)
	}

	got, err := Read(bytes.NewReader(buf.Bytes()), 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	f, err := got.LookupFile("boot.dol")
	if err != nil {
		t.Fatalf("LookupFile: %v", err)
	}
	if f.Offset != 0x2440+0x100000 {
		t.Fatalf("Offset = %#x, want %#x", f.Offset, 0x2440+0x100000)
	}
}

func TestFlattenDirectoryDataOffsetIsParentIndex(t *testing.T) {
	// root(0) -> data(1) -> sub(2), so sub's parent index (1) is non-zero:
	// a directory dataOffset that is always 0 would pass a root-only check.
	root := &Directory{
		Children: []Node{
			&Directory{
				Name: "data", RawName: []byte("data"),
				Children: []Node{
					&Directory{
						Name: "sub", RawName: []byte("sub"),
						Children: []Node{
							&File{Name: "f.bin", RawName: []byte("f.bin"), Offset: 0x1000, Length: 4},
						},
					},
				},
			},
		},
	}
	nodes, _ := flatten(root)

	if !nodes[0].isDirectory || nodes[0].dataOffset != 0 {
		t.Fatalf("root node = %+v, want directory with dataOffset 0 (no parent)", nodes[0])
	}
	if !nodes[1].isDirectory || nodes[1].dataOffset != 0 {
		t.Fatalf("data dir node = %+v, want directory with dataOffset 0 (parent root)", nodes[1])
	}
	if !nodes[2].isDirectory || nodes[2].dataOffset != 1 {
		t.Fatalf("sub dir node = %+v, want directory with dataOffset 1 (parent data)", nodes[2])
	}
}

func TestDecodeShiftJISPassthroughASCII(t *testing.T) {
	if got := decodeShiftJIS([]byte("boot.dol")); got != "boot.dol" {
		t.Fatalf("decodeShiftJIS = %q, want %q", got, "boot.dol")
	}
}
