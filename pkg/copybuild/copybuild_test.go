package copybuild

import (
	"bytes"
	"testing"

	"github.com/go-wii/wiiso/pkg/fst"
)

func sampleSource() (*fst.Directory, []byte) {
	src := []byte("hello world, this is source partition content")
	root := &fst.Directory{
		Children: []fst.Node{
			&fst.File{Name: "a.txt", RawName: []byte("a.txt"), Offset: 0, Length: 5},
			&fst.Directory{
				Name: "sub", RawName: []byte("sub"),
				Children: []fst.Node{
					&fst.File{Name: "b.txt", RawName: []byte("b.txt"), Offset: 13, Length: 2},
				},
			},
		},
	}
	return root, src
}

func TestWriteFileDataUsesSnapshotNotMutatedOffsets(t *testing.T) {
	root, src := sampleSource()
	p, err := New(root, bytes.NewReader(src))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Reassign offsets (as a real build would, for the new layout) before
	// writing; WriteFileData must still read from the ORIGINAL source offsets.
	p.AssignFileOffsets(1000)

	var out bytes.Buffer
	if err := p.WriteFileData(&out, nil); err != nil {
		t.Fatalf("WriteFileData: %v", err)
	}

	// a.txt (5 bytes) and b.txt (2 bytes) are each zero-padded to 4 bytes.
	want := "hello" + "\x00\x00\x00" + "th" + "\x00\x00"
	if out.String() != want {
		t.Fatalf("WriteFileData = %q, want %q", out.String(), want)
	}
}

func TestAssignFileOffsetsAligns(t *testing.T) {
	root, src := sampleSource()
	p, err := New(root, bytes.NewReader(src))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.AssignFileOffsets(0)

	af, err := root.LookupFile("a.txt")
	if err != nil {
		t.Fatalf("LookupFile a.txt: %v", err)
	}
	bf, err := root.LookupFile("sub/b.txt")
	if err != nil {
		t.Fatalf("LookupFile sub/b.txt: %v", err)
	}

	if af.Offset != 0 {
		t.Fatalf("a.txt offset = %d, want 0", af.Offset)
	}
	// a.txt ends at 5, aligned up to 8.
	if bf.Offset != 8 {
		t.Fatalf("sub/b.txt offset = %d, want 8", bf.Offset)
	}
}

func TestWriteFileDataProgressCallback(t *testing.T) {
	root, src := sampleSource()
	p, err := New(root, bytes.NewReader(src))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var calls []int
	if err := p.WriteFileData(&bytes.Buffer{}, func(done, total int) {
		calls = append(calls, done)
		if total != 2 {
			t.Fatalf("total = %d, want 2", total)
		}
	}); err != nil {
		t.Fatalf("WriteFileData: %v", err)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Fatalf("progress calls = %v, want [1 2]", calls)
	}
}
