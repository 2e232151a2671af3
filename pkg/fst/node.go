// Package fst models the Wii partition filesystem: an in-memory File/Directory
// tree, the on-disc flat 12-byte-node + Shift-JIS string table codec, and a
// build-time serializer that fixes layout before file offsets are known.
package fst

// Node is the sum type over the two kinds of FST entries. Only *File and
// *Directory implement it.
type Node interface {
	node()
	baseName() string
	nameBytes() []byte
}

// File is a leaf node: a byte range within the partition's plaintext.
type File struct {
	Name       string
	RawName    []byte // exact on-disc bytes, preserved for round-trip fidelity
	Offset     int64
	Length     int64
}

func (*File) node() {}
func (f *File) baseName() string  { return f.Name }
func (f *File) nameBytes() []byte { return f.RawName }

// Directory owns its children exclusively, in on-disc order.
type Directory struct {
	Name     string
	RawName  []byte
	Children []Node
}

func (*Directory) node() {}
func (d *Directory) baseName() string  { return d.Name }
func (d *Directory) nameBytes() []byte { return d.RawName }

// CountNodes returns the total number of nodes in the tree rooted at d,
// including d itself.
func (d *Directory) CountNodes() int {
	n := 1
	for _, c := range d.Children {
		if sub, ok := c.(*Directory); ok {
			n += sub.CountNodes()
		} else {
			n++
		}
	}
	return n
}
