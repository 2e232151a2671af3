package fst

import "io"

// Builder resolves the circular dependency at disc-build time: plaintext
// file offsets depend on the FST's size (files live after it), but the flat
// FST's size is fixed once tree shape and names are known, regardless of
// what those offsets end up being.
//
// The string table and node count are computed once at construction and
// never change; only WalkFiles/WriteTo observe the tree's current file
// offsets.
type Builder struct {
	root          *Directory
	nodeCount     int
	stringBytes   []byte
}

// NewBuilder walks root once, fixing the node count and string table.
func NewBuilder(root *Directory) *Builder {
	_, names := flatten(root)
	var strings []byte
	for _, n := range names {
		strings = append(strings, n...)
		strings = append(strings, 0)
	}
	return &Builder{
		root:        root,
		nodeCount:   len(names),
		stringBytes: strings,
	}
}

// ByteSize returns the total serialized length: the flat node table plus
// the string table. It is invariant under later file offset/length mutation.
func (b *Builder) ByteSize() int {
	return nodeSize*b.nodeCount + len(b.stringBytes)
}

// WalkFiles visits every file node in DFS order. fn may mutate the file's
// Offset and Length in place; those mutations are observed by a later WriteTo.
func (b *Builder) WalkFiles(fn func(pathParts []string, file *File) error) error {
	var visit func(n Node, prefix []string) error
	visit = func(n Node, prefix []string) error {
		switch v := n.(type) {
		case *File:
			return fn(prefix, v)
		case *Directory:
			for _, c := range v.Children {
				if err := visit(c, append(append([]string{}, prefix...), c.baseName())); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, c := range b.root.Children {
		if err := visit(c, []string{c.baseName()}); err != nil {
			return err
		}
	}
	return nil
}

// WriteTo re-emits the flat nodes and string table using each file's current
// Offset/Length fields.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	return Write(w, b.root)
}
