package fst

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/go-wii/wiiso/pkg/wiierr"
)

const nodeSize = 12

type rawNode struct {
	isDirectory bool
	nameOffset  uint32 // u24
	dataOffset  uint32
	length      uint32
}

func readRawNode(r io.Reader) (rawNode, error) {
	buf := make([]byte, nodeSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return rawNode{}, wiierr.Wrap(wiierr.Io, "fst: read node", err)
	}
	return rawNode{
		isDirectory: buf[0] != 0,
		nameOffset:  uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]),
		dataOffset:  binary.BigEndian.Uint32(buf[4:8]),
		length:      binary.BigEndian.Uint32(buf[8:12]),
	}, nil
}

func writeRawNode(w io.Writer, n rawNode) error {
	buf := make([]byte, nodeSize)
	if n.isDirectory {
		buf[0] = 1
	}
	buf[1] = byte(n.nameOffset >> 16)
	buf[2] = byte(n.nameOffset >> 8)
	buf[3] = byte(n.nameOffset)
	binary.BigEndian.PutUint32(buf[4:8], n.dataOffset)
	binary.BigEndian.PutUint32(buf[8:12], n.length)
	if _, err := w.Write(buf); err != nil {
		return wiierr.Wrap(wiierr.Io, "fst: write node", err)
	}
	return nil
}

func readCStringAt(table []byte, offset uint32) []byte {
	if int(offset) >= len(table) {
		return nil
	}
	rest := table[offset:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		return rest[:i]
	}
	return rest
}

// Read parses the flat FST starting at fstOffset within src, reconstructing
// the tree rooted at node 0.
func Read(src io.ReaderAt, fstOffset int64) (*Directory, error) {
	root, err := readRawNode(io.NewSectionReader(src, fstOffset, nodeSize))
	if err != nil {
		return nil, err
	}
	if !root.isDirectory {
		return nil, wiierr.New(wiierr.MalformedInput, "fst: read", "node 0 must be a directory")
	}
	count := int(root.length)
	if count < 1 {
		return nil, wiierr.New(wiierr.MalformedInput, "fst: read", "root length must include the root node")
	}

	nodes := make([]rawNode, count)
	nodes[0] = root
	if count > 1 {
		r := io.NewSectionReader(src, fstOffset+nodeSize, int64(count-1)*nodeSize)
		for i := 1; i < count; i++ {
			n, err := readRawNode(r)
			if err != nil {
				return nil, err
			}
			nodes[i] = n
		}
	}

	stringTableOffset := fstOffset + int64(count)*nodeSize
	// names are read lazily per-node below via a growable buffer read at decode time
	getName := func(off uint32) ([]byte, error) {
		// read up to 256 bytes; grow if we hit a boundary without a NUL
		size := int64(256)
		for {
			buf := make([]byte, size)
			n, err := src.ReadAt(buf, stringTableOffset+int64(off))
			if err != nil && err != io.EOF {
				return nil, wiierr.Wrap(wiierr.Io, "fst: read name", err)
			}
			buf = buf[:n]
			if i := bytes.IndexByte(buf, 0); i >= 0 {
				return buf[:i], nil
			}
			if err == io.EOF {
				return buf, nil
			}
			size *= 2
		}
	}

	idx := 0
	var build func() (Node, error)
	build = func() (Node, error) {
		i := idx
		n := nodes[i]
		idx++

		raw, err := getName(n.nameOffset)
		if err != nil {
			return nil, err
		}
		name := decodeShiftJIS(raw)

		if n.isDirectory {
			dir := &Directory{Name: name, RawName: raw}
			for idx < int(n.length) {
				child, err := build()
				if err != nil {
					return nil, err
				}
				dir.Children = append(dir.Children, child)
			}
			return dir, nil
		}

		return &File{
			Name:    name,
			RawName: raw,
			Offset:  int64(n.dataOffset) << 2,
			Length:  int64(n.length),
		}, nil
	}

	root0, err := build()
	if err != nil {
		return nil, err
	}
	dir, ok := root0.(*Directory)
	if !ok {
		return nil, wiierr.New(wiierr.MalformedInput, "fst: read", "root node did not decode as a directory")
	}
	return dir, nil
}

// flatten walks the tree in DFS pre-order, appending one rawNode plus its
// name bytes per node. Directory length fields are patched in after each
// subtree is fully visited.
func flatten(root *Directory) ([]rawNode, [][]byte) {
	var nodes []rawNode
	var names [][]byte

	var visit func(n Node, parentIndex uint32)
	visit = func(n Node, parentIndex uint32) {
		switch v := n.(type) {
		case *Directory:
			selfIndex := len(nodes)
			nodes = append(nodes, rawNode{isDirectory: true, dataOffset: parentIndex})
			names = append(names, v.nameBytes())
			for _, c := range v.Children {
				visit(c, uint32(selfIndex))
			}
			nodes[selfIndex].length = uint32(len(nodes))
		case *File:
			nodes = append(nodes, rawNode{
				dataOffset: uint32(v.Offset >> 2),
				length:     uint32(v.Length),
			})
			names = append(names, v.nameBytes())
		}
	}
	visit(root, 0)
	nodes[0].length = uint32(len(nodes))
	return nodes, names
}

// Write serialises root using each file's current Offset/Length, the
// "fixed-offset path" described for read-modify-write over an already-placed
// filesystem.
func Write(w io.Writer, root *Directory) (int64, error) {
	nodes, names := flatten(root)

	var stringTable bytes.Buffer
	offsets := make([]uint32, len(nodes))
	for i, n := range names {
		offsets[i] = uint32(stringTable.Len())
		stringTable.Write(n)
		stringTable.WriteByte(0)
	}

	var written int64
	for i, n := range nodes {
		n.nameOffset = offsets[i]
		if err := writeRawNode(w, n); err != nil {
			return written, err
		}
		written += nodeSize
	}
	n64, err := stringTable.WriteTo(w)
	written += n64
	if err != nil {
		return written, wiierr.Wrap(wiierr.Io, "fst: write strings", err)
	}
	return written, nil
}
