package wiso

import (
	"github.com/go-wii/wiiso/pkg/fst"
)

// FileInfo describes one file entry returned by Partition.Files, carrying
// its resolved path alongside the raw node fields a caller might want for
// listing (size) without re-walking the tree.
type FileInfo struct {
	Path   string
	Length int64
	Offset int64
}

// Files returns every file in the partition's file system as a flat,
// path-sorted-by-walk-order list, convenient for ls/extract-all style tools.
func (p *Partition) Files() ([]FileInfo, error) {
	root, err := p.FST()
	if err != nil {
		return nil, err
	}

	var out []FileInfo
	err = root.Walk(func(path string, n fst.Node) error {
		f, ok := n.(*fst.File)
		if !ok {
			return nil
		}
		out = append(out, FileInfo{Path: path, Length: f.Length, Offset: f.Offset})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
