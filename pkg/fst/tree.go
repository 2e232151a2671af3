package fst

import (
	"strings"

	"github.com/go-wii/wiiso/pkg/wiierr"
)

// lookup resolves a slash-separated path rooted at d. It returns
// WrongNodeKind if the resolved node's kind doesn't match the caller's
// expectation (checked by the two typed wrappers below), and NotFound if any
// path segment fails to resolve.
func (d *Directory) lookup(parts []string) (Node, error) {
	if len(parts) == 0 {
		return d, nil
	}
	for _, c := range d.Children {
		if c.baseName() != parts[0] {
			continue
		}
		if len(parts) == 1 {
			return c, nil
		}
		sub, ok := c.(*Directory)
		if !ok {
			return nil, wiierr.New(wiierr.WrongNodeKind, "fst: lookup", "path segment is a file, not a directory")
		}
		return sub.lookup(parts[1:])
	}
	return nil, wiierr.New(wiierr.NotFound, "fst: lookup", "path segment not found: "+parts[0])
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// LookupFile resolves path to a *File, or WrongNodeKind if it names a directory.
func (d *Directory) LookupFile(path string) (*File, error) {
	n, err := d.lookup(splitPath(path))
	if err != nil {
		return nil, err
	}
	f, ok := n.(*File)
	if !ok {
		return nil, wiierr.New(wiierr.WrongNodeKind, "fst: lookup file", path+" is a directory")
	}
	return f, nil
}

// LookupDirectory resolves path to a *Directory, or WrongNodeKind if it names a file.
func (d *Directory) LookupDirectory(path string) (*Directory, error) {
	n, err := d.lookup(splitPath(path))
	if err != nil {
		return nil, err
	}
	sub, ok := n.(*Directory)
	if !ok {
		return nil, wiierr.New(wiierr.WrongNodeKind, "fst: lookup directory", path+" is a file")
	}
	return sub, nil
}

// Walk visits every node in DFS pre-order, calling fn with the node's
// slash-joined path relative to d (the root's own path is "").
func (d *Directory) Walk(fn func(path string, n Node) error) error {
	return walk(d, nil, fn)
}

func walk(n Node, prefix []string, fn func(string, Node) error) error {
	path := strings.Join(prefix, "/")
	if err := fn(path, n); err != nil {
		return err
	}
	if dir, ok := n.(*Directory); ok {
		for _, c := range dir.Children {
			if err := walk(c, append(append([]string{}, prefix...), c.baseName()), fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListFiles returns the slash-joined path of every file under d.
func (d *Directory) ListFiles() []string {
	var out []string
	_ = d.Walk(func(path string, n Node) error {
		if _, ok := n.(*File); ok {
			out = append(out, path)
		}
		return nil
	})
	return out
}
