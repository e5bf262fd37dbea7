// SPDX-License-Identifier: MPL-2.0

package content

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotDirectory is returned when the tree root is not a directory.
var ErrNotDirectory = errors.New("content root is not a directory")

type (
	// File is a leaf of the content tree.
	File interface {
		// Extension is the file's extension without the leading dot.
		Extension() string
		// FullPath is the location of the file as the host knows it.
		FullPath() string
		// URL is the slash-separated path relative to the tree root.
		URL() string
		// ReadSource returns the file's bytes.
		ReadSource() ([]byte, error)
	}

	// Dir is an interior node of the content tree. Files and Children are
	// returned in a stable order.
	Dir interface {
		Name() string
		Files() []File
		Children() []Dir
	}

	fsFile struct {
		fsys fs.FS
		name string
		url  string
		full string
	}

	loader struct {
		fsys   fs.FS
		root   string
		prefix string
	}

	fsDir struct {
		name     string
		files    []File
		children []Dir
	}
)

// Crawl yields every file under root whose extension matches one of exts.
// A directory's own files come before any of its children, and both follow
// the order the tree reports. Matching is exact and case-sensitive. The
// sequence is lazy and can be ranged over any number of times.
func Crawl(root Dir, exts ...string) iter.Seq[File] {
	return func(yield func(File) bool) {
		if root == nil {
			return
		}
		walk(root, exts, yield)
	}
}

func walk(d Dir, exts []string, yield func(File) bool) bool {
	for _, f := range d.Files() {
		if !matches(f.Extension(), exts) {
			continue
		}
		if !yield(f) {
			return false
		}
	}
	for _, child := range d.Children() {
		if !walk(child, exts, yield) {
			return false
		}
	}
	return true
}

func matches(ext string, exts []string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

// Load builds a read-only tree from fsys rooted at root. Entries whose name
// starts with a dot are skipped. The tree is read eagerly; file contents are
// read on demand.
func Load(fsys fs.FS, root string) (Dir, error) {
	info, err := fs.Stat(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("stat content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	l := loader{fsys: fsys, root: root}
	return l.loadDir(root)
}

// LoadDir builds a tree from a directory on the host filesystem. FullPath of
// each file is the host path, URL stays relative to dir.
func LoadDir(dir string) (Dir, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	l := loader{fsys: os.DirFS(dir), root: ".", prefix: dir}
	return l.loadDir(".")
}

func (l loader) loadDir(dir string) (*fsDir, error) {
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read content directory %s: %w", dir, err)
	}

	d := &fsDir{name: path.Base(dir)}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p := path.Join(dir, e.Name())
		if e.IsDir() {
			child, err := l.loadDir(p)
			if err != nil {
				return nil, err
			}
			d.children = append(d.children, child)
			continue
		}
		d.files = append(d.files, l.file(p))
	}
	return d, nil
}

func (l loader) file(name string) *fsFile {
	url := name
	if l.root != "." {
		url = strings.TrimPrefix(strings.TrimPrefix(name, l.root), "/")
	}
	full := name
	if l.prefix != "" {
		full = filepath.Join(l.prefix, filepath.FromSlash(name))
	}
	return &fsFile{fsys: l.fsys, name: name, url: url, full: full}
}

func (d *fsDir) Name() string    { return d.name }
func (d *fsDir) Files() []File   { return d.files }
func (d *fsDir) Children() []Dir { return d.children }

// Extension returns the text after the last dot of the base name, or "".
func (f *fsFile) Extension() string {
	ext := path.Ext(f.name)
	return strings.TrimPrefix(ext, ".")
}

func (f *fsFile) FullPath() string { return f.full }

func (f *fsFile) URL() string { return f.url }

func (f *fsFile) ReadSource() ([]byte, error) {
	data, err := fs.ReadFile(f.fsys, f.name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.name, err)
	}
	return data, nil
}
