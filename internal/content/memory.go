// SPDX-License-Identifier: MPL-2.0

package content

import (
	"path"
	"strings"
)

type (
	// MemFile is an in-memory File. The zero value is not useful; use NewFile.
	MemFile struct {
		url    string
		source []byte
	}

	// MemDir is an in-memory Dir that keeps files and children in insertion
	// order, letting hosts present a tree in an order other than by name.
	MemDir struct {
		name     string
		files    []File
		children []Dir
	}
)

// NewFile returns a file whose URL and FullPath are url.
func NewFile(url string, source string) *MemFile {
	return &MemFile{url: url, source: []byte(source)}
}

// NewDir returns an empty directory.
func NewDir(name string) *MemDir {
	return &MemDir{name: name}
}

// AddFile appends files and returns d for chaining.
func (d *MemDir) AddFile(files ...File) *MemDir {
	d.files = append(d.files, files...)
	return d
}

// AddChild appends child directories and returns d for chaining.
func (d *MemDir) AddChild(children ...Dir) *MemDir {
	d.children = append(d.children, children...)
	return d
}

func (d *MemDir) Name() string    { return d.name }
func (d *MemDir) Files() []File   { return d.files }
func (d *MemDir) Children() []Dir { return d.children }

func (f *MemFile) Extension() string {
	return strings.TrimPrefix(path.Ext(f.url), ".")
}

func (f *MemFile) FullPath() string { return f.url }
func (f *MemFile) URL() string      { return f.url }

func (f *MemFile) ReadSource() ([]byte, error) {
	out := make([]byte, len(f.source))
	copy(out, f.source)
	return out, nil
}
