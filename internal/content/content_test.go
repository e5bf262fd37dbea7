// SPDX-License-Identifier: MPL-2.0

package content

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
)

func urls(root Dir, exts ...string) []string {
	var out []string
	for f := range Crawl(root, exts...) {
		out = append(out, f.URL())
	}
	return out
}

func TestCrawl_FilesBeforeChildren(t *testing.T) {
	t.Parallel()

	// A{f1.sh, B{f2.sh}, f3.sh}: A's own files are visited before B's.
	root := NewDir("A").
		AddFile(NewFile("A/f1.sh", ""), NewFile("A/f3.sh", "")).
		AddChild(NewDir("B").AddFile(NewFile("A/B/f2.sh", "")))

	got := urls(root, "sh")
	want := []string{"A/f1.sh", "A/f3.sh", "A/B/f2.sh"}
	if !slices.Equal(got, want) {
		t.Errorf("Crawl() = %v, want %v", got, want)
	}
}

func TestCrawl_ExtensionFilter(t *testing.T) {
	t.Parallel()

	root := NewDir("root").AddFile(
		NewFile("a.lua", ""),
		NewFile("b.LUA", ""),
		NewFile("c.txt", ""),
		NewFile("d", ""),
		NewFile("e.sh", ""),
	)

	tests := []struct {
		name string
		exts []string
		want []string
	}{
		{"single", []string{"lua"}, []string{"a.lua"}},
		{"case sensitive", []string{"LUA"}, []string{"b.LUA"}},
		{"multiple", []string{"sh", "lua"}, []string{"a.lua", "e.sh"}},
		{"none", nil, nil},
		{"no match", []string{"go"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := urls(root, tt.exts...); !slices.Equal(got, tt.want) {
				t.Errorf("Crawl(%v) = %v, want %v", tt.exts, got, tt.want)
			}
		})
	}
}

func TestCrawl_EmptyAndNil(t *testing.T) {
	t.Parallel()

	if got := urls(NewDir("empty"), "sh"); len(got) != 0 {
		t.Errorf("Crawl(empty) = %v, want nothing", got)
	}
	if got := urls(nil, "sh"); len(got) != 0 {
		t.Errorf("Crawl(nil) = %v, want nothing", got)
	}
}

func TestCrawl_Restartable(t *testing.T) {
	t.Parallel()

	root := NewDir("r").AddFile(NewFile("x.sh", ""), NewFile("y.sh", ""))
	seq := Crawl(root, "sh")

	for range seq {
		break
	}
	var n int
	for range seq {
		n++
	}
	if n != 2 {
		t.Errorf("second iteration yielded %d files, want 2", n)
	}
}

func TestLoad_MapFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"mods/z.lua":        {Data: []byte("return {}")},
		"mods/a.sh":         {Data: []byte("echo hi")},
		"mods/sub/b.sh":     {Data: []byte("")},
		"mods/.hidden/c.sh": {Data: []byte("")},
		"mods/.d.sh":        {Data: []byte("")},
	}

	root, err := Load(fsys, "mods")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := urls(root, "sh", "lua")
	want := []string{"a.sh", "z.lua", "sub/b.sh"}
	if !slices.Equal(got, want) {
		t.Errorf("Crawl(Load()) = %v, want %v", got, want)
	}

	for f := range Crawl(root, "sh") {
		if f.URL() != "a.sh" {
			continue
		}
		src, err := f.ReadSource()
		if err != nil {
			t.Fatalf("ReadSource() error = %v", err)
		}
		if string(src) != "echo hi" {
			t.Errorf("ReadSource() = %q", src)
		}
		if f.FullPath() != "mods/a.sh" {
			t.Errorf("FullPath() = %q, want mods/a.sh", f.FullPath())
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"file.sh": {Data: []byte("")}}

	if _, err := Load(fsys, "missing"); err == nil {
		t.Error("Load(missing) returned nil error")
	}
	if _, err := Load(fsys, "file.sh"); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("Load(file) error = %v, want ErrNotDirectory", err)
	}
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "m.sh"), []byte("true"), 0o644); err != nil {
		t.Fatal(err)
	}

	root, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	var found bool
	for f := range Crawl(root, "sh") {
		found = true
		if f.URL() != "nested/m.sh" {
			t.Errorf("URL() = %q, want nested/m.sh", f.URL())
		}
		if want := filepath.Join(dir, "nested", "m.sh"); f.FullPath() != want {
			t.Errorf("FullPath() = %q, want %q", f.FullPath(), want)
		}
	}
	if !found {
		t.Error("Crawl(LoadDir()) found no files")
	}
}
