// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

//nolint:paralleltest // mutates the process environment
func TestMustSetenv_Restores(t *testing.T) {
	const key = "SCRIPTHOOK_TESTUTIL_SENTINEL"

	restore := MustSetenv(t, key, "one")
	if got := os.Getenv(key); got != "one" {
		t.Fatalf("Getenv = %q, want one", got)
	}
	restore()
	if _, ok := os.LookupEnv(key); ok {
		t.Error("variable still set after restore")
	}

	t.Setenv(key, "orig")
	MustSetenv(t, key, "two")()
	if got := os.Getenv(key); got != "orig" {
		t.Errorf("Getenv = %q, want orig", got)
	}
}

//nolint:paralleltest // changes the working directory
func TestMustChdir(t *testing.T) {
	dir := t.TempDir()
	before, _ := os.Getwd()

	restore := MustChdir(t, dir)
	now, _ := os.Getwd()
	if resolved, _ := filepath.EvalSymlinks(dir); now != dir && now != resolved {
		t.Errorf("Getwd = %q, want %q", now, dir)
	}
	restore()
	if after, _ := os.Getwd(); after != before {
		t.Errorf("Getwd after restore = %q, want %q", after, before)
	}
}

func TestWriteTree(t *testing.T) {
	t.Parallel()

	dir := WriteTree(t, t.TempDir(), map[string]string{
		"a.sh":            "true",
		"mods/deep/b.lua": "return {}",
	})
	data, err := os.ReadFile(filepath.Join(dir, "mods", "deep", "b.lua"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "return {}" {
		t.Errorf("b.lua = %q", data)
	}

	f, err := os.Open(filepath.Join(dir, "a.sh"))
	if err != nil {
		t.Fatal(err)
	}
	MustClose(t, f)
}
