// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/scripthook/scripthook/internal/compiler"
	"github.com/scripthook/scripthook/internal/config"
	"github.com/scripthook/scripthook/internal/content"
	"github.com/scripthook/scripthook/internal/hooks"
	"github.com/scripthook/scripthook/internal/library"
	"github.com/scripthook/scripthook/internal/loader"
	"github.com/scripthook/scripthook/pkg/hook"
)

const (
	sampleConfig = `
content: root: "./scripts"
compilers: {
	enabled: ["lua", "shell", "go"]
	shell: dialect: "posix"
}
dispatch: fault_policy: "fail-fast"
log: {
	level:  "warn"
	format: "logfmt"
}
`

	sampleShell = "# scripthook:hook flight update\ntick() { note \"$1\"; }\n"
	sampleLua   = "scripthook.hook('flight', 'update', function() note('lua') end, 'tick')\n"
	sampleGo    = "package main\nimport \"scripthook\"\nfunc init() { scripthook.Hook(\"flight\", \"update\", \"tick\", func() { _ = scripthook.Call(\"note\", \"go\") }) }\n"
)

func hostLibrary() library.Library {
	return library.NewStatic("host").
		Export("note", func(context.Context, ...string) error { return nil })
}

// sampleTree builds n directories holding one script of each backend.
func sampleTree(n int) content.Dir {
	root := content.NewDir("root")
	for i := range n {
		dir := content.NewDir(fmt.Sprintf("mod%02d", i))
		dir.AddFile(
			content.NewFile(fmt.Sprintf("mod%02d/a.sh", i), sampleShell),
			content.NewFile(fmt.Sprintf("mod%02d/b.lua", i), sampleLua),
			content.NewFile(fmt.Sprintf("mod%02d/c.go", i), sampleGo),
		)
		root.AddChild(dir)
	}
	return root
}

func loadTree(b *testing.B, root content.Dir, backends ...compiler.BackendName) *loader.Report {
	b.Helper()
	compilers, err := compiler.BuildRegistry(compiler.BuildRegistryOptions{Backends: backends})
	if err != nil {
		b.Fatalf("BuildRegistry failed: %v", err)
	}
	l, err := loader.New(loader.Options{Compilers: compilers, HostLibraries: []library.Library{hostLibrary()}})
	if err != nil {
		b.Fatalf("loader.New failed: %v", err)
	}
	report, err := l.OnContentReady(context.Background(), root)
	if err != nil {
		b.Fatalf("OnContentReady failed: %v", err)
	}
	if !report.OK() {
		b.Fatalf("compilation failed: %+v", report.Failed)
	}
	return report
}

func BenchmarkConfigLoad(b *testing.B) {
	path := filepath.Join(b.TempDir(), "config.cue")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		b.Fatal(err)
	}
	provider := config.NewProvider()
	ctx := context.Background()

	b.ResetTimer()
	for b.Loop() {
		if _, err := provider.Load(ctx, config.LoadOptions{ConfigFilePath: path}); err != nil {
			b.Fatalf("Load failed: %v", err)
		}
	}
}

func BenchmarkCrawl(b *testing.B) {
	root := sampleTree(50)

	b.ResetTimer()
	for b.Loop() {
		n := 0
		for range content.Crawl(root, "sh", "lua", "go") {
			n++
		}
		if n != 150 {
			b.Fatalf("crawled %d files, want 150", n)
		}
	}
}

func BenchmarkLoadShell(b *testing.B) {
	root := sampleTree(5)
	b.ResetTimer()
	for b.Loop() {
		loadTree(b, root, compiler.BackendShell)
	}
}

func BenchmarkLoadLua(b *testing.B) {
	root := sampleTree(5)
	b.ResetTimer()
	for b.Loop() {
		loadTree(b, root, compiler.BackendLua)
	}
}

func BenchmarkLoadGo(b *testing.B) {
	root := sampleTree(2)
	b.ResetTimer()
	for b.Loop() {
		loadTree(b, root, compiler.BackendGo)
	}
}

func BenchmarkDispatchFrame(b *testing.B) {
	for _, backend := range compiler.Backends() {
		b.Run(string(backend), func(b *testing.B) {
			compilers, err := compiler.BuildRegistry(compiler.BuildRegistryOptions{Backends: []compiler.BackendName{backend}})
			if err != nil {
				b.Fatal(err)
			}
			l, err := loader.New(loader.Options{Compilers: compilers, HostLibraries: []library.Library{hostLibrary()}})
			if err != nil {
				b.Fatal(err)
			}
			if _, err := l.OnContentReady(context.Background(), sampleTree(3)); err != nil {
				b.Fatal(err)
			}
			d := hooks.NewDispatcher(hook.SceneFlight, l.Registry(), hooks.WithFaultPolicy(hooks.FaultFailFast))
			if err := d.Init(); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for b.Loop() {
				if err := d.Update(); err != nil {
					b.Fatalf("Update failed: %v", err)
				}
			}
		})
	}
}
