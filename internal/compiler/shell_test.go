// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/scripthook/scripthook/internal/library"
)

func TestShellCompiler_HooksAndExports(t *testing.T) {
	t.Parallel()

	logger, buf := captureLogger()
	c := NewShellCompiler(logger, "bash")

	script := `echo loading

# scripthook:hook flight update
# scripthook:hook flight-and-editor start
tick() {
	echo "tick $1"
}

helper() { :; }

# plain comment
# scripthook:hook every-scene init
boot() { echo booted; }
`
	res := c.Compile(context.Background(), src("mods/a.sh", script), nil)
	if !res.OK() {
		t.Fatalf("Compile() failed: %v", res.Diagnostics())
	}

	m := res.Module()
	if got := m.Symbols(); !slices.Equal(got, []string{"tick", "helper", "boot"}) {
		t.Errorf("Symbols() = %v", got)
	}
	want := []string{"tick@flight.update", "tick@flight-and-editor.start", "boot@every-scene.init"}
	if got := descriptors(m.Hooks()); !slices.Equal(got, want) {
		t.Errorf("Hooks() = %v, want %v", got, want)
	}
	if m.Hooks()[0].Owner != "mods/a.sh" {
		t.Errorf("Owner = %q", m.Hooks()[0].Owner)
	}

	if err := m.Hooks()[2].Func(); err != nil {
		t.Fatalf("boot() error = %v", err)
	}
	fn, _ := m.Lookup("tick")
	if err := fn(context.Background(), "it's 1"); err != nil {
		t.Fatalf("tick() error = %v", err)
	}

	out := buf.String()
	for _, line := range []string{"msg=loading", "msg=booted", `msg="tick it's 1"`} {
		if !strings.Contains(out, line) {
			t.Errorf("log missing %q:\n%s", line, out)
		}
	}
}

func TestShellCompiler_LinksLibraries(t *testing.T) {
	t.Parallel()

	var got []string
	host := library.NewStatic("host").Export("hostlog", func(_ context.Context, args ...string) error {
		got = append(got, strings.Join(args, ","))
		return nil
	})

	c := NewShellCompiler(nil, "")
	first := c.Compile(context.Background(), src("a.sh", `greet() { hostlog "hello" "$1"; }`), []library.Library{host})
	if !first.OK() {
		t.Fatalf("first compile failed: %v", first.Diagnostics())
	}

	second := c.Compile(context.Background(), src("b.sh", `greet world`), []library.Library{host, first.Module()})
	if !second.OK() {
		t.Fatalf("second compile failed: %v", second.Diagnostics())
	}
	if !slices.Equal(got, []string{"hello,world"}) {
		t.Errorf("host calls = %v", got)
	}
}

func TestShellCompiler_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		script   string
		wantLine int
		wantMsg  string
	}{
		{"syntax error", "echo ok\nif then fi\n", 2, ""},
		{"unknown scene", "# scripthook:hook orbit update\nf() { :; }\n", 1, "invalid scene category"},
		{"unknown event", "# scripthook:hook flight awake\nf() { :; }\n", 1, "invalid lifecycle event"},
		{"missing args", "# scripthook:hook flight\nf() { :; }\n", 1, "needs <scene> <event>"},
		{"not on a function", "# scripthook:hook flight update\necho hi\n", 1, "must precede a function"},
		{"dangling at end", "f() { :; }\n# scripthook:hook flight update\n", 2, "must precede a function"},
		{"unknown directive", "# scripthook:frobnicate\nf() { :; }\n", 1, "unknown directive"},
		{"requires too new", "# scripthook:requires >= 9.0.0\nf() { :; }\n", 1, "requires host API"},
		{"top level fails", "echo start\nexit 3\n", 0, "status 3"},
		{"missing command", "definitely-not-a-command-xyz\n", 0, ""},
	}

	c := NewShellCompiler(nil, "bash")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := c.Compile(context.Background(), src("bad.sh", tt.script), nil)
			if res.OK() {
				t.Fatal("Compile() succeeded, want failure")
			}
			d := res.Diagnostics()[0]
			if d.Path != "bad.sh" || d.Severity != SeverityError {
				t.Errorf("diagnostic = %+v", d)
			}
			if tt.wantLine > 0 && d.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d (%s)", d.Line, tt.wantLine, d)
			}
			if tt.wantMsg != "" && !strings.Contains(d.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to contain %q", d.Message, tt.wantMsg)
			}
		})
	}
}

func TestShellCompiler_TrailingCommentIsNotMetadata(t *testing.T) {
	t.Parallel()

	res := NewShellCompiler(nil, "").Compile(context.Background(),
		src("t.sh", "f() { :; } # scripthook:hook flight update\n"), nil)
	if !res.OK() {
		t.Fatalf("Compile() failed: %v", res.Diagnostics())
	}
	if n := len(res.Module().Hooks()); n != 0 {
		t.Errorf("trailing comment produced %d hooks", n)
	}
}

func TestShellCompiler_HookFailureReported(t *testing.T) {
	t.Parallel()

	res := NewShellCompiler(nil, "").Compile(context.Background(),
		src("f.sh", "# scripthook:hook flight update\nfail() { return 4; }\n"), nil)
	if !res.OK() {
		t.Fatalf("Compile() failed: %v", res.Diagnostics())
	}
	err := res.Module().Hooks()[0].Func()
	if err == nil || !strings.Contains(err.Error(), "status 4") {
		t.Errorf("hook error = %v, want exit status 4", err)
	}
}
