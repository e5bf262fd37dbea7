// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/scripthook/scripthook/internal/console"
	"github.com/scripthook/scripthook/internal/library"
	"github.com/scripthook/scripthook/pkg/hook"
)

const (
	// directivePrefix starts every metadata comment, after the '#'.
	directivePrefix = "scripthook:"

	directiveHook     = "hook"
	directiveRequires = "requires"
)

type (
	// ShellCompiler loads shell scripts into an embedded interpreter. The top
	// level of each file runs once at load time; its functions become exports,
	// and functions preceded by a hook directive become hooks:
	//
	//	# scripthook:hook flight update
	//	tick() { echo "frame"; }
	ShellCompiler struct {
		logger  *log.Logger
		variant syntax.LangVariant
	}

	shellModule struct {
		*module
		runner *interp.Runner
		stdout *console.Writer
		stderr *console.Writer
		lang   syntax.LangVariant
	}

	shellDirective struct {
		kind string
		args []string
		line int
		col  int
	}
)

// NewShellCompiler creates a shell backend. dialect is "posix" or "bash";
// anything else selects bash.
func NewShellCompiler(logger *log.Logger, dialect string) *ShellCompiler {
	variant := syntax.LangBash
	if dialect == "posix" {
		variant = syntax.LangPOSIX
	}
	return &ShellCompiler{logger: logger, variant: variant}
}

// Name returns the backend name.
func (c *ShellCompiler) Name() string { return string(BackendShell) }

// Extensions returns the extensions this backend compiles.
func (c *ShellCompiler) Extensions() []string { return []string{"sh"} }

// Compile parses src, validates its directives, and runs its top level.
func (c *ShellCompiler) Compile(ctx context.Context, src Source, linked []library.Library) Result {
	parser := syntax.NewParser(syntax.KeepComments(true), syntax.Variant(c.variant))
	file, err := parser.Parse(bytes.NewReader(src.Data), src.Path)
	if err != nil {
		return Failed(shellParseDiagnostic(src.Path, err))
	}

	m := &shellModule{
		module: newModule(src.URL, string(BackendShell)),
		stdout: console.NewWriter(c.logger, src.URL),
		lang:   c.variant,
	}
	m.stderr = m.stdout.WithLevel(log.WarnLevel)

	var diags []Diagnostic
	var funcs []string
	for _, stmt := range file.Stmts {
		fn, isFunc := stmt.Cmd.(*syntax.FuncDecl)
		if isFunc {
			funcs = append(funcs, fn.Name.Value)
		}
		for _, d := range leadingDirectives(stmt) {
			if diag, ok := m.applyDirective(src.Path, d, fn); !ok {
				diags = append(diags, diag)
			}
		}
	}
	var lastLine uint
	if n := len(file.Stmts); n > 0 {
		lastLine = file.Stmts[n-1].End().Line()
	}
	for _, com := range file.Last {
		if com.Hash.Line() == lastLine {
			continue
		}
		if d, ok := parseDirective(com); ok {
			if diag, ok := m.applyDirective(src.Path, d, nil); !ok {
				diags = append(diags, diag)
			}
		}
	}
	if len(diags) > 0 {
		return Failed(diags...)
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, m.stdout, m.stderr),
		interp.ExecHandlers(linkHandler(linked)),
	)
	if err != nil {
		return FailedErr(src.Path, fmt.Errorf("failed to create interpreter: %w", err))
	}
	m.runner = runner

	err = runner.Run(ctx, file)
	m.stdout.Flush()
	m.stderr.Flush()
	if err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return Failed(Diagnostic{
				Path:     src.Path,
				Severity: SeverityError,
				Message:  fmt.Sprintf("top level exited with status %d", status),
			})
		}
		return FailedErr(src.Path, fmt.Errorf("top level failed: %w", err))
	}

	for _, name := range funcs {
		if _, ok := runner.Funcs[name]; !ok {
			continue
		}
		m.export(name, m.call(name))
	}

	return Loaded(m)
}

// applyDirective records one directive. fn is the function declaration the
// directive precedes, or nil.
func (m *shellModule) applyDirective(path string, d shellDirective, fn *syntax.FuncDecl) (Diagnostic, bool) {
	diag := Diagnostic{Path: path, Line: d.line, Column: d.col, Severity: SeverityError}

	switch d.kind {
	case directiveRequires:
		if len(d.args) == 0 {
			diag.Message = "requires directive needs a version constraint"
			return diag, false
		}
		if err := CheckAPIVersion(strings.Join(d.args, " ")); err != nil {
			diag.Message = err.Error()
			return diag, false
		}
		return Diagnostic{}, true
	case directiveHook:
		if fn == nil {
			diag.Message = "hook directive must precede a function declaration"
			return diag, false
		}
		if len(d.args) != 2 {
			diag.Message = fmt.Sprintf("hook directive on %s needs <scene> <event>, got %d argument(s)", fn.Name.Value, len(d.args))
			return diag, false
		}
		desc, err := hook.ParseDescriptor(d.args[0], d.args[1])
		if err != nil {
			diag.Message = fmt.Sprintf("hook directive on %s: %v", fn.Name.Value, err)
			return diag, false
		}
		name := fn.Name.Value
		call := m.call(name)
		m.bind(name, desc, func() error { return call(context.Background()) })
		return Diagnostic{}, true
	default:
		diag.Message = fmt.Sprintf("unknown directive %q", directivePrefix+d.kind)
		return diag, false
	}
}

// call returns a Func running the shell function name with args.
func (m *shellModule) call(name string) library.Func {
	return func(ctx context.Context, args ...string) error {
		words := make([]string, 0, len(args)+1)
		for _, s := range append([]string{name}, args...) {
			q, err := syntax.Quote(s, m.lang)
			if err != nil {
				return fmt.Errorf("call %s: %w", name, err)
			}
			words = append(words, q)
		}
		stmt, err := syntax.NewParser(syntax.Variant(m.lang)).Parse(strings.NewReader(strings.Join(words, " ")), "")
		if err != nil {
			return fmt.Errorf("call %s: %w", name, err)
		}

		err = m.runner.Run(ctx, stmt)
		m.stdout.Flush()
		m.stderr.Flush()
		if err != nil {
			var status interp.ExitStatus
			if errors.As(err, &status) {
				return fmt.Errorf("%s.%s exited with status %d", m.name, name, status)
			}
			return fmt.Errorf("%s.%s: %w", m.name, name, err)
		}
		return nil
	}
}

// linkHandler resolves commands against linked libraries before falling
// back to the default executable lookup.
func linkHandler(linked []library.Library) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return next(ctx, args)
			}
			fn, _, err := library.Resolve(linked, args[0])
			if err != nil {
				return next(ctx, args)
			}
			if err := fn(ctx, args[1:]...); err != nil {
				hc := interp.HandlerCtx(ctx)
				writeLine(hc.Stderr, fmt.Sprintf("%s: %v", args[0], err))
				return interp.ExitStatus(1)
			}
			return nil
		}
	}
}

func writeLine(w io.Writer, s string) {
	if w == nil {
		return
	}
	_, _ = io.WriteString(w, s+"\n")
}

// leadingDirectives returns the directives in comments placed above stmt.
// Trailing comments on the statement's own line are ignored.
func leadingDirectives(stmt *syntax.Stmt) []shellDirective {
	var out []shellDirective
	for _, com := range stmt.Comments {
		if com.Hash.Line() >= stmt.Pos().Line() {
			continue
		}
		if d, ok := parseDirective(com); ok {
			out = append(out, d)
		}
	}
	return out
}

func parseDirective(com syntax.Comment) (shellDirective, bool) {
	text := strings.TrimSpace(com.Text)
	if !strings.HasPrefix(text, directivePrefix) {
		return shellDirective{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, directivePrefix))
	if len(fields) == 0 {
		return shellDirective{}, false
	}
	return shellDirective{
		kind: fields[0],
		args: fields[1:],
		line: int(com.Hash.Line()),
		col:  int(com.Hash.Col()),
	}, true
}

func shellParseDiagnostic(path string, err error) Diagnostic {
	d := Diagnostic{Path: path, Severity: SeverityError, Message: err.Error()}
	var perr syntax.ParseError
	if errors.As(err, &perr) {
		d.Line = int(perr.Pos.Line())
		d.Column = int(perr.Pos.Col())
		d.Message = perr.Text
	}
	return d
}
