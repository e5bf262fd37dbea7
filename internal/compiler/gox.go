// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/scripthook/scripthook/internal/console"
	"github.com/scripthook/scripthook/internal/library"
	"github.com/scripthook/scripthook/pkg/hook"
)

// goHostPackage is the import path scripts use for the host API. Yaegi keys
// exports as "importPath/pkgName".
const goHostPackage = "scripthook/scripthook"

// yaegiPosRE matches the "file:line:col: message" prefix of yaegi errors.
var yaegiPosRE = regexp.MustCompile(`^[^:]*:(\d+):(\d+): (.*)$`)

type (
	// GoCompiler interprets Go source files. Scripts import "scripthook" and
	// register from init or main:
	//
	//	package main
	//
	//	import "scripthook"
	//
	//	func init() {
	//		scripthook.Hook("flight", "update", "tick", func() { println("frame") })
	//	}
	GoCompiler struct {
		logger *log.Logger
	}

	// goModule collects registrations made while the source is evaluated.
	// Registration errors are kept and fail the compile once evaluation ends.
	goModule struct {
		*module
		linked []library.Library
		stdout *console.Writer
		stderr *console.Writer
		errs   []error
	}
)

// NewGoCompiler creates a Go-script backend.
func NewGoCompiler(logger *log.Logger) *GoCompiler {
	return &GoCompiler{logger: logger}
}

// Name returns the backend name.
func (c *GoCompiler) Name() string { return string(BackendGo) }

// Extensions returns the extensions this backend compiles.
func (c *GoCompiler) Extensions() []string { return []string{"go"} }

// Compile evaluates src in a fresh interpreter.
func (c *GoCompiler) Compile(ctx context.Context, src Source, linked []library.Library) Result {
	m := &goModule{
		module: newModule(src.URL, string(BackendGo)),
		linked: linked,
		stdout: console.NewWriter(c.logger, src.URL),
	}
	m.stderr = m.stdout.WithLevel(log.WarnLevel)

	i := interp.New(interp.Options{Stdout: m.stdout, Stderr: m.stderr})
	if err := i.Use(stdlib.Symbols); err != nil {
		return FailedErr(src.Path, fmt.Errorf("load standard library: %w", err))
	}
	if err := i.Use(m.exports()); err != nil {
		return FailedErr(src.Path, fmt.Errorf("load host API: %w", err))
	}

	_, err := i.EvalWithContext(ctx, string(stripBuildDirectives(src.Data)))
	m.stdout.Flush()
	m.stderr.Flush()
	if err != nil {
		return Failed(yaegiDiagnostics(src.Path, err)...)
	}
	if len(m.errs) > 0 {
		diags := make([]Diagnostic, 0, len(m.errs))
		for _, e := range m.errs {
			diags = append(diags, Diagnostic{Path: src.Path, Severity: SeverityError, Message: e.Error()})
		}
		return Failed(diags...)
	}

	return Loaded(m)
}

// exports builds the per-module host package. Every function closes over m,
// so registrations land in the module being compiled.
func (m *goModule) exports() interp.Exports {
	return interp.Exports{
		goHostPackage: {
			"Hook":       reflect.ValueOf(m.hook),
			"Export":     reflect.ValueOf(m.exportFunc),
			"Call":       reflect.ValueOf(m.call),
			"Requires":   reflect.ValueOf(m.requires),
			"APIVersion": reflect.ValueOf(APIVersion),
		},
	}
}

func (m *goModule) hook(scene, event, name string, fn func()) {
	desc, err := hook.ParseDescriptor(scene, event)
	if err != nil {
		m.errs = append(m.errs, fmt.Errorf("hook %s: %w", name, err))
		return
	}
	if fn == nil {
		m.errs = append(m.errs, fmt.Errorf("hook %s: nil function", name))
		return
	}
	if name == "" {
		name = "hook" + strconv.Itoa(len(m.hooks)+1)
	}
	m.bind(name, desc, func() error {
		defer m.stdout.Flush()
		return callRecover(fn)
	})
}

func (m *goModule) exportFunc(name string, fn func(args ...string) error) {
	if name == "" || fn == nil {
		m.errs = append(m.errs, errors.New("export needs a name and a function"))
		return
	}
	m.export(name, func(_ context.Context, args ...string) (err error) {
		defer m.stdout.Flush()
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%s.%s panicked: %v", m.name, name, p)
			}
		}()
		return fn(args...)
	})
}

func (m *goModule) call(name string, args ...string) error {
	fn, _, err := library.Resolve(m.linked, name)
	if err != nil {
		return err
	}
	return fn(context.Background(), args...)
}

func (m *goModule) requires(constraint string) {
	if err := CheckAPIVersion(constraint); err != nil {
		m.errs = append(m.errs, err)
	}
}

func callRecover(fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	fn()
	return nil
}

// stripBuildDirectives removes leading build constraints, which only the Go
// toolchain understands.
func stripBuildDirectives(src []byte) []byte {
	lines := strings.Split(string(src), "\n")
	i := 0
	for i < len(lines) {
		l := strings.TrimSpace(lines[i])
		if strings.HasPrefix(l, "//go:build") || strings.HasPrefix(l, "// +build") {
			lines[i] = ""
		} else if l != "" {
			break
		}
		i++
	}
	return []byte(strings.Join(lines, "\n"))
}

// yaegiDiagnostics splits a yaegi error into one diagnostic per line.
func yaegiDiagnostics(path string, err error) []Diagnostic {
	var p interp.Panic
	if errors.As(err, &p) {
		return []Diagnostic{{Path: path, Severity: SeverityError, Message: fmt.Sprintf("panic during load: %v", p.Value)}}
	}

	var out []Diagnostic
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		d := Diagnostic{Path: path, Severity: SeverityError, Message: line}
		if match := yaegiPosRE.FindStringSubmatch(line); match != nil {
			d.Line, _ = strconv.Atoi(match[1])
			d.Column, _ = strconv.Atoi(match[2])
			d.Message = match[3]
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		out = append(out, Diagnostic{Path: path, Severity: SeverityError, Message: err.Error()})
	}
	return out
}
