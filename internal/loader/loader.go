// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/scripthook/scripthook/internal/compiler"
	"github.com/scripthook/scripthook/internal/content"
	"github.com/scripthook/scripthook/internal/hooks"
	"github.com/scripthook/scripthook/internal/library"
	"github.com/scripthook/scripthook/pkg/hook"
)

var (
	// ErrAlreadyLoaded is returned by every OnContentReady call after the first.
	ErrAlreadyLoaded = errors.New("content already loaded")
	// ErrNoCompilers is returned by New when no compiler registry is given.
	ErrNoCompilers = errors.New("no compilers configured")
)

type (
	// Observer receives loader events, typically for metrics.
	Observer interface {
		CompileObserved(backend string, elapsed time.Duration, ok bool)
		HookRegistered(d hook.Descriptor)
	}

	// Options configures a Loader.
	Options struct {
		// Compilers selects a backend per file extension. Required.
		Compilers *compiler.Registry
		// HostLibraries are linked into every script ahead of loaded modules.
		HostLibraries []library.Library
		// Registry receives the hooks. A new one is created when nil.
		Registry *hooks.Registry
		// Logger receives progress and diagnostics. Nil discards them.
		Logger *log.Logger
		// Observer is optional.
		Observer Observer
	}

	// Failure is a file that did not compile.
	Failure struct {
		URL         string
		Diagnostics []compiler.Diagnostic
	}

	// Report summarizes one orchestration.
	Report struct {
		// Compiled lists loaded files in compile order.
		Compiled []string
		// Failed lists files that produced diagnostics, in compile order.
		Failed []Failure
		// Registrations lists the hooks registered, in registration order.
		Registrations []hooks.Registration
		// Elapsed is the wall time of the whole run.
		Elapsed time.Duration
	}

	// Loader runs the load pipeline exactly once: crawl the content tree,
	// compile every script against the libraries loaded so far, scan the
	// result for hooks, register them, and seal the registry.
	Loader struct {
		compilers *compiler.Registry
		host      []library.Library
		registry  *hooks.Registry
		logger    *log.Logger
		observer  Observer
		loaded    *library.Set
		ran       atomic.Bool
	}
)

// New validates opts and returns a Loader.
func New(opts Options) (*Loader, error) {
	if opts.Compilers == nil {
		return nil, ErrNoCompilers
	}
	l := &Loader{
		compilers: opts.Compilers,
		host:      opts.HostLibraries,
		registry:  opts.Registry,
		logger:    opts.Logger,
		observer:  opts.Observer,
	}
	if l.registry == nil {
		l.registry = hooks.NewRegistry()
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	return l, nil
}

// Registry returns the registry the loader fills.
func (l *Loader) Registry() *hooks.Registry { return l.registry }

// Libraries returns the host libraries followed by every loaded module, in
// load order. It is empty before OnContentReady.
func (l *Loader) Libraries() []library.Library {
	if l.loaded == nil {
		return nil
	}
	return l.loaded.Libraries()
}

// OnContentReady runs the pipeline over root. It must be called once, after
// the host has finished loading its own libraries and content. Cancellation
// is checked between files; a cancelled run leaves the registry unsealed.
func (l *Loader) OnContentReady(ctx context.Context, root content.Dir) (*Report, error) {
	if !l.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyLoaded
	}

	start := time.Now()
	report := &Report{}

	// Snapshot host libraries; scripts never see libraries the host adds later.
	l.loaded = library.NewSet(l.host...)

	for file := range content.Crawl(root, l.compilers.Extensions()...) {
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(start)
			return report, fmt.Errorf("load canceled before %s: %w", file.URL(), err)
		}
		l.compileFile(ctx, file, report)
	}

	bindings := hooks.Scan(l.loaded.Libraries())
	for _, b := range bindings {
		entry := hooks.Entry{Owner: b.Owner, Name: b.Name, Func: b.Func}
		if err := l.registry.Register(b.Descriptor, entry); err != nil {
			l.logger.Warn("hook not registered", "hook", b.QualifiedName(), "event", b.Descriptor.String(), "err", err)
			continue
		}
		report.Registrations = append(report.Registrations, hooks.Registration{Descriptor: b.Descriptor, Entry: entry})
		l.logger.Infof("registered hook %s for event %s", b.QualifiedName(), b.Descriptor)
		if l.observer != nil {
			l.observer.HookRegistered(b.Descriptor)
		}
	}
	l.registry.Seal()

	report.Elapsed = time.Since(start)
	l.logger.Info("content loaded",
		"compiled", len(report.Compiled),
		"failed", len(report.Failed),
		"hooks", len(report.Registrations),
		"elapsed", report.Elapsed.Round(time.Millisecond))
	return report, nil
}

func (l *Loader) compileFile(ctx context.Context, file content.File, report *Report) {
	ext := file.Extension()
	backend := ext
	if c, ok := l.compilers.Lookup(ext); ok {
		backend = c.Name()
	}

	var res compiler.Result
	began := time.Now()
	data, err := file.ReadSource()
	if err != nil {
		res = compiler.FailedErr(file.FullPath(), err)
	} else {
		src := compiler.Source{URL: file.URL(), Path: file.FullPath(), Data: data}
		res = l.compilers.Compile(ctx, ext, src, l.loaded.Libraries())
	}
	if l.observer != nil {
		l.observer.CompileObserved(backend, time.Since(began), res.OK())
	}

	if !res.OK() {
		l.logger.Errorf("compilation failed on file %s", file.URL())
		for _, d := range res.Diagnostics() {
			l.logger.Error(d.String())
		}
		report.Failed = append(report.Failed, Failure{URL: file.URL(), Diagnostics: res.Diagnostics()})
		return
	}

	l.loaded.Append(res.Module())
	report.Compiled = append(report.Compiled, file.URL())
	l.logger.Infof("compiled %s", file.URL())
}

// OK reports whether every file compiled.
func (r *Report) OK() bool { return len(r.Failed) == 0 }
