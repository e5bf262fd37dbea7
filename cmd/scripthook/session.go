// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/scripthook/scripthook/internal/compiler"
	"github.com/scripthook/scripthook/internal/config"
	"github.com/scripthook/scripthook/internal/content"
	"github.com/scripthook/scripthook/internal/issue"
	"github.com/scripthook/scripthook/internal/library"
	"github.com/scripthook/scripthook/internal/loader"
)

// hostLibraryName is the library scripts see the CLI's own exports under.
const hostLibraryName = "host"

var errNoContentRoot = errors.New("no content directory given")

// session is one loaded content tree.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	loader *loader.Loader
	report *loader.Report
}

// openSession loads config, builds the logger and compilers, and runs the
// loader over dir (or content.root when dir is empty). obs may be nil.
func (a *App) openSession(ctx context.Context, dir string, obs loader.Observer) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, a.stderr, a.verbose)

	if dir == "" {
		dir = cfg.Content.Root.String()
	}
	root, err := openContent(dir)
	if err != nil {
		a.explain(issue.ContentNotFoundId, cfg.UI.ColorScheme)
		return nil, err
	}

	compilers, err := compiler.BuildRegistry(compiler.BuildRegistryOptions{
		Backends:     backendsFromConfig(cfg),
		Logger:       logger,
		ShellDialect: string(cfg.Compilers.Shell.Dialect),
	})
	if err != nil {
		a.explain(issue.UnknownBackendId, cfg.UI.ColorScheme)
		return nil, issue.WrapWithOperation(err, "configure compilers")
	}

	l, err := loader.New(loader.Options{
		Compilers:     compilers,
		HostLibraries: []library.Library{newHostLibrary(logger)},
		Logger:        logger,
		Observer:      obs,
	})
	if err != nil {
		return nil, err
	}

	report, err := l.OnContentReady(ctx, root)
	if err != nil {
		return nil, issue.WrapWithOperation(err, "load content")
	}
	return &session{cfg: cfg, logger: logger, loader: l, report: report}, nil
}

func openContent(dir string) (content.Dir, error) {
	if dir == "" {
		return nil, issue.NewErrorContext().
			WithOperation("load content").
			WithSuggestion("Pass a directory: 'scripthook run ./scripts'").
			WithSuggestion("Or set content.root in your config file").
			Wrap(errNoContentRoot).
			BuildError()
	}
	root, err := content.LoadDir(dir)
	if err != nil {
		ctx := issue.NewErrorContext().WithOperation("load content").WithResource(dir)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, content.ErrNotDirectory) {
			ctx = ctx.WithSuggestion("Check that the directory exists")
		}
		return nil, ctx.Wrap(err).BuildError()
	}
	return root, nil
}

// newLogger builds the CLI logger from log.level and log.format. Verbose
// mode forces debug level.
func newLogger(cfg *config.Config, w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: cfg.Log.Format != config.LogFormatText,
	})

	level, err := log.ParseLevel(string(cfg.Log.Level))
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	switch cfg.Log.Format {
	case config.LogFormatJSON:
		logger.SetFormatter(log.JSONFormatter)
	case config.LogFormatLogfmt:
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}
	return logger
}

// newHostLibrary is linked into every script ahead of loaded modules.
//
//	log <words...>    info line attributed to the calling script
//	warn <words...>   warning line
func newHostLibrary(logger *log.Logger) *library.Static {
	emit := func(level log.Level) library.Func {
		return func(_ context.Context, args ...string) error {
			if len(args) == 0 {
				return fmt.Errorf("%s: nothing to log", hostLibraryName)
			}
			logger.Log(level, strings.Join(args, " "), "source", hostLibraryName)
			return nil
		}
	}
	return library.NewStatic(hostLibraryName).
		Export("log", emit(log.InfoLevel)).
		Export("warn", emit(log.WarnLevel))
}
