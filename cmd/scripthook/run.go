// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/scripthook/scripthook/internal/hooks"
	"github.com/scripthook/scripthook/internal/issue"
	"github.com/scripthook/scripthook/internal/loader"
	"github.com/scripthook/scripthook/internal/metrics"
	"github.com/scripthook/scripthook/pkg/hook"
)

type (
	runOptions struct {
		scenes      []string
		hostScene   string
		frames      int
		interval    time.Duration
		metricsAddr string
	}

	// frameLoop drives one dispatcher per active scene category the way an
	// embedding host would forward its lifecycle callbacks.
	frameLoop struct {
		dispatchers []*hooks.Dispatcher
		policy      hooks.FaultPolicy
		faults      []error
	}
)

func newRunCommand(app *App) *cobra.Command {
	opts := runOptions{}
	runCmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Load scripts and drive a simulated frame loop",
		Long: `Load every script under dir, then create a dispatcher for each --scene
and forward init, start, one update/fixed-update/late-update/render-overlay
round per frame, and teardown.

--host-scene is the host context reported to dispatchers; "loading" and
"pre-simulation" make every-scene dispatchers retire without firing.
--frames 0 runs until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), firstArg(args), opts)
		},
	}

	runCmd.Flags().StringSliceVar(&opts.scenes, "scene", []string{string(hook.SceneEveryScene), string(hook.SceneFlight)}, "scene categories to activate")
	runCmd.Flags().StringVar(&opts.hostScene, "host-scene", string(hook.SceneFlight), "host context reported to dispatchers")
	runCmd.Flags().IntVar(&opts.frames, "frames", 1, "number of frames to simulate (0 runs until interrupted)")
	runCmd.Flags().DurationVar(&opts.interval, "interval", 0, "pause between frames")
	runCmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides metrics.addr)")
	return runCmd
}

func (a *App) run(ctx context.Context, dir string, opts runOptions) error {
	scenes, err := parseScenes(opts.scenes)
	if err != nil {
		return err
	}
	if opts.frames < 0 {
		return fmt.Errorf("--frames must not be negative, got %d", opts.frames)
	}

	m := metrics.New()
	s, err := a.openSession(ctx, dir, loader.Observer(m))
	if err != nil {
		return err
	}

	addr := opts.metricsAddr
	if addr == "" {
		addr = s.cfg.Metrics.Addr
	}

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stop := context.WithCancel(gctx)
	if addr != "" {
		g.Go(func() error {
			if err := m.Serve(loopCtx, addr, s.logger); err != nil {
				a.explain(issue.MetricsUnavailableId, s.cfg.UI.ColorScheme)
				return issue.NewErrorContext().
					WithOperation("serve metrics").
					WithResource(addr).
					WithSuggestion("Choose a free address with --metrics-addr").
					Wrap(err).
					BuildError()
			}
			return nil
		})
	}

	host := hook.HostScene(opts.hostScene)
	fl := &frameLoop{policy: hooks.FaultPolicy(s.cfg.Dispatch.FaultPolicy)}
	for _, scene := range scenes {
		fl.dispatchers = append(fl.dispatchers, hooks.NewDispatcher(scene, s.loader.Registry(),
			hooks.WithHostScene(func() hook.HostScene { return host }),
			hooks.WithFaultPolicy(fl.policy),
			hooks.WithLogger(s.logger),
			hooks.WithObserver(m),
		))
	}

	g.Go(func() error {
		defer stop()
		return fl.run(loopCtx, opts.frames, opts.interval)
	})

	err = g.Wait()
	s.logger.Info("simulation finished", "frames", opts.frames, "faults", len(fl.faults))
	if err != nil {
		if errors.Is(err, hooks.ErrHookFault) {
			a.explain(issue.HookFaultId, s.cfg.UI.ColorScheme)
			return &ExitError{Code: exitScriptFailure, Err: err}
		}
		return err
	}
	return nil
}

// run fires init and start, then frames rounds, then teardown in reverse
// creation order. Under fail-fast the first fault skips straight to
// teardown; otherwise faults are collected and returned together. Faults
// raised by teardown hooks are part of the result.
func (fl *frameLoop) run(ctx context.Context, frames int, interval time.Duration) (err error) {
	defer func() {
		fl.teardown()
		err = errors.Join(fl.faults...)
	}()

	if err := fl.each(func(d *hooks.Dispatcher) error { return d.Init() }); err != nil {
		return err
	}
	if err := fl.each(func(d *hooks.Dispatcher) error { return d.Start() }); err != nil {
		return err
	}

	for frame := 0; frames == 0 || frame < frames; frame++ {
		if ctx.Err() != nil {
			break
		}
		for _, step := range []func(*hooks.Dispatcher) error{
			(*hooks.Dispatcher).Update,
			(*hooks.Dispatcher).FixedUpdate,
			(*hooks.Dispatcher).LateUpdate,
			(*hooks.Dispatcher).RenderOverlay,
		} {
			if err := fl.each(step); err != nil {
				return err
			}
		}
		if interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
	}
	return nil
}

// each applies step to every dispatcher. It returns an error only when the
// policy is fail-fast.
func (fl *frameLoop) each(step func(*hooks.Dispatcher) error) error {
	for _, d := range fl.dispatchers {
		if err := step(d); err != nil {
			fl.faults = append(fl.faults, err)
			if fl.policy == hooks.FaultFailFast {
				return err
			}
		}
	}
	return nil
}

func (fl *frameLoop) teardown() {
	for _, d := range slices.Backward(fl.dispatchers) {
		if err := d.Teardown(); err != nil {
			fl.faults = append(fl.faults, err)
		}
	}
}

func parseScenes(names []string) ([]hook.SceneCategory, error) {
	scenes := make([]hook.SceneCategory, 0, len(names))
	for _, n := range names {
		s, err := hook.ParseSceneCategory(n)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("parse --scene").
				WithSuggestion("Use a scene category such as flight, main-menu or every-scene").
				Wrap(err).
				BuildError()
		}
		if !slices.Contains(scenes, s) {
			scenes = append(scenes, s)
		}
	}
	return scenes, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
