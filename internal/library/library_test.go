// SPDX-License-Identifier: MPL-2.0

package library

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/scripthook/scripthook/pkg/hook"
)

func tag(out *[]string, v string) Func {
	return func(context.Context, ...string) error {
		*out = append(*out, v)
		return nil
	}
}

func TestSet_ResolveFirstWins(t *testing.T) {
	t.Parallel()

	var calls []string
	host := NewStatic("host").Export("log", tag(&calls, "host"))
	mod := NewStatic("mod").Export("log", tag(&calls, "mod")).Export("greet", tag(&calls, "greet"))

	set := NewSet(host)
	set.Append(mod)

	fn, lib, err := set.Resolve("log")
	if err != nil {
		t.Fatalf("Resolve(log) error = %v", err)
	}
	if lib.Name() != "host" {
		t.Errorf("Resolve(log) library = %q, want host", lib.Name())
	}
	if err := fn(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, lib, err := set.Resolve("greet"); err != nil || lib.Name() != "mod" {
		t.Errorf("Resolve(greet) = %v, %v", lib, err)
	}

	_, _, err = set.Resolve("missing")
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("Resolve(missing) error = %v, want ErrSymbolNotFound", err)
	}

	if !slices.Equal(calls, []string{"host"}) {
		t.Errorf("calls = %v", calls)
	}
}

func TestSet_LibrariesIsSnapshot(t *testing.T) {
	t.Parallel()

	set := NewSet(NewStatic("a"))
	snap := set.Libraries()
	set.Append(NewStatic("b"))

	if len(snap) != 1 {
		t.Errorf("snapshot grew to %d entries", len(snap))
	}
	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2", set.Len())
	}
}

func TestStatic_ExportOrderAndHooks(t *testing.T) {
	t.Parallel()

	var calls []string
	s := NewStatic("host").
		Export("b", tag(&calls, "b1")).
		Export("a", tag(&calls, "a")).
		Export("b", tag(&calls, "b2"))

	if got := s.Symbols(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("Symbols() = %v, want [b a]", got)
	}
	fn, _ := s.Lookup("b")
	_ = fn(context.Background())
	if !slices.Equal(calls, []string{"b2"}) {
		t.Errorf("re-export did not replace function: %v", calls)
	}

	d := hook.Descriptor{Scene: hook.SceneFlight, Event: hook.EventUpdate}
	s.Hook("tick", d, func() error { return nil })
	hooks := s.Hooks()
	if len(hooks) != 1 || hooks[0].QualifiedName() != "host.tick" || hooks[0].Descriptor != d {
		t.Errorf("Hooks() = %+v", hooks)
	}
}

func TestVisible(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, ...string) error { return nil }
	libs := []Library{
		NewStatic("a").Export("x", noop).Export("y", noop),
		NewStatic("b").Export("y", noop).Export("z", noop),
	}
	if got := Visible(libs); !slices.Equal(got, []string{"x", "y", "z"}) {
		t.Errorf("Visible() = %v", got)
	}
}
