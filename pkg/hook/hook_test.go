// SPDX-License-Identifier: MPL-2.0

package hook

import (
	"errors"
	"testing"
)

func TestSceneCategory_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scene   SceneCategory
		want    bool
		wantErr bool
	}{
		{SceneFlight, true, false},
		{SceneEveryScene, true, false},
		{SceneFlightEditorAndSpaceCentre, true, false},
		{SceneTrackingStation, true, false},
		{"", false, true},
		{"Flight", false, true},
		{"orbit", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.scene), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.scene.IsValid()
			if isValid != tt.want {
				t.Errorf("SceneCategory(%q).IsValid() = %v, want %v", tt.scene, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("SceneCategory(%q).IsValid() returned no errors, want error", tt.scene)
				}
				if !errors.Is(errs[0], ErrInvalidSceneCategory) {
					t.Errorf("error should wrap ErrInvalidSceneCategory, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("SceneCategory(%q).IsValid() returned unexpected errors: %v", tt.scene, errs)
			}
		})
	}
}

func TestLifecycleEvent_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event   LifecycleEvent
		want    bool
		wantErr bool
	}{
		{EventInit, true, false},
		{EventFixedUpdate, true, false},
		{EventRenderOverlay, true, false},
		{EventTeardown, true, false},
		{"", false, true},
		{"awake", false, true},
		{"UPDATE", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.event.IsValid()
			if isValid != tt.want {
				t.Errorf("LifecycleEvent(%q).IsValid() = %v, want %v", tt.event, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("LifecycleEvent(%q).IsValid() returned no errors, want error", tt.event)
				}
				if !errors.Is(errs[0], ErrInvalidLifecycleEvent) {
					t.Errorf("error should wrap ErrInvalidLifecycleEvent, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("LifecycleEvent(%q).IsValid() returned unexpected errors: %v", tt.event, errs)
			}
		})
	}
}

func TestScenesAndEventsAreClosedSets(t *testing.T) {
	t.Parallel()

	if got := len(Scenes()); got != 14 {
		t.Errorf("len(Scenes()) = %d, want 14", got)
	}
	if got := len(Events()); got != 7 {
		t.Errorf("len(Events()) = %d, want 7", got)
	}
	if Events()[0] != EventInit || Events()[6] != EventTeardown {
		t.Errorf("Events() not in lifecycle order: %v", Events())
	}

	// Callers must not be able to mutate the package-level sets.
	s := Scenes()
	s[0] = "mutated"
	if Scenes()[0] != SceneFlightEditorAndSpaceCentre {
		t.Error("Scenes() returned a shared slice")
	}
}

func TestParseDescriptor(t *testing.T) {
	t.Parallel()

	d, err := ParseDescriptor(" Flight ", "update")
	if err != nil {
		t.Fatalf("ParseDescriptor() error = %v", err)
	}
	if d.Scene != SceneFlight || d.Event != EventUpdate {
		t.Errorf("ParseDescriptor() = %+v", d)
	}
	if d.String() != "flight.update" {
		t.Errorf("String() = %q, want flight.update", d.String())
	}

	if _, err := ParseDescriptor("orbit", "update"); !errors.Is(err, ErrInvalidSceneCategory) {
		t.Errorf("bad scene: error = %v, want ErrInvalidSceneCategory", err)
	}
	if _, err := ParseDescriptor("flight", "awake"); !errors.Is(err, ErrInvalidLifecycleEvent) {
		t.Errorf("bad event: error = %v, want ErrInvalidLifecycleEvent", err)
	}
}

func TestHostScene_Bootstrapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scene HostScene
		want  bool
	}{
		{HostSceneLoading, true},
		{HostSceneSplash, true},
		{"main-menu", false},
		{"flight", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.scene.Bootstrapping(); got != tt.want {
			t.Errorf("HostScene(%q).Bootstrapping() = %v, want %v", tt.scene, got, tt.want)
		}
	}
}

func TestBinding_QualifiedName(t *testing.T) {
	t.Parallel()

	b := Binding{Owner: "mods/a.lua", Name: "tick"}
	if got := b.QualifiedName(); got != "mods/a.lua.tick" {
		t.Errorf("QualifiedName() = %q", got)
	}
	b.Owner = ""
	if got := b.QualifiedName(); got != "tick" {
		t.Errorf("QualifiedName() without owner = %q", got)
	}
}
