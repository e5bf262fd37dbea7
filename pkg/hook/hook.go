// SPDX-License-Identifier: MPL-2.0

package hook

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SceneFlightEditorAndSpaceCentre covers flight, both editors and the space centre.
	SceneFlightEditorAndSpaceCentre SceneCategory = "flight-editor-and-space-centre"
	// SceneAllGameScenes covers every scene in which a game is loaded.
	SceneAllGameScenes SceneCategory = "all-game-scenes"
	// SceneFlightAndEditor covers flight and both editors.
	SceneFlightAndEditor SceneCategory = "flight-and-editor"
	// SceneFlightAndSpaceCentre covers flight and the space centre.
	SceneFlightAndSpaceCentre SceneCategory = "flight-and-space-centre"
	// SceneEveryScene covers every host scene, menus included, but never a
	// bootstrap context.
	SceneEveryScene SceneCategory = "every-scene"
	// SceneMainMenu is the main menu.
	SceneMainMenu SceneCategory = "main-menu"
	// SceneSettings is the settings screen.
	SceneSettings SceneCategory = "settings"
	// SceneCredits is the credits screen.
	SceneCredits SceneCategory = "credits"
	// SceneSpaceCentre is the space centre overview.
	SceneSpaceCentre SceneCategory = "space-centre"
	// SceneEditor covers either editor.
	SceneEditor SceneCategory = "editor"
	// SceneEditorSPH is the horizontal assembly editor.
	SceneEditorSPH SceneCategory = "editor-sph"
	// SceneEditorVAB is the vertical assembly editor.
	SceneEditorVAB SceneCategory = "editor-vab"
	// SceneFlight is the flight scene.
	SceneFlight SceneCategory = "flight"
	// SceneTrackingStation is the tracking station.
	SceneTrackingStation SceneCategory = "tracking-station"

	// EventInit fires once when a dispatcher activates.
	EventInit LifecycleEvent = "init"
	// EventStart fires once after init, before the first update.
	EventStart LifecycleEvent = "start"
	// EventUpdate fires once per frame.
	EventUpdate LifecycleEvent = "update"
	// EventFixedUpdate fires once per fixed simulation step.
	EventFixedUpdate LifecycleEvent = "fixed-update"
	// EventLateUpdate fires once per frame after every update.
	EventLateUpdate LifecycleEvent = "late-update"
	// EventRenderOverlay fires once per overlay render pass.
	EventRenderOverlay LifecycleEvent = "render-overlay"
	// EventTeardown fires once when a dispatcher is destroyed.
	EventTeardown LifecycleEvent = "teardown"

	// HostSceneLoading is the bootstrap context shown while the host starts.
	HostSceneLoading HostScene = "loading"
	// HostSceneSplash is the pre-simulation splash context.
	HostSceneSplash HostScene = "pre-simulation"
)

var (
	// ErrInvalidSceneCategory is returned when a SceneCategory value is not recognized.
	ErrInvalidSceneCategory = errors.New("invalid scene category")
	// ErrInvalidLifecycleEvent is returned when a LifecycleEvent value is not recognized.
	ErrInvalidLifecycleEvent = errors.New("invalid lifecycle event")

	scenes = []SceneCategory{
		SceneFlightEditorAndSpaceCentre,
		SceneAllGameScenes,
		SceneFlightAndEditor,
		SceneFlightAndSpaceCentre,
		SceneEveryScene,
		SceneMainMenu,
		SceneSettings,
		SceneCredits,
		SceneSpaceCentre,
		SceneEditor,
		SceneEditorSPH,
		SceneEditorVAB,
		SceneFlight,
		SceneTrackingStation,
	}

	events = []LifecycleEvent{
		EventInit,
		EventStart,
		EventUpdate,
		EventFixedUpdate,
		EventLateUpdate,
		EventRenderOverlay,
		EventTeardown,
	}
)

type (
	// SceneCategory names a group of host scenes a hook applies to.
	SceneCategory string

	// InvalidSceneCategoryError is returned when a SceneCategory value is not recognized.
	// It wraps ErrInvalidSceneCategory for errors.Is() compatibility.
	InvalidSceneCategoryError struct {
		Value SceneCategory
	}

	// LifecycleEvent names a point in a dispatcher's lifecycle.
	LifecycleEvent string

	// InvalidLifecycleEventError is returned when a LifecycleEvent value is not recognized.
	// It wraps ErrInvalidLifecycleEvent for errors.Is() compatibility.
	InvalidLifecycleEventError struct {
		Value LifecycleEvent
	}

	// HostScene is the host's current execution context as reported to dispatchers.
	// Any value is accepted; only the bootstrap contexts carry special meaning.
	HostScene string

	// Descriptor is one (scene, event) pair attached to a function.
	// A function may carry several descriptors, each yielding one registration.
	Descriptor struct {
		Scene SceneCategory  `json:"scene" yaml:"scene" toml:"scene"`
		Event LifecycleEvent `json:"event" yaml:"event" toml:"event"`
	}

	// Func is a parameterless hook body. Script return values are discarded;
	// only failure is reported.
	Func func() error

	// Binding is a function discovered together with one of its descriptors.
	Binding struct {
		// Owner is the library the function was found in.
		Owner string
		// Name is the function's name within its owner.
		Name string
		Descriptor
		Func Func
	}
)

// Scenes returns every SceneCategory in declaration order.
func Scenes() []SceneCategory {
	out := make([]SceneCategory, len(scenes))
	copy(out, scenes)
	return out
}

// Events returns every LifecycleEvent in lifecycle order.
func Events() []LifecycleEvent {
	out := make([]LifecycleEvent, len(events))
	copy(out, events)
	return out
}

// Error implements the error interface for InvalidSceneCategoryError.
func (e *InvalidSceneCategoryError) Error() string {
	return fmt.Sprintf("invalid scene category %q (valid: %s)", e.Value, joinValues(scenes))
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidSceneCategoryError) Unwrap() error { return ErrInvalidSceneCategory }

// String returns the string representation of the SceneCategory.
func (s SceneCategory) String() string { return string(s) }

// IsValid returns whether the SceneCategory is one of the defined categories,
// and a list of validation errors if it is not.
func (s SceneCategory) IsValid() (bool, []error) {
	for _, known := range scenes {
		if s == known {
			return true, nil
		}
	}
	return false, []error{&InvalidSceneCategoryError{Value: s}}
}

// ParseSceneCategory converts a string into a SceneCategory. Matching ignores
// case and surrounding whitespace.
func ParseSceneCategory(s string) (SceneCategory, error) {
	sc := SceneCategory(strings.ToLower(strings.TrimSpace(s)))
	if ok, errs := sc.IsValid(); !ok {
		return "", errs[0]
	}
	return sc, nil
}

// Error implements the error interface for InvalidLifecycleEventError.
func (e *InvalidLifecycleEventError) Error() string {
	return fmt.Sprintf("invalid lifecycle event %q (valid: %s)", e.Value, joinValues(events))
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLifecycleEventError) Unwrap() error { return ErrInvalidLifecycleEvent }

// String returns the string representation of the LifecycleEvent.
func (ev LifecycleEvent) String() string { return string(ev) }

// IsValid returns whether the LifecycleEvent is one of the defined events,
// and a list of validation errors if it is not.
func (ev LifecycleEvent) IsValid() (bool, []error) {
	for _, known := range events {
		if ev == known {
			return true, nil
		}
	}
	return false, []error{&InvalidLifecycleEventError{Value: ev}}
}

// ParseLifecycleEvent converts a string into a LifecycleEvent. Matching ignores
// case and surrounding whitespace.
func ParseLifecycleEvent(s string) (LifecycleEvent, error) {
	ev := LifecycleEvent(strings.ToLower(strings.TrimSpace(s)))
	if ok, errs := ev.IsValid(); !ok {
		return "", errs[0]
	}
	return ev, nil
}

// String returns the string representation of the HostScene.
func (h HostScene) String() string { return string(h) }

// Bootstrapping reports whether h is one of the bootstrap contexts in which
// an every-scene dispatcher must not run.
func (h HostScene) Bootstrapping() bool {
	return h == HostSceneLoading || h == HostSceneSplash
}

// ParseDescriptor validates both halves of a descriptor.
func ParseDescriptor(scene, event string) (Descriptor, error) {
	sc, err := ParseSceneCategory(scene)
	if err != nil {
		return Descriptor{}, err
	}
	ev, err := ParseLifecycleEvent(event)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Scene: sc, Event: ev}, nil
}

// String renders the descriptor as scene.event.
func (d Descriptor) String() string { return string(d.Scene) + "." + string(d.Event) }

// QualifiedName renders the binding as owner.name.
func (b Binding) QualifiedName() string {
	if b.Owner == "" {
		return b.Name
	}
	return b.Owner + "." + b.Name
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
