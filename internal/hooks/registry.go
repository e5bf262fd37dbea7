// SPDX-License-Identifier: MPL-2.0

package hooks

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/scripthook/scripthook/pkg/hook"
)

// ErrRegistrySealed is returned by Register once the registry is published.
var ErrRegistrySealed = errors.New("hook registry is sealed")

type (
	// Entry is one registered hook body.
	Entry struct {
		Owner string
		Name  string
		Func  hook.Func
	}

	// Registration is an Entry together with the bucket it lives in.
	Registration struct {
		hook.Descriptor
		Entry
	}

	// Registry maps every (scene, event) pair to an ordered list of entries.
	// All pairs exist from construction. Entries are appended during a single
	// orchestration and the registry is then sealed; only lookups happen
	// afterwards. Register is not safe for concurrent use.
	Registry struct {
		buckets map[hook.SceneCategory]map[hook.LifecycleEvent][]Entry
		sealed  atomic.Bool
	}
)

// NewRegistry returns a registry with an empty bucket for every pair.
func NewRegistry() *Registry {
	r := &Registry{buckets: make(map[hook.SceneCategory]map[hook.LifecycleEvent][]Entry)}
	for _, s := range hook.Scenes() {
		events := make(map[hook.LifecycleEvent][]Entry)
		for _, e := range hook.Events() {
			events[e] = []Entry{}
		}
		r.buckets[s] = events
	}
	return r
}

// Register appends e to the bucket for d.
func (r *Registry) Register(d hook.Descriptor, e Entry) error {
	if r.sealed.Load() {
		return ErrRegistrySealed
	}
	events, ok := r.buckets[d.Scene]
	if !ok {
		return &hook.InvalidSceneCategoryError{Value: d.Scene}
	}
	bucket, ok := events[d.Event]
	if !ok {
		return &hook.InvalidLifecycleEventError{Value: d.Event}
	}
	if e.Func == nil {
		return fmt.Errorf("register %s for %s: nil function", e.Name, d)
	}
	events[d.Event] = append(bucket, e)
	return nil
}

// Seal publishes the registry. Lookups return entries only after Seal.
func (r *Registry) Seal() { r.sealed.Store(true) }

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool { return r.sealed.Load() }

// Lookup returns a copy of the bucket for (scene, event). Before Seal, and for
// values outside the closed sets, the result is empty.
func (r *Registry) Lookup(scene hook.SceneCategory, event hook.LifecycleEvent) []Entry {
	if !r.sealed.Load() {
		return []Entry{}
	}
	return slices.Clone(r.buckets[scene][event])
}

// Len returns the total number of entries.
func (r *Registry) Len() int {
	var n int
	for _, events := range r.buckets {
		for _, bucket := range events {
			n += len(bucket)
		}
	}
	return n
}

// Entries lists every registration, scenes and events in declaration order,
// entries in registration order.
func (r *Registry) Entries() []Registration {
	var out []Registration
	for _, s := range hook.Scenes() {
		for _, e := range hook.Events() {
			for _, entry := range r.buckets[s][e] {
				out = append(out, Registration{Descriptor: hook.Descriptor{Scene: s, Event: e}, Entry: entry})
			}
		}
	}
	return out
}

// QualifiedName renders the entry as owner.name.
func (e Entry) QualifiedName() string {
	if e.Owner == "" {
		return e.Name
	}
	return e.Owner + "." + e.Name
}
