// SPDX-License-Identifier: MPL-2.0

package hooks

import (
	"github.com/scripthook/scripthook/internal/library"
	"github.com/scripthook/scripthook/pkg/hook"
)

// Source is a library that carries hook metadata. Compiled modules and
// static host libraries implement it.
type Source interface {
	Hooks() []hook.Binding
}

// Scan collects the bindings of every library in libs, in library order and
// then in each library's discovery order. A function with several
// descriptors yields one binding per descriptor. Libraries without metadata
// are skipped.
func Scan(libs []library.Library) []hook.Binding {
	var out []hook.Binding
	for _, lib := range libs {
		src, ok := lib.(Source)
		if !ok {
			continue
		}
		out = append(out, src.Hooks()...)
	}
	return out
}
