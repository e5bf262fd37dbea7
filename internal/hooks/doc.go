// SPDX-License-Identifier: MPL-2.0

// Package hooks discovers hook bindings on loaded libraries, stores them in a
// registry keyed by scene category and lifecycle event, and fires them
// through per-scene dispatchers.
//
// The registry is written once by the loader, then sealed. Dispatchers that
// fire before the seal see empty buckets.
package hooks
