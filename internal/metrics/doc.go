// SPDX-License-Identifier: MPL-2.0

// Package metrics exposes Prometheus collectors for script compilation and
// hook dispatch, and an optional HTTP endpoint serving them.
package metrics
