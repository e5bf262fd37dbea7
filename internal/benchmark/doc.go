// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the scripthook hot paths, suitable
// for PGO profile generation:
//   - CUE config loading and validation
//   - content crawling
//   - per-backend compilation through the loader
//   - per-frame hook dispatch
//
// Run them with:
//
//	go test -run='^$' -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
