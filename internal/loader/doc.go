// SPDX-License-Identifier: MPL-2.0

// Package loader orchestrates a single load of script content: crawl,
// compile, scan, register, seal.
package loader
