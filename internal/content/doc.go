// SPDX-License-Identifier: MPL-2.0

// Package content models the host's content tree and walks it for script
// source files.
//
// The tree is read-only. Load builds one from any fs.FS, LoadDir from a host
// directory, and NewDir/NewFile let hosts assemble one in memory. Crawl walks a
// tree depth-first, yielding a directory's own files before descending into its
// children.
package content
