// SPDX-License-Identifier: MPL-2.0

// Package library holds the symbol tables scripts link against: host
// libraries built from Go functions and, once compiled, the script modules
// themselves.
package library
