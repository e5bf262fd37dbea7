// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for the CLI and a catalog of
// known failures with Markdown guidance rendered through glamour.
package issue
