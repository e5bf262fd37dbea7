// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on setup errors
// and return cleanup functions, plus a helper for writing script trees.
package testutil
