// SPDX-License-Identifier: MPL-2.0

// Package console redirects script output into the host logger.
package console
