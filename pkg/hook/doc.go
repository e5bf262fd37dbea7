// SPDX-License-Identifier: MPL-2.0

// Package hook defines the vocabulary shared by scripts and the host: the
// closed sets of scene categories and lifecycle events, the descriptor that
// attaches one (scene, event) pair to a function, and the host scene values
// reported to dispatchers.
package hook
