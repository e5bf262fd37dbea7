// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

// Exit codes reported by Execute.
const (
	// exitScriptFailure means the CLI itself worked but the scripts did not:
	// `check` found files that failed to compile, or a hook faulted during
	// `run` (teardown included).
	exitScriptFailure = 1
)

// ExitError carries a process exit code out of a RunE handler so Execute,
// not the handler, calls os.Exit. Code is exitScriptFailure for script
// problems; any other returned error exits 1 through fang as well.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("scripthook exited with status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
