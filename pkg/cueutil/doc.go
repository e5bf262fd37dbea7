// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE helpers shared by configuration loading:
// schema unification, size limits, and error formatting with field paths.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	v, err := cueutil.Unify(schema, "#Config", data, "config.cue")
//	if err != nil {
//	    return err // "config.cue: log.level: ..."
//	}
package cueutil
