// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/scripthook/config.cue (or the XDG equivalent
// on Linux, ~/Library/Application Support/scripthook/config.cue on macOS,
// %APPDATA%\scripthook\config.cue on Windows), falling back to ./config.cue.
// Files are validated against the embedded config_schema.cue, merged over
// defaults, and may be overridden with SCRIPTHOOK_* environment variables
// (SCRIPTHOOK_LOG_LEVEL=debug).
package config
