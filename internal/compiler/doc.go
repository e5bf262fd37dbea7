// SPDX-License-Identifier: MPL-2.0

// Package compiler turns script source files into loaded modules.
//
// Each backend implements Compiler for its file extensions: shell scripts run
// in the embedded mvdan/sh interpreter, Lua chunks in go-lua, and Go source in
// yaegi. A compile receives only the source and the libraries it may link
// against, and yields a Result holding either a Module or diagnostics.
//
// Modules are libraries in their own right, so later scripts can call the
// exports of earlier ones. Hook metadata found while compiling is carried on
// the module for the hooks package to scan.
package compiler
