// Package cmd implements the command-line interface for the gKV guarded
// key-value container. It provides a hierarchical command structure for
// operating on a file-backed container and benchmarking it.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for container operations (get, set, delete, stats, etc.)
//   - util: Shared utilities for command-line processing, configuration and
//     logger setup (internal use)
//
// See gkv -help for a list of all commands.
package cmd
