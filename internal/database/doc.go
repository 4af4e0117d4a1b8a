// Package database provides the in-memory SQLite index behind the table
// search, the column sort and the read-only `query` command.
//
// Every render opens its own Index from the loaded records and closes it
// when done; nothing is written to disk. The CSV file stays the only
// source of truth.
//
// The index uses modernc.org/sqlite, which is CGO-free, so the binary
// cross-compiles without a C toolchain.
package database
