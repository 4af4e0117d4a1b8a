// Package main provides the entry point for the agencydash CLI.
//
// agencydash turns a CSV file of Belgian real estate agencies into a
// dashboard: a searchable table, a profit bar chart and a map of head
// offices connected to Brussels.
//
// Usage:
//
//	agencydash serve
//	agencydash table -q brussels
//	agencydash report data/*.csv
//
// See --help for all available options.
package main

// main is the entry point for agencydash.
func main() {
	Execute()
}
