// Package report writes rendered dashboards in several formats.
//
// Writers:
//   - SimpleWriter: terminal grid of the agency table, drawn with tablewriter
//   - MarkdownWriter: shareable report with profit ranking and map coverage
//   - JSONWriter: structured output for other tools
//
// A Summary condenses a dashboard into the figures every format prints.
// All writers implement Writer, so they can be combined with MultiWriter.
package report
