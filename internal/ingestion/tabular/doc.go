// Package tabular turns uploaded delimited-text and spreadsheet files into a
// uniform header + row shape and checks the headers against a dataset's
// declared columns.
package tabular
