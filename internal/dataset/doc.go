// Package dataset holds the in-memory columnar view that a metafeature
// computation reads from: a Table of named, equally long Columns plus an
// optional target Column.
//
// Columns are immutable once built. Numeric columns mark missing cells with
// NaN; categorical columns carry an explicit missing mask. The arrow adapter
// (FromArrowRecord, ReadCSV) is the only path from files into a Table; the
// engine itself never touches arrow types.
package dataset
