// Package site renders the final catalog pages.
//
// For every spreadsheet row the renderer loads the row's base content from the
// contents tree (or synthesizes a placeholder), resolves parent and grand
// parent titles, injects the row's resource listing at the marker and writes
// <output>/<page_id>.md. Pages are always fully regenerated; rows are written
// one by one and nothing is rolled back when a later row fails.
package site
