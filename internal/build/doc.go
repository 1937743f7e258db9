// Package build runs the generation pipeline.
//
// A run syncs the resource source when asked, loads the page spreadsheet and
// the resource descriptors, renders every page, then records the run in the
// ledger, updates metrics and publishes a summary. Every command that
// generates pages (generate, watch) routes through Service.
//
// Only a failure to load the spreadsheet or to write output stops a run. The
// trailing stages (ledger, metrics textfile, notification) degrade the run
// outcome to a warning instead.
package build
