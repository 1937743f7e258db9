// Package errors provides the classified error primitives used across catalogbuilder.
//
// A ClassifiedError carries a category (what kind of failure), a severity (whether the
// run can continue) and structured context. Commands hand the final error to a
// CLIErrorAdapter which decides the exit code and the user-facing message.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryInput, "cannot load page spreadsheet").
//		Fatal().
//		WithContext("path", sheetPath).
//		WithCause(readErr).
//		Build()
package errors
