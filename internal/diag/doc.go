// Package diag collects the warnings and errors a build produces and renders
// them for a person or for cargo.
//
// Warnings never stop a build. Errors are carried as Go errors through the
// pipeline; the CLI turns the final one into a SevError diagnostic so that
// both kinds are printed the same way.
package diag
