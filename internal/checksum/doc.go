// Package checksum computes SHA-256 checksums of source CSV files. The
// state manager uses them to verify that a resumed import still targets the
// same file contents it started with.
package checksum
