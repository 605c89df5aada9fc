// SPDX-License-Identifier: MPL-2.0

// Package drift decides whether a profile's live configuration matches the
// rendered canonical content.
//
// Comparison is hash-based over normalized bytes: line endings and trailing
// whitespace never count as drift, and JSON targets are compared
// structurally so comment and formatting differences in Docker's
// settings.json are ignored.
package drift
