// SPDX-License-Identifier: MPL-2.0

// Package issue provides structured, user-facing error reporting.
//
// ActionableError carries the failed operation, the resource involved,
// and suggestions for fixing the problem. The issue catalog maps common
// failure classes (missing canon directory, unresolved placeholders,
// unreadable profile roots) to rendered markdown guidance.
package issue
