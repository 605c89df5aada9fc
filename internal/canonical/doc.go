// SPDX-License-Identifier: MPL-2.0

// Package canonical loads the canon directory: the canon.yaml manifest
// describing each managed target, the template files it references, and
// the placeholder engine that renders templates with machine-specific
// values.
package canonical
