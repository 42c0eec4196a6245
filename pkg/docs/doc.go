// Package docs serves read-only document trees: one backend per Variant.
//
// The document variant renders markdown pages. The records variant also
// renders CSV exports as tables, labelling markdown files "page" and CSV
// files "database" in the navigation tree. Both read every file, tree and
// sidecar from disk on each request.
package docs
