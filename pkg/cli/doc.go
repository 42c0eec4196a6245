// Package cli implements the mph command line: serving the host and
// inspecting the backends, projects and documents it would serve.
package cli
