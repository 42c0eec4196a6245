// Package backend defines the contract between the host and the pluggable
// backends it serves.
//
// A backend owns a URL prefix and a directory of projects. The registry
// builds backends from descriptors through a Factory, asks each to prepare
// its environment and register its routes, and from then on only calls the
// read-only listing methods. Base implements the descriptor defaults shared
// by every built-in backend; third-party implementations register a Factory
// with RegisterImplementation from an init function and are selected by the
// descriptor's implementation key.
package backend
