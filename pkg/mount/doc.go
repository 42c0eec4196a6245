// Package mount dispatches requests into embedded sub-applications.
//
// Each project directory holds an entry-point manifest (app.yaml by
// default). Its application attribute names a sub-application registered
// in a Catalog, usually from an init function of a package linked into the
// binary. For every request the manifest is read from disk, a fresh
// Application is built for that project alone, and the request is forwarded
// with the project prefix stripped. Nothing is cached between requests, so
// edits to a project take effect immediately and no state is shared between
// projects.
//
// Application failures stay inside the request: an ErrNoRoute answer becomes
// the host's 404 page, any other error or a panic becomes its 500 page.
package mount
