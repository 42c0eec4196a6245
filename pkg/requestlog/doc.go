// Package requestlog keeps a bounded history of the requests the host
// answered, for inspection through the host API.
//
// It is distinct from operational logging (which uses log/slog): entries
// are plain data meant to be listed and filtered.
//
//	store := requestlog.NewMemoryStore(500)
//	store.Log(&requestlog.Entry{Method: "GET", Path: "/docs/guide", Backend: "docs", Status: 200})
//	recent := store.List(&requestlog.Filter{Backend: "docs", Limit: 20})
//
// This is a leaf package with no internal dependencies.
package requestlog
