// Package server is the host HTTP server. It owns the route table, the
// host's own pages (home, health, metrics, backend API) and the middleware
// every request passes through, and it loads the backend registry into
// the route table before serving.
package server
