// Package registry loads backend descriptors from a directory and turns
// them into an immutable set of backends with their routes registered.
//
// Loading never fails as a whole. Each descriptor that cannot be read,
// names an unknown type or implementation, fails construction, repeats an
// identifier or claims routes another backend already owns is skipped and
// reported; the remaining descriptors load normally.
package registry
