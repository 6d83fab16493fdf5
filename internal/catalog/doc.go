// Package catalog provides the read-only course catalog.
//
// Catalogs are loaded from YAML or CUE files and checked twice: first
// structurally against the embedded CUE schema (schema.cue), then
// semantically with course.Validate. When no file is configured the
// embedded default catalog is used.
//
// Consumers depend on the Provider interface; *Catalog is the in-memory
// implementation. Returned courses must be treated as immutable.
package catalog
