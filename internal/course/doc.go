// Package course defines the academy content model: a Course is an ordered
// list of Modules, each an ordered list of Lessons (video, text or quiz).
//
// Course values are read-only once loaded from a catalog. Nothing outside the
// catalog loader constructs or mutates them.
//
// Flattened order is module-array order then lesson-array order. Every
// navigation and progress computation walks lessons in this order; it is
// never re-sorted.
//
// All JSON and YAML tags use snake_case.
package course
