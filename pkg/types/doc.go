// Package types defines the domain entities, store interfaces, standard
// errors, and configuration for the Capsules task backend.
//
// The package is storage-agnostic: it describes what a task, capsule, or
// history entry is and what a Store must do, while internal/sqlite provides
// the relational implementation and pkg/engine provides the lifecycle
// semantics on top.
package types
