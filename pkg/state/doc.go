// Package state provides the shared mutable store that persists across
// requests on one mock instance.
//
// The store is the mechanism stateful mocks use to simulate persistent
// backends: a CRUD plugin keeps its collections here, a counter route
// keeps its counter here. State survives every request; Reset is the
// only clearing mechanism and restores the initial snapshot supplied at
// construction.
package state
