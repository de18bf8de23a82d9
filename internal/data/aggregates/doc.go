// Package aggregates contains infrastructure implementations of domain aggregate contracts.
//
// Implementations in this package compose table-level repos from internal/data/repos
// and own the actor-scoped transaction boundary of every dataset write.
package aggregates
