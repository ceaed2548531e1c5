// Package aggregates contains infrastructure implementations of domain aggregate contracts.
//
// Implementations compose table-level repos from internal/data/repos and own
// transaction boundaries for writes that must land together, such as inserting
// a full plan tree while archiving the user's previous plan.
package aggregates
