// Package aggregates defines domain-facing aggregate contracts and the
// error codes shared by the planning core.
//
// Contracts avoid persistence/transport details and describe write
// boundaries where invariants are enforced atomically.
package aggregates
