// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts avoid persistence and transport details and mark the write boundaries
// where conversation lineage and PRD revision invariants are enforced atomically.
package aggregates
