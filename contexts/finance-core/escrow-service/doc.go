// Package escrowservice implements milestone escrow for finance-core: a
// client funds milestones, both parties approve each release, and either
// party can freeze the escrow with a dispute.
//
// Layering:
// - domain: aggregates, error taxonomy, ledger derivation and access guard
// - application: commands/queries/workers using explicit ports
// - ports: stable boundaries for the escrow store, project directory, and outbox
// - adapters: concrete HTTP, memory, and gorm implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Every mutation is load, guard, mutate, commit under an optimistic version.
// - Transition events leave through the outbox written in the same commit.
// - Project data is read through ProjectDirectory only; this module never owns projects.
package escrowservice
