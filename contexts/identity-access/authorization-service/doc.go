// Package authorization implements the access resolver for the back office.
//
// Layering:
// - domain: decision entities, the role-default table, errors
// - application: side-effect-free resolver queries using explicit ports
// - ports: stable boundaries for the identity/membership directories and cache
// - adapters: concrete HTTP, memory, and redis implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the identity-access context.
// - Do not import other context adapters into domain/application; cross-context
//   reads go through the directory ports wired at bootstrap.
package authorization
