// Package admin provides the restock path: a minimal shared-secret gate and
// the stock increment operation it protects.
//
// The gate is a deliberate equality check. Hashing, throttling, or lockout
// can replace it behind the same Authorizer surface without touching the
// purchase flow.
package admin
