// Package session implements the purchase state machine.
//
// Core flow:
//   - Select picks an item and either commits immediately (carried balance
//     covers the price) or starts payment collection.
//   - InsertPayment absorbs tendered money until the shortfall reaches zero,
//     then commits the sale.
//   - Continue either returns the session to Idle for another purchase or
//     ends it, refunding the carried balance.
//
// Every completed sale satisfies the conservation equation
//
//	prior_balance + inserted = price + change
//
// and the package enforces deterministic behavior using typed domain errors.
package session
