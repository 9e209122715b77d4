// Package assert provides invariant assertions for conditions that must hold
// by construction, such as the money conservation equation checked at sale
// commit time.
//
// A failed assertion is logged and returned as an *AssertionError wrapping
// ErrAssertionFailed; callers decide whether to degrade or abort.
package assert
