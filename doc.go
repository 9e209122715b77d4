// Package vending carries the error taxonomy shared by the catalog, session,
// and admin packages.
//
// Every failure a component can report is a DomainError with a stable
// ErrorCode. All codes are recoverable-by-retry: the operation that produced
// the error left its receiver in the pre-call state, so the driver can
// surface the failure and re-prompt.
package vending
