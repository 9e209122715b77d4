package admin

import "github.com/slotworks/vending"

// Authorizer checks candidate secrets against the machine's admin secret.
// Every call is independent; failed attempts carry no side effects.
type Authorizer struct {
	secret string
}

// NewAuthorizer creates an authorizer holding the fixed admin secret.
func NewAuthorizer(secret string) *Authorizer {
	return &Authorizer{secret: secret}
}

// Authorize reports whether candidate matches the admin secret exactly.
func (a *Authorizer) Authorize(candidate string) bool {
	return a.secret == candidate
}

// Check returns an ErrorUnauthorized domain error when candidate does not
// match, so drivers can surface the failure like any other error kind.
func (a *Authorizer) Check(candidate string) error {
	if !a.Authorize(candidate) {
		return vending.NewDomainError(vending.ErrorUnauthorized, "secret", "admin secret does not match")
	}

	return nil
}
