package assert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slotworks/vending/log"
)

// ErrAssertionFailed is the sentinel error for failed assertions.
var ErrAssertionFailed = errors.New("assertion failed")

// AssertionError represents a failed assertion with its component context.
type AssertionError struct {
	Assertion string
	Message   string
	Component string
	Operation string
	Details   string
}

// Error returns the formatted assertion failure message.
func (entry *AssertionError) Error() string {
	if entry == nil {
		return ErrAssertionFailed.Error()
	}

	if entry.Details == "" {
		return "assertion failed: " + entry.Message
	}

	return "assertion failed: " + entry.Message + " [" + entry.Details + "]"
}

// Unwrap returns the sentinel assertion error for errors.Is.
func (entry *AssertionError) Unwrap() error {
	return ErrAssertionFailed
}

// Asserter evaluates invariants and logs failures with component labels.
type Asserter struct {
	logger    log.Logger
	component string
	operation string
}

// New creates an Asserter. component and operation label every failure.
func New(logger log.Logger, component, operation string) *Asserter {
	if logger == nil {
		logger = log.NewNop()
	}

	return &Asserter{
		logger:    logger,
		component: component,
		operation: operation,
	}
}

// That returns an error if ok is false. kv are alternating key/value pairs
// recorded with the failure.
//
// Example:
//
//	if err := asserter.That(ctx, total.Equal(expected), "totals must reconcile", "total", total); err != nil {
//		return err
//	}
func (asserter *Asserter) That(ctx context.Context, ok bool, msg string, kv ...any) error {
	if ok {
		return nil
	}

	return asserter.fail(ctx, "That", msg, kv...)
}

// Never always returns an error. Use for code paths that should be unreachable.
func (asserter *Asserter) Never(ctx context.Context, msg string, kv ...any) error {
	return asserter.fail(ctx, "Never", msg, kv...)
}

func (asserter *Asserter) fail(ctx context.Context, assertion, msg string, kv ...any) error {
	details := formatKeyValuePairs(kv)

	asserter.logger.Log(ctx, log.LevelError, "invariant violated: "+msg,
		log.String("assertion", assertion),
		log.String("component", asserter.component),
		log.String("operation", asserter.operation),
		log.String("details", details),
	)

	return &AssertionError{
		Assertion: assertion,
		Message:   msg,
		Component: asserter.component,
		Operation: asserter.operation,
		Details:   details,
	}
}

func formatKeyValuePairs(kv []any) string {
	if len(kv) == 0 {
		return ""
	}

	pairs := make([]string, 0, (len(kv)+1)/2)

	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprintf("%v", kv[i])
		if i+1 < len(kv) {
			pairs = append(pairs, key+"="+fmt.Sprintf("%v", kv[i+1]))
		} else {
			pairs = append(pairs, key+"=?")
		}
	}

	return strings.Join(pairs, " ")
}
