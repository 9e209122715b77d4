// Package log defines the structured logging interface and typed logging
// fields used across the module.
//
// Adapters (such as the zap package) implement Logger so components can keep
// logging calls consistent across backends. The core state machine defaults
// to NopLogger: it reports outcomes through return values, never output.
package log
