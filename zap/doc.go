// Package zap adapts go.uber.org/zap to the module's log.Logger interface.
package zap
