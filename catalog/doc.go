// Package catalog provides the item registry and its stock mutation
// primitives.
//
// Core rules:
//   - The code set is fixed at construction; only stock quantities change.
//   - Stock never goes negative; DecrementStock fails instead.
//   - Items are returned by value and never aliased outside the catalog.
package catalog
