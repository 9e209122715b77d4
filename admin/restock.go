package admin

import (
	"context"

	"github.com/slotworks/vending"
	"github.com/slotworks/vending/catalog"
	"github.com/slotworks/vending/log"
)

// RestockResult reports the applied restock.
type RestockResult struct {
	Code     int
	Name     string
	NewStock int
}

// Restocker applies administrative stock increments to a catalog.
type Restocker struct {
	catalog *catalog.Catalog
	logger  log.Logger
}

// NewRestocker creates a restocker bound to cat. logger may be nil.
func NewRestocker(cat *catalog.Catalog, logger log.Logger) *Restocker {
	if logger == nil {
		logger = log.NewNop()
	}

	return &Restocker{catalog: cat, logger: logger}
}

// Apply adds quantity units to the item under code. The code is validated
// before the quantity so an unknown code is reported as such even with a bad
// quantity. Repeated identical calls each add again: every call represents a
// distinct physical restocking act.
func (r *Restocker) Apply(ctx context.Context, code, quantity int) (RestockResult, error) {
	item, err := r.catalog.Lookup(code)
	if err != nil {
		return RestockResult{}, err
	}

	if quantity <= 0 {
		return RestockResult{}, vending.NewDomainError(vending.ErrorInvalidQuantity, "quantity", "restock quantity must be positive")
	}

	newStock, err := r.catalog.IncrementStock(code, quantity)
	if err != nil {
		return RestockResult{}, err
	}

	r.logger.Log(ctx, log.LevelInfo, "item restocked",
		log.Int("code", code),
		log.String("item", item.Name),
		log.Int("quantity", quantity),
		log.Int("new_stock", newStock),
	)

	return RestockResult{Code: code, Name: item.Name, NewStock: newStock}, nil
}
