package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/slotworks/vending"
)

// Category classifies an item on the menu.
type Category string

const (
	// CategoryDrink identifies beverages.
	CategoryDrink Category = "Drink"
	// CategorySnack identifies snacks.
	CategorySnack Category = "Snack"
)

// Item is one purchasable slot in the machine.
type Item struct {
	Code     int
	Name     string
	Price    decimal.Decimal
	Category Category
	Stock    int
}

// Catalog maps item codes to items. Insertion order is preserved for menu
// rendering only; it carries no other meaning.
type Catalog struct {
	items map[int]*Item
	order []int
}

// New builds a catalog from seed data. Seed rows must carry unique positive
// codes, nonempty names, positive prices, and non-negative stock.
func New(seed []Item) (*Catalog, error) {
	if len(seed) == 0 {
		return nil, vending.NewDomainError(vending.ErrorInvalidSeed, "seed", "catalog seed is empty")
	}

	cat := &Catalog{
		items: make(map[int]*Item, len(seed)),
		order: make([]int, 0, len(seed)),
	}

	for i, item := range seed {
		field := fmt.Sprintf("seed[%d]", i)

		if item.Code <= 0 {
			return nil, vending.NewDomainError(vending.ErrorInvalidSeed, field, "item code must be positive")
		}

		if _, exists := cat.items[item.Code]; exists {
			return nil, vending.NewDomainError(vending.ErrorInvalidSeed, field, fmt.Sprintf("duplicate item code %d", item.Code))
		}

		if strings.TrimSpace(item.Name) == "" {
			return nil, vending.NewDomainError(vending.ErrorInvalidSeed, field, "item name is required")
		}

		if !item.Price.IsPositive() {
			return nil, vending.NewDomainError(vending.ErrorInvalidSeed, field, "item price must be greater than zero")
		}

		if item.Stock < 0 {
			return nil, vending.NewDomainError(vending.ErrorInvalidSeed, field, "item stock must not be negative")
		}

		stored := item
		cat.items[item.Code] = &stored
		cat.order = append(cat.order, item.Code)
	}

	return cat, nil
}

// Lookup returns a copy of the item registered under code.
func (c *Catalog) Lookup(code int) (Item, error) {
	item, ok := c.items[code]
	if !ok {
		return Item{}, vending.NewDomainError(vending.ErrorUnknownCode, "code", fmt.Sprintf("no item with code %d", code))
	}

	return *item, nil
}

// DecrementStock reduces the item's stock by n, failing without mutation when
// the result would be negative.
func (c *Catalog) DecrementStock(code, n int) error {
	item, ok := c.items[code]
	if !ok {
		return vending.NewDomainError(vending.ErrorUnknownCode, "code", fmt.Sprintf("no item with code %d", code))
	}

	if item.Stock-n < 0 {
		return vending.NewDomainError(vending.ErrorOutOfStock, "stock", fmt.Sprintf("%s has %d unit(s) left", item.Name, item.Stock))
	}

	item.Stock -= n

	return nil
}

// IncrementStock adds n units to the item's stock and returns the new count.
// No upper bound is enforced.
func (c *Catalog) IncrementStock(code, n int) (int, error) {
	item, ok := c.items[code]
	if !ok {
		return 0, vending.NewDomainError(vending.ErrorUnknownCode, "code", fmt.Sprintf("no item with code %d", code))
	}

	if n <= 0 {
		return 0, vending.NewDomainError(vending.ErrorInvalidQuantity, "quantity", "restock quantity must be positive")
	}

	item.Stock += n

	return item.Stock, nil
}

// Items returns a snapshot of every item in insertion order.
func (c *Catalog) Items() []Item {
	items := make([]Item, 0, len(c.order))
	for _, code := range c.order {
		items = append(items, *c.items[code])
	}

	return items
}

// Len returns the number of item kinds in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}
