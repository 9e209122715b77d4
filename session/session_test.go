package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotworks/vending"
	"github.com/slotworks/vending/catalog"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.New([]catalog.Item{
		{Code: 1, Name: "Royal", Price: decimal.NewFromFloat(5.50), Category: catalog.CategoryDrink, Stock: 5},
		{Code: 2, Name: "Pocari Sweat", Price: decimal.NewFromFloat(5.50), Category: catalog.CategoryDrink, Stock: 2},
		{Code: 3, Name: "Water", Price: decimal.NewFromFloat(3.50), Category: catalog.CategoryDrink, Stock: 10},
		{Code: 4, Name: "Fudgee Bar", Price: decimal.NewFromFloat(7.50), Category: catalog.CategorySnack, Stock: 2},
		{Code: 6, Name: "Empty Slot", Price: decimal.NewFromFloat(2.00), Category: catalog.CategorySnack, Stock: 0},
	})
	require.NoError(t, err)

	return cat
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ---------------------------------------------------------------------------
// Select
// ---------------------------------------------------------------------------

func TestSelectUnknownCodeLeavesSessionIdle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	_, err := sess.Select(ctx, 99)

	require.Error(t, err)
	assert.True(t, vending.IsCode(err, vending.ErrorUnknownCode))
	assert.Equal(t, StateIdle, sess.CurrentState())
	assert.True(t, sess.Balance().IsZero())
}

func TestSelectOutOfStockLeavesSessionIdle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	_, err := sess.Select(ctx, 6)

	require.Error(t, err)
	assert.True(t, vending.IsCode(err, vending.ErrorOutOfStock))
	assert.Equal(t, StateIdle, sess.CurrentState())
}

func TestSelectReportsItemAndShortfall(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	outcome, err := sess.Select(ctx, 1)

	require.NoError(t, err)
	require.NotNil(t, outcome.Item)
	assert.Equal(t, "Royal", outcome.Item.Name)
	assert.True(t, outcome.Item.Price.Equal(amount("5.50")))
	assert.Equal(t, 5, outcome.Item.Stock)
	assert.Nil(t, outcome.Sale)
	assert.True(t, outcome.Due.Equal(amount("5.50")))
	assert.Equal(t, StateAwaitingPayment, sess.CurrentState())
}

// ---------------------------------------------------------------------------
// Payment accumulation -- Scenario A
// ---------------------------------------------------------------------------

func TestShortPaymentIsCreditedThenSaleCompletes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cat := newCatalog(t)
	sess := New(cat)

	_, err := sess.Select(ctx, 1) // Royal, 5.50
	require.NoError(t, err)

	outcome, err := sess.InsertPayment(ctx, amount("3.00"))
	require.NoError(t, err)
	assert.Nil(t, outcome.Sale)
	assert.True(t, outcome.Due.Equal(amount("2.50")), "short payment must be absorbed, due recomputed")
	assert.Equal(t, StateAwaitingPayment, sess.CurrentState())

	outcome, err = sess.InsertPayment(ctx, amount("2.50"))
	require.NoError(t, err)
	require.NotNil(t, outcome.Sale)
	assert.Equal(t, "Royal", outcome.Sale.ItemName)
	assert.True(t, outcome.Sale.Change.IsZero())
	assert.NotEqual(t, uuid.Nil, outcome.Sale.ReceiptID)
	assert.Equal(t, StateSaleComplete, sess.CurrentState())

	item, err := cat.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Stock, "sale decrements stock by one")
}

func TestPartialPaymentsAccumulateAcrossInsertions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	_, err := sess.Select(ctx, 4) // Fudgee Bar, 7.50
	require.NoError(t, err)

	outcome, err := sess.InsertPayment(ctx, amount("1.00"))
	require.NoError(t, err)
	assert.True(t, outcome.Due.Equal(amount("6.50")))

	outcome, err = sess.InsertPayment(ctx, amount("0.25"))
	require.NoError(t, err)
	assert.True(t, outcome.Due.Equal(amount("6.25")))

	outcome, err = sess.InsertPayment(ctx, amount("6.25"))
	require.NoError(t, err)
	require.NotNil(t, outcome.Sale)
	assert.True(t, outcome.Sale.Change.IsZero())
}

func TestZeroPaymentIsAbsorbedWithoutProgress(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	_, err := sess.Select(ctx, 3) // Water, 3.50
	require.NoError(t, err)

	outcome, err := sess.InsertPayment(ctx, decimal.Zero)
	require.NoError(t, err)
	assert.Nil(t, outcome.Sale)
	assert.True(t, outcome.Due.Equal(amount("3.50")))
}

func TestNegativePaymentIsRejectedWithoutAbsorption(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	_, err := sess.Select(ctx, 3) // Water, 3.50
	require.NoError(t, err)

	_, err = sess.InsertPayment(ctx, amount("-2.00"))
	require.Error(t, err)
	assert.True(t, vending.IsCode(err, vending.ErrorInvalidAmount))
	assert.Equal(t, StateAwaitingPayment, sess.CurrentState())

	// The rejected amount was not credited: the full price is still due.
	outcome, err := sess.InsertPayment(ctx, amount("1.00"))
	require.NoError(t, err)
	assert.True(t, outcome.Due.Equal(amount("2.50")))
}

// ---------------------------------------------------------------------------
// Change carry-forward -- Scenario B
// ---------------------------------------------------------------------------

func TestChangeCarriesForwardAsBalance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	_, err := sess.Select(ctx, 3) // Water, 3.50
	require.NoError(t, err)

	outcome, err := sess.InsertPayment(ctx, amount("5.00"))
	require.NoError(t, err)
	require.NotNil(t, outcome.Sale)
	assert.True(t, outcome.Sale.Change.Equal(amount("1.50")))
	assert.True(t, sess.Balance().Equal(amount("1.50")))

	_, err = sess.Continue(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, sess.CurrentState())

	outcome, err = sess.Select(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, outcome.Sale)
	assert.True(t, outcome.Due.Equal(amount("2.00")), "carried balance 1.50 reduces the 3.50 due")
}

func TestBalanceCoveringPriceCommitsWithoutPayment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cat := newCatalog(t)
	sess := New(cat)

	_, err := sess.Select(ctx, 3) // Water, 3.50
	require.NoError(t, err)

	_, err = sess.InsertPayment(ctx, amount("9.00")) // change 5.50
	require.NoError(t, err)
	require.True(t, sess.Balance().Equal(amount("5.50")))

	_, err = sess.Continue(ctx, true)
	require.NoError(t, err)

	outcome, err := sess.Select(ctx, 1) // Royal, 5.50 -- exactly the balance
	require.NoError(t, err)
	require.NotNil(t, outcome.Sale, "sufficient balance must auto-pay at selection")
	assert.True(t, outcome.Sale.Change.IsZero())
	assert.True(t, sess.Balance().IsZero())
	assert.Equal(t, StateSaleComplete, sess.CurrentState())

	item, err := cat.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Stock)
}

// ---------------------------------------------------------------------------
// Money conservation
// ---------------------------------------------------------------------------

// Every completed sale satisfies prior_balance + inserted = price + change.
func TestMoneyConservationAcrossSales(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	purchases := []struct {
		code     int
		payments []string
	}{
		{code: 3, payments: []string{"1.00", "1.00", "3.00"}}, // Water 3.50, change 1.50
		{code: 1, payments: []string{"2.00", "4.00"}},         // Royal 5.50, prior 1.50, change 2.00
		{code: 4, payments: []string{"5.50"}},                 // Fudgee Bar 7.50, prior 2.00, change 0
	}

	for _, p := range purchases {
		prior := sess.Balance()

		selOutcome, err := sess.Select(ctx, p.code)
		require.NoError(t, err)
		price := selOutcome.Item.Price

		inserted := decimal.Zero

		var sale *SaleResult

		for _, raw := range p.payments {
			pay := amount(raw)
			inserted = inserted.Add(pay)

			outcome, err := sess.InsertPayment(ctx, pay)
			require.NoError(t, err)

			sale = outcome.Sale
		}

		require.NotNil(t, sale)
		assert.True(t, prior.Add(inserted).Equal(price.Add(sale.Change)),
			"conservation: %s + %s != %s + %s", prior, inserted, price, sale.Change)

		_, err = sess.Continue(ctx, true)
		require.NoError(t, err)
	}
}

// ---------------------------------------------------------------------------
// Continue and session end
// ---------------------------------------------------------------------------

func TestContinueNoRefundsBalanceAndEndsSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	_, err := sess.Select(ctx, 3)
	require.NoError(t, err)

	_, err = sess.InsertPayment(ctx, amount("5.00")) // change 1.50 carried
	require.NoError(t, err)

	outcome, err := sess.Continue(ctx, false)
	require.NoError(t, err)
	assert.True(t, outcome.Refund.Equal(amount("1.50")))
	assert.True(t, sess.Balance().IsZero())
	assert.Equal(t, StateEnded, sess.CurrentState())

	_, err = sess.Continue(ctx, false)
	require.Error(t, err)
	assert.True(t, vending.IsCode(err, vending.ErrorInvalidStateTransition))
}

func TestEndingMidPaymentRefundsInsertedFunds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	_, err := sess.Select(ctx, 1) // Royal, 5.50
	require.NoError(t, err)

	_, err = sess.InsertPayment(ctx, amount("2.00"))
	require.NoError(t, err)

	outcome, err := sess.Continue(ctx, false)
	require.NoError(t, err)
	assert.True(t, outcome.Refund.Equal(amount("2.00")), "money inserted toward an unfinished sale is returned")
	assert.Equal(t, StateEnded, sess.CurrentState())
}

func TestWrongStateTransitionsAreRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New(newCatalog(t))

	_, err := sess.InsertPayment(ctx, amount("1.00"))
	require.Error(t, err)
	assert.True(t, vending.IsCode(err, vending.ErrorInvalidStateTransition))

	_, err = sess.Select(ctx, 1)
	require.NoError(t, err)

	_, err = sess.Select(ctx, 3)
	require.Error(t, err)
	assert.True(t, vending.IsCode(err, vending.ErrorInvalidStateTransition))

	_, err = sess.Continue(ctx, true)
	require.Error(t, err, "continuing shopping mid-payment is not a transition")
	assert.True(t, vending.IsCode(err, vending.ErrorInvalidStateTransition))
	assert.Equal(t, StateAwaitingPayment, sess.CurrentState())
}

// ---------------------------------------------------------------------------
// Commit-time stock race -- degrades to a full refund
// ---------------------------------------------------------------------------

func TestCommitRaceRefundsInsertedFunds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cat := newCatalog(t)
	sess := New(cat)

	_, err := sess.Select(ctx, 2) // Pocari Sweat, stock 2
	require.NoError(t, err)

	// An external mutator drains the slot between Select and commit.
	require.NoError(t, cat.DecrementStock(2, 1))
	require.NoError(t, cat.DecrementStock(2, 1))

	outcome, err := sess.InsertPayment(ctx, amount("6.00"))

	require.Error(t, err)
	assert.True(t, vending.IsCode(err, vending.ErrorOutOfStock))
	assert.Nil(t, outcome.Sale)
	assert.True(t, outcome.Refund.Equal(amount("6.00")), "inserted funds are returned in full")
	assert.Equal(t, StateIdle, sess.CurrentState())
	assert.True(t, sess.Balance().IsZero())

	item, err := cat.Lookup(2)
	require.NoError(t, err)
	assert.Zero(t, item.Stock)
}
