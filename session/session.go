package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/slotworks/vending"
	"github.com/slotworks/vending/assert"
	"github.com/slotworks/vending/catalog"
	"github.com/slotworks/vending/log"
)

// State represents the lifecycle state of a purchase session.
//
// Transitions:
//
//	IDLE → AWAITING_PAYMENT | SALE_COMPLETE (carried balance covers the price)
//	AWAITING_PAYMENT → AWAITING_PAYMENT (short payment) | SALE_COMPLETE | IDLE (commit race refund)
//	SALE_COMPLETE → IDLE | ENDED
//	any non-terminal state → ENDED (buyer declines to continue)
type State string

const (
	// StateIdle marks a session with no item selected.
	StateIdle State = "IDLE"
	// StateAwaitingPayment marks a session collecting money toward a selected item.
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	// StateSaleComplete marks a session whose last sale committed.
	StateSaleComplete State = "SALE_COMPLETE"
	// StateEnded marks a finished session; terminal.
	StateEnded State = "ENDED"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// ItemInfo describes a successfully selected item to the driver.
type ItemInfo struct {
	Code  int
	Name  string
	Price decimal.Decimal
	Stock int
}

// SaleResult describes a committed sale.
type SaleResult struct {
	ReceiptID uuid.UUID
	ItemName  string
	Price     decimal.Decimal
	Change    decimal.Decimal
}

// Outcome is the structured result every session operation reports back to
// the driver. Which fields are set depends on the resulting state:
//
//   - Item: the selected item, on successful Select.
//   - Due: remaining shortfall while the session awaits payment.
//   - Sale: the committed sale, when payment (or carried balance) sufficed.
//   - Refund: money handed back, on an aborted commit or at session end.
type Outcome struct {
	Item   *ItemInfo
	Due    decimal.Decimal
	Sale   *SaleResult
	Refund decimal.Decimal
}

// pendingSale tracks the item under purchase and money absorbed toward it.
type pendingSale struct {
	code     int
	name     string
	price    decimal.Decimal
	inserted decimal.Decimal
}

// Session drives purchases against one catalog, carrying unspent balance
// across sales. Not safe for concurrent use; the model is strictly
// sequential (one buyer at the machine).
type Session struct {
	catalog  *catalog.Catalog
	logger   log.Logger
	asserter *assert.Asserter
	balance  decimal.Decimal
	state    State
	sale     *pendingSale
}

// Option configures a Session.
type Option func(s *Session)

// WithLogger attaches a structured logger. The session only logs; it never
// renders output to the buyer.
func WithLogger(logger log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates an idle session with zero balance against cat.
func New(cat *catalog.Catalog, opts ...Option) *Session {
	s := &Session{
		catalog: cat,
		logger:  log.NewNop(),
		balance: decimal.Zero,
		state:   StateIdle,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.asserter = assert.New(s.logger, "session", "commit")

	return s
}

// Balance returns the money currently credited to the session.
func (s *Session) Balance() decimal.Decimal {
	return s.balance
}

// CurrentState returns the session's lifecycle state.
func (s *Session) CurrentState() State {
	return s.state
}

// Select picks the item under code. On failure the session stays Idle and
// nothing changes. On success the outcome carries the item; if the carried
// balance already covers the price the sale commits immediately, otherwise
// the session awaits payment with Outcome.Due set to the shortfall.
func (s *Session) Select(ctx context.Context, code int) (Outcome, error) {
	if s.state != StateIdle {
		return Outcome{}, s.transitionError("Select")
	}

	item, err := s.catalog.Lookup(code)
	if err != nil {
		return Outcome{}, err
	}

	if item.Stock <= 0 {
		return Outcome{}, vending.NewDomainError(vending.ErrorOutOfStock, "stock", fmt.Sprintf("%s is out of stock", item.Name))
	}

	s.sale = &pendingSale{
		code:     item.Code,
		name:     item.Name,
		price:    item.Price,
		inserted: decimal.Zero,
	}

	outcome := Outcome{
		Item: &ItemInfo{Code: item.Code, Name: item.Name, Price: item.Price, Stock: item.Stock},
	}

	s.logger.Log(ctx, log.LevelDebug, "item selected",
		log.Int("code", item.Code),
		log.String("item", item.Name),
		log.String("price", item.Price.StringFixed(2)),
	)

	// Automatic balance evaluation: a carried balance covering the price
	// commits the sale without requesting new payment.
	if s.balance.GreaterThanOrEqual(item.Price) {
		if err := s.commit(ctx, &outcome); err != nil {
			return outcome, err
		}

		return outcome, nil
	}

	s.state = StateAwaitingPayment
	outcome.Due = item.Price.Sub(s.balance)

	return outcome, nil
}

// InsertPayment absorbs tendered money toward the selected item. A negative
// amount is rejected without being absorbed. A short amount is credited and
// the outcome reports the remaining shortfall; once the shortfall reaches
// zero the sale commits.
func (s *Session) InsertPayment(ctx context.Context, amount decimal.Decimal) (Outcome, error) {
	if s.state != StateAwaitingPayment {
		return Outcome{}, s.transitionError("InsertPayment")
	}

	if amount.IsNegative() {
		return Outcome{}, vending.NewDomainError(vending.ErrorInvalidAmount, "amount", "payment amount must not be negative")
	}

	s.sale.inserted = s.sale.inserted.Add(amount)

	due := s.sale.price.Sub(s.balance).Sub(s.sale.inserted)
	if due.IsPositive() {
		s.logger.Log(ctx, log.LevelDebug, "payment short",
			log.String("inserted", amount.StringFixed(2)),
			log.String("due", due.StringFixed(2)),
		)

		return Outcome{Due: due}, nil
	}

	var outcome Outcome
	if err := s.commit(ctx, &outcome); err != nil {
		return outcome, err
	}

	return outcome, nil
}

// Continue resolves the buy-another-item decision. more=true returns the
// session to Idle with the balance kept; more=false ends the session and
// refunds everything the machine holds for the buyer, including money
// inserted toward an unfinished purchase.
func (s *Session) Continue(ctx context.Context, more bool) (Outcome, error) {
	if s.state == StateEnded {
		return Outcome{}, s.transitionError("Continue")
	}

	if more {
		if s.state == StateAwaitingPayment {
			return Outcome{}, s.transitionError("Continue")
		}

		s.state = StateIdle
		s.sale = nil

		return Outcome{}, nil
	}

	refund := s.balance
	if s.state == StateAwaitingPayment {
		refund = refund.Add(s.sale.inserted)
	}

	s.balance = decimal.Zero
	s.sale = nil
	s.state = StateEnded

	s.logger.Log(ctx, log.LevelInfo, "session ended",
		log.String("refund", refund.StringFixed(2)),
	)

	return Outcome{Refund: refund}, nil
}

// commit finalizes the sale in s.sale: decrements stock, reconciles money,
// and carries the change forward as the new balance.
func (s *Session) commit(ctx context.Context, outcome *Outcome) error {
	sale := s.sale
	change := s.balance.Add(sale.inserted).Sub(sale.price)

	// Sufficiency was checked by the caller, so change is non-negative and
	// the conservation equation holds by construction.
	if err := s.asserter.That(ctx, !change.IsNegative(), "change must not be negative",
		"balance", s.balance, "inserted", sale.inserted, "price", sale.price); err != nil {
		return err
	}

	if err := s.catalog.DecrementStock(sale.code, 1); err != nil {
		// The item vanished between Select and commit. Degrade to a full
		// refund of the money inserted this transaction; the carried
		// balance stays with the session.
		refund := sale.inserted
		s.sale = nil
		s.state = StateIdle
		outcome.Refund = refund

		s.logger.Log(ctx, log.LevelWarn, "sale aborted at commit, refunding inserted funds",
			log.Int("code", sale.code),
			log.String("refund", refund.StringFixed(2)),
			log.Err(err),
		)

		return err
	}

	result := &SaleResult{
		ReceiptID: uuid.New(),
		ItemName:  sale.name,
		Price:     sale.price,
		Change:    change,
	}

	s.balance = change
	s.sale = nil
	s.state = StateSaleComplete
	outcome.Sale = result

	s.logger.Log(ctx, log.LevelInfo, "sale committed",
		log.String("receipt_id", result.ReceiptID.String()),
		log.String("item", result.ItemName),
		log.String("price", result.Price.StringFixed(2)),
		log.String("change", result.Change.StringFixed(2)),
	)

	return nil
}

func (s *Session) transitionError(operation string) error {
	return vending.NewDomainError(
		vending.ErrorInvalidStateTransition,
		"state",
		fmt.Sprintf("%s is not allowed while the session is %s", operation, s.state),
	)
}
