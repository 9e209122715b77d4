package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/slotworks/vending"
	"github.com/slotworks/vending/admin"
	"github.com/slotworks/vending/catalog"
	"github.com/slotworks/vending/log"
	"github.com/slotworks/vending/session"
)

// DefaultAdminCode is the reserved selection code that routes to
// administrator mode instead of a sale.
const DefaultAdminCode = 999

// ErrNoCatalog is returned when a machine is built without a catalog.
var ErrNoCatalog = errors.New("console: catalog is required")

// Config wires a Machine. Input, Output, Announcer, and Logger are optional;
// AdminCode defaults to DefaultAdminCode.
type Config struct {
	Catalog     *catalog.Catalog
	AdminSecret string
	AdminCode   int
	Input       io.Reader
	Output      io.Writer
	Announcer   Announcer
	Logger      log.Logger
}

// Machine runs the interactive dispensing loop over a line-based console.
type Machine struct {
	catalog   *catalog.Catalog
	session   *session.Session
	auth      *admin.Authorizer
	restocker *admin.Restocker
	adminCode int
	scanner   *bufio.Scanner
	out       io.Writer
	announcer Announcer
	logger    log.Logger
}

// New builds a machine around one catalog-backed purchase session.
func New(cfg Config) (*Machine, error) {
	if cfg.Catalog == nil {
		return nil, ErrNoCatalog
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	announcer := cfg.Announcer
	if announcer == nil {
		announcer = NopAnnouncer{}
	}

	adminCode := cfg.AdminCode
	if adminCode == 0 {
		adminCode = DefaultAdminCode
	}

	input := cfg.Input
	if input == nil {
		input = strings.NewReader("")
	}

	output := cfg.Output
	if output == nil {
		output = io.Discard
	}

	return &Machine{
		catalog:   cfg.Catalog,
		session:   session.New(cfg.Catalog, session.WithLogger(logger)),
		auth:      admin.NewAuthorizer(cfg.AdminSecret),
		restocker: admin.NewRestocker(cfg.Catalog, logger),
		adminCode: adminCode,
		scanner:   bufio.NewScanner(input),
		out:       output,
		announcer: announcer,
		logger:    logger,
	}, nil
}

// Session exposes the underlying purchase session, mainly for tests.
func (m *Machine) Session() *session.Session {
	return m.session
}

// Run drives the buy loop until the buyer exits or input ends. Input ending
// mid-session counts as declining to continue: the carried balance is
// refunded before returning.
func (m *Machine) Run(ctx context.Context) error {
	m.announcer.Say(ctx, "Welcome to the vending machine!")
	m.announcer.Say(ctx, "Here's the menu")

	for {
		m.renderMenu()

		if m.session.Balance().IsPositive() {
			fmt.Fprintf(m.out, "Your remaining balance: AED %s\n", m.session.Balance().StringFixed(2))
		}

		line, ok := m.prompt("Enter item code to buy (or 0 to exit): ")
		if !ok {
			return m.finish(ctx, "Thank you for using the vending machine! See you again later!")
		}

		if line == "0" {
			return m.finish(ctx, "Thank you for using the vending machine! See you again later!")
		}

		code, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid code. Try again.")
			continue
		}

		if code == m.adminCode {
			m.adminMode(ctx)
			continue
		}

		if done := m.purchase(ctx, code); done {
			return m.scanner.Err()
		}
	}
}

// purchase runs one select-pay-dispense round. It returns true when the
// session ended and the loop should stop.
func (m *Machine) purchase(ctx context.Context, code int) bool {
	outcome, err := m.session.Select(ctx, code)

	switch vending.CodeOf(err) {
	case vending.ErrorUnknownCode:
		fmt.Fprintln(m.out, "Invalid code. Try again.")
		return false
	case vending.ErrorOutOfStock:
		if item, lookupErr := m.catalog.Lookup(code); lookupErr == nil {
			fmt.Fprintf(m.out, "%s is out of stock, come back again later!\n", item.Name)
		}

		return false
	}

	if err != nil {
		m.logger.Log(ctx, log.LevelError, "select failed", log.Int("code", code), log.Err(err))
		fmt.Fprintln(m.out, "Invalid code. Try again.")

		return false
	}

	item := outcome.Item
	fmt.Fprintf(m.out, "You selected %s. It costs AED %s.\n", item.Name, item.Price.StringFixed(2))

	if outcome.Sale != nil {
		// Carried balance covered the price outright.
		m.dispense(ctx, outcome.Sale)
		fmt.Fprintf(m.out, "Remaining balance is: AED %s\n", m.session.Balance().StringFixed(2))

		return m.askContinue(ctx)
	}

	if ended := m.collectPayment(ctx, outcome.Due); ended {
		return true
	}

	if m.session.CurrentState() != session.StateSaleComplete {
		// Commit aborted; the buyer was refunded and the session is idle again.
		return false
	}

	return m.askContinue(ctx)
}

// collectPayment prompts for money until the shortfall reaches zero. It
// returns true when input ended and the session was closed out.
func (m *Machine) collectPayment(ctx context.Context, due decimal.Decimal) bool {
	for {
		line, ok := m.prompt(fmt.Sprintf("Insert AED %s to pay: ", due.StringFixed(2)))
		if !ok {
			m.finishQuietly(ctx)
			return true
		}

		amount, err := vending.ParseAmount(line)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid input. Please insert a valid amount.")
			continue
		}

		outcome, err := m.session.InsertPayment(ctx, amount)
		if err != nil {
			if vending.IsCode(err, vending.ErrorOutOfStock) {
				fmt.Fprintf(m.out, "Sorry, that item just ran out. Returning your AED %s.\n", outcome.Refund.StringFixed(2))
				return false
			}

			fmt.Fprintln(m.out, "Invalid input. Please insert a valid amount.")

			continue
		}

		if outcome.Sale != nil {
			m.dispense(ctx, outcome.Sale)

			if outcome.Sale.Change.IsPositive() {
				fmt.Fprintf(m.out, "Here's your change: AED %s\n", outcome.Sale.Change.StringFixed(2))
			}

			return false
		}

		due = outcome.Due
		fmt.Fprintf(m.out, "Not enough money. You still need AED %s.\n", due.StringFixed(2))
	}
}

// askContinue resolves the buy-another-item prompt. It returns true when the
// session ended.
func (m *Machine) askContinue(ctx context.Context) bool {
	line, ok := m.prompt("Would you like to buy another item? (yes/no): ")
	if !ok || strings.ToLower(line) != "yes" {
		outcome, err := m.session.Continue(ctx, false)
		if err == nil && outcome.Refund.IsPositive() {
			fmt.Fprintf(m.out, "Returning your remaining balance: AED %s\n", outcome.Refund.StringFixed(2))
		}

		fmt.Fprintln(m.out, "Thank you for your purchase! Have a nice day!")
		m.announcer.Say(ctx, "Thank you for using the vending machine, see you again later!")

		return true
	}

	if _, err := m.session.Continue(ctx, true); err != nil {
		m.logger.Log(ctx, log.LevelError, "continue failed", log.Err(err))
	}

	return false
}

// adminMode authenticates and runs the restock sub-loop. Session state is
// untouched regardless of the authorization outcome.
func (m *Machine) adminMode(ctx context.Context) {
	password, ok := m.prompt("Enter the admin password: ")
	if !ok {
		return
	}

	if err := m.auth.Check(password); err != nil {
		m.logger.Log(ctx, log.LevelWarn, "admin authorization failed")
		fmt.Fprintln(m.out, "Incorrect password.")

		return
	}

	fmt.Fprintln(m.out, "** Administrator Mode **")

	for {
		m.renderMenu()

		line, ok := m.prompt("Enter the item code to restock (or 0 to exit): ")
		if !ok || line == "0" {
			fmt.Fprintln(m.out, "Exiting Administrator mode.")
			return
		}

		code, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid code. Try again.")
			continue
		}

		item, err := m.catalog.Lookup(code)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid code. Try again.")
			continue
		}

		qtyLine, ok := m.prompt(fmt.Sprintf("How many units to add for %s? ", item.Name))
		if !ok {
			fmt.Fprintln(m.out, "Exiting Administrator mode.")
			return
		}

		qty, err := strconv.Atoi(strings.TrimSpace(qtyLine))
		if err != nil {
			fmt.Fprintln(m.out, "Please enter a valid number.")
			continue
		}

		result, err := m.restocker.Apply(ctx, code, qty)
		if err != nil {
			if vending.IsCode(err, vending.ErrorInvalidQuantity) {
				fmt.Fprintln(m.out, "Quantity must be positive!")
			} else {
				fmt.Fprintln(m.out, "Invalid code. Try again.")
			}

			continue
		}

		fmt.Fprintf(m.out, "%s now has %d units in stock.\n", result.Name, result.NewStock)
	}
}

func (m *Machine) dispense(ctx context.Context, sale *session.SaleResult) {
	m.announcer.Say(ctx, "Dispensing item")
	fmt.Fprintf(m.out, "Dispensing %s... Enjoy your item!\n", sale.ItemName)
}

func (m *Machine) renderMenu() {
	fmt.Fprintln(m.out, "{***** Welcome to the Vending Machine *****}")

	w := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Code\tItem\tPrice\tCategory\tStock")

	for _, item := range m.catalog.Items() {
		fmt.Fprintf(w, "%d\t%s\tAED %s\t%s\t%d\n",
			item.Code, item.Name, item.Price.StringFixed(2), item.Category, item.Stock)
	}

	w.Flush()
	fmt.Fprintln(m.out, strings.Repeat("=", 70))
}

// prompt prints text and reads one trimmed line. ok is false when input ended.
func (m *Machine) prompt(text string) (line string, ok bool) {
	fmt.Fprint(m.out, text)

	if !m.scanner.Scan() {
		return "", false
	}

	return strings.TrimSpace(m.scanner.Text()), true
}

// finish closes out the session, refunding a positive balance, and prints the
// farewell line.
func (m *Machine) finish(ctx context.Context, farewell string) error {
	outcome, err := m.session.Continue(ctx, false)
	if err == nil && outcome.Refund.IsPositive() {
		fmt.Fprintf(m.out, "Returning your remaining balance: AED %s\n", outcome.Refund.StringFixed(2))
	}

	fmt.Fprintln(m.out, farewell)
	m.announcer.Say(ctx, "Thank you for using the vending machine, see you again later!")

	return m.scanner.Err()
}

func (m *Machine) finishQuietly(ctx context.Context) {
	if outcome, err := m.session.Continue(ctx, false); err == nil && outcome.Refund.IsPositive() {
		fmt.Fprintf(m.out, "Returning your remaining balance: AED %s\n", outcome.Refund.StringFixed(2))
	}
}
