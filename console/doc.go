// Package console is the interactive driver: it renders the menu, parses raw
// input lines, routes the reserved admin code, and relays structured results
// from the core back to the buyer.
//
// The driver holds no purchase state of its own. Every decision about
// balances, stock, and change lives behind the session, catalog, and admin
// packages; the console only prompts and prints.
package console
