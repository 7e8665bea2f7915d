package models

import "github.com/shopspring/decimal"

// Obligation is one recorded debt fact between two participants: the debtor
// owes the creditor the amount. Obligations accumulate from shared-expense
// allocations upstream; the engine only reads them.
type Obligation struct {
	// ID is the unique identifier for the obligation (UUID format).
	// Assigned by the store on insert.
	ID string

	// GroupID is the group this obligation belongs to.
	GroupID string

	// DebtorID is the participant who owes.
	DebtorID string

	// CreditorID is the participant who is owed.
	CreditorID string

	// Amount is the debt, strictly positive.
	Amount decimal.Decimal

	// Currency is the ISO code of the amount. Settlement runs once per
	// currency; currencies are never mixed inside one engine call.
	Currency string

	// CreatedAt is the Unix timestamp when the obligation was recorded.
	CreatedAt int64

	// Note is an optional description (e.g. the expense it came from).
	Note string
}
