// Package netting computes the smallest set of payments that settles a set of
// pairwise debts. Raw obligations are netted into one signed balance per
// participant, balances are matched greedily into payer->payee transactions,
// and an optional consolidation pass collapses payment chains through
// uninvolved intermediates.
//
// The package is pure: no state survives a call, and every function is safe
// to invoke concurrently with disjoint inputs.
package netting

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Tolerance is the smallest financially significant amount, one minor
// currency unit by default. Magnitudes at or below it are treated as settled
// and absorb rounding noise from upstream share calculations. Tune it for
// currencies with a different minor-unit granularity (e.g. zero decimal
// places).
var Tolerance = decimal.New(1, -2) // 0.01

var (
	// ErrInvalidObligation reports an obligation with a non-positive amount
	// or with debtor == creditor. The whole batch is rejected so the caller
	// can fix the input and retry.
	ErrInvalidObligation = errors.New("invalid obligation")

	// ErrUnbalancedLedger reports a balance set that does not sum to zero
	// within Tolerance. This signals an upstream accounting bug (a share
	// computation that does not conserve the expense total), not a bad
	// record.
	ErrUnbalancedLedger = errors.New("unbalanced ledger")
)

// Obligation is one directed debt fact: Debtor owes Creditor Amount.
// Obligations are immutable inputs; multiple obligations between the same
// pair are legal and are summed during aggregation.
type Obligation struct {
	// Debtor is the participant who owes.
	Debtor string

	// Creditor is the participant who is owed.
	Creditor string

	// Amount is the debt, strictly positive. All obligations passed into
	// one call must share one currency; the caller partitions by currency.
	Amount decimal.Decimal
}

// NetBalance maps a participant to their signed net position.
// Positive means the participant is a net debtor (owes money overall),
// negative means net creditor (is owed money overall). A valid NetBalance
// sums to zero: money owed equals money receivable.
type NetBalance map[string]decimal.Decimal

// Transaction is one settlement instruction: From pays To Amount.
// Applying it moves From's balance down and To's balance up by Amount,
// both toward zero.
type Transaction struct {
	From   string
	To     string
	Amount decimal.Decimal
}
