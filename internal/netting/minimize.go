package netting

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// position is one side of the matching: a participant and the positive
// amount they still owe (debtor) or are still owed (creditor).
type position struct {
	id     string
	amount decimal.Decimal
}

// Minimize turns net balances into an ordered list of payer->payee
// transactions that drives every balance to zero.
//
// Participants are split into debtors (balance above Tolerance) and
// creditors (balance below -Tolerance), both sorted largest-first with ties
// broken by participant ID so the output is deterministic. The greedy match
// repeatedly pairs the largest remaining debtor with the largest remaining
// creditor for min(owed, receivable), advancing past whichever side reached
// zero. Every step fully settles at least one participant, so at most N-1
// transactions are emitted for N participants with nonzero balance. That
// bound is worst-case optimal, though the greedy pairing is not proven to
// reach the global minimum for every balance configuration.
//
// Balances that do not sum to zero within Tolerance are rejected with
// ErrUnbalancedLedger: the caller handed over an inconsistent ledger.
func Minimize(balances NetBalance) ([]Transaction, error) {
	sum := decimal.Zero
	for _, balance := range balances {
		sum = sum.Add(balance)
	}
	if sum.Abs().Cmp(Tolerance) > 0 {
		return nil, fmt.Errorf("%w: balances sum to %s, want 0", ErrUnbalancedLedger, sum)
	}

	var debtors, creditors []position
	for id, balance := range balances {
		switch {
		case balance.Cmp(Tolerance) > 0:
			debtors = append(debtors, position{id: id, amount: balance})
		case balance.Neg().Cmp(Tolerance) > 0:
			creditors = append(creditors, position{id: id, amount: balance.Neg()})
		}
	}
	sortLargestFirst(debtors)
	sortLargestFirst(creditors)

	var transactions []Transaction
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)

		// Sub-tolerance candidates are cancelled remainders, not payments.
		if amount.Cmp(Tolerance) > 0 {
			transactions = append(transactions, Transaction{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if debtors[i].amount.Cmp(Tolerance) <= 0 {
			i++
		}
		if creditors[j].amount.Cmp(Tolerance) <= 0 {
			j++
		}
	}

	return transactions, nil
}

func sortLargestFirst(positions []position) {
	sort.Slice(positions, func(a, b int) bool {
		if c := positions[a].amount.Cmp(positions[b].amount); c != 0 {
			return c > 0
		}
		return positions[a].id < positions[b].id
	})
}
