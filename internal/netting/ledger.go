package netting

import "fmt"

// Aggregate nets a raw list of obligations into one signed balance per
// participant: each obligation raises the debtor's balance and lowers the
// creditor's by its amount. Participants whose aggregated position is within
// Tolerance of zero are omitted from the result.
//
// Any obligation with a non-positive amount or with debtor == creditor fails
// the whole batch with ErrInvalidObligation; no partial aggregation is
// returned.
func Aggregate(obligations []Obligation) (NetBalance, error) {
	balances := make(NetBalance)

	for i, o := range obligations {
		if o.Amount.Sign() <= 0 {
			return nil, fmt.Errorf("%w: obligation %d: amount %s must be positive",
				ErrInvalidObligation, i, o.Amount)
		}
		if o.Debtor == o.Creditor {
			return nil, fmt.Errorf("%w: obligation %d: participant %q cannot owe themselves",
				ErrInvalidObligation, i, o.Debtor)
		}

		balances[o.Debtor] = balances[o.Debtor].Add(o.Amount)
		balances[o.Creditor] = balances[o.Creditor].Sub(o.Amount)
	}

	// Drop settled participants (e.g. pass-through intermediates whose debts
	// and credits cancel) and sub-tolerance dust.
	for id, balance := range balances {
		if balance.Abs().Cmp(Tolerance) <= 0 {
			delete(balances, id)
		}
	}

	return balances, nil
}
