package netting

// Settle is the public entry point: it nets the obligations, minimizes the
// resulting balances into transactions, and consolidates payment chains.
// Errors from aggregation (ErrInvalidObligation) and minimization
// (ErrUnbalancedLedger) propagate unchanged.
func Settle(obligations []Obligation) ([]Transaction, error) {
	balances, err := Aggregate(obligations)
	if err != nil {
		return nil, err
	}

	transactions, err := Minimize(balances)
	if err != nil {
		return nil, err
	}

	return Consolidate(transactions), nil
}
