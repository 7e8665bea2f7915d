package models

import "github.com/shopspring/decimal"

// Settlement is one computed payment instruction that moves the group
// toward all-zero balances.
type Settlement struct {
	// FromUserID is the participant who pays (debtor settling up).
	FromUserID string `json:"from_id"`

	// ToUserID is the participant who receives (creditor being paid).
	ToUserID string `json:"to_id"`

	// Amount is the payment amount, strictly positive.
	Amount decimal.Decimal `json:"amount"`

	// Currency is the ISO code of the amount.
	Currency string `json:"currency"`
}
