package netting

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Consolidate collapses single-hop payment chains: the matched portion of
// A->B plus B->C is rerouted as A->C, sparing B from passing money through
// a payment it has no stake in. Every participant's net flow is unchanged.
//
// This is a best-effort pass, not a minimum-flow solver: only chains of
// length two are chased, via a fixed lexicographic scan of (payer, payee,
// intermediate) triples repeated until no routing applies. The fixed order
// makes the output deterministic and the fixpoint makes the pass
// idempotent. Skipping it entirely still leaves a valid settlement.
//
// Edges whose remaining amount falls within Tolerance are dropped. Output
// is sorted by (From, To) for stable display.
func Consolidate(transactions []Transaction) []Transaction {
	if len(transactions) == 0 {
		return nil
	}

	// Directed flow per ordered pair, duplicates merged.
	flows := make(map[string]map[string]decimal.Decimal)
	seen := make(map[string]bool)
	var participants []string
	for _, t := range transactions {
		addFlow(flows, t.From, t.To, t.Amount)
		for _, id := range []string{t.From, t.To} {
			if !seen[id] {
				seen[id] = true
				participants = append(participants, id)
			}
		}
	}
	sort.Strings(participants)

	// Each routing removes more than Tolerance of gross flow, so the loop
	// terminates.
	for changed := true; changed; {
		changed = false
		for _, payer := range participants {
			for _, payee := range participants {
				if payee == payer {
					continue
				}
				for _, mid := range participants {
					if mid == payer || mid == payee {
						continue
					}
					upper := flows[payer][mid]
					lower := flows[mid][payee]
					if upper.Cmp(Tolerance) <= 0 || lower.Cmp(Tolerance) <= 0 {
						continue
					}

					routed := decimal.Min(upper, lower)
					flows[payer][mid] = upper.Sub(routed)
					flows[mid][payee] = lower.Sub(routed)
					addFlow(flows, payer, payee, routed)
					changed = true
				}
			}
		}
	}

	var consolidated []Transaction
	for _, from := range participants {
		for _, to := range participants {
			if amount := flows[from][to]; amount.Cmp(Tolerance) > 0 {
				consolidated = append(consolidated, Transaction{From: from, To: to, Amount: amount})
			}
		}
	}
	return consolidated
}

func addFlow(flows map[string]map[string]decimal.Decimal, from, to string, amount decimal.Decimal) {
	if flows[from] == nil {
		flows[from] = make(map[string]decimal.Decimal)
	}
	flows[from][to] = flows[from][to].Add(amount)
}
