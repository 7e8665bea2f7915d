package netting

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

// netFlow returns each participant's outgoing minus incoming amount.
func netFlow(transactions []Transaction) map[string]decimal.Decimal {
	flow := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		flow[t.From] = flow[t.From].Add(t.Amount)
		flow[t.To] = flow[t.To].Sub(t.Amount)
	}
	return flow
}

func TestConsolidate(t *testing.T) {
	tests := []struct {
		name         string
		transactions []Transaction
		want         []Transaction
	}{
		{
			name: "two-hop chain collapses",
			transactions: []Transaction{
				{From: "alice", To: "bob", Amount: amt("15")},
				{From: "bob", To: "carol", Amount: amt("15")},
			},
			want: []Transaction{{From: "alice", To: "carol", Amount: amt("15")}},
		},
		{
			name: "partial chain routes the common amount",
			transactions: []Transaction{
				{From: "alice", To: "bob", Amount: amt("20")},
				{From: "bob", To: "carol", Amount: amt("15")},
			},
			want: []Transaction{
				{From: "alice", To: "bob", Amount: amt("5")},
				{From: "alice", To: "carol", Amount: amt("15")},
			},
		},
		{
			name: "routed amount merges onto existing direct edge",
			transactions: []Transaction{
				{From: "alice", To: "carol", Amount: amt("10")},
				{From: "alice", To: "bob", Amount: amt("5")},
				{From: "bob", To: "carol", Amount: amt("5")},
			},
			want: []Transaction{{From: "alice", To: "carol", Amount: amt("15")}},
		},
		{
			name: "fan-in has no chains to collapse",
			transactions: []Transaction{
				{From: "alice", To: "carol", Amount: amt("20")},
				{From: "bob", To: "carol", Amount: amt("20")},
			},
			want: []Transaction{
				{From: "alice", To: "carol", Amount: amt("20")},
				{From: "bob", To: "carol", Amount: amt("20")},
			},
		},
		{
			name: "duplicate edges merge",
			transactions: []Transaction{
				{From: "alice", To: "bob", Amount: amt("10")},
				{From: "alice", To: "bob", Amount: amt("2.50")},
			},
			want: []Transaction{{From: "alice", To: "bob", Amount: amt("12.5")}},
		},
		{
			name:         "empty input",
			transactions: nil,
			want:         nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Consolidate(tt.transactions)

			if len(got) != len(tt.want) {
				t.Fatalf("Consolidate() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].From != tt.want[i].From || got[i].To != tt.want[i].To ||
					!got[i].Amount.Equal(tt.want[i].Amount) {
					t.Errorf("Consolidate()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}

			// Routing must never change what anyone pays or receives net.
			before, after := netFlow(tt.transactions), netFlow(got)
			for id, flow := range before {
				if !after[id].Sub(flow).Abs().LessThanOrEqual(Tolerance) {
					t.Errorf("net flow of %s changed from %s to %s", id, flow, after[id])
				}
			}
		})
	}
}

func TestConsolidate_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	participants := []string{"alice", "bob", "carol", "dave", "erin"}

	for trial := 0; trial < 200; trial++ {
		transactions := make([]Transaction, 0)
		for _, o := range randomObligations(rng, participants, 1+rng.Intn(12)) {
			transactions = append(transactions, Transaction{From: o.Debtor, To: o.Creditor, Amount: o.Amount})
		}

		once := Consolidate(transactions)
		twice := Consolidate(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("trial %d: Consolidate is not idempotent:\nonce:  %v\ntwice: %v", trial, once, twice)
		}

		before, after := netFlow(transactions), netFlow(once)
		for id, flow := range before {
			if !after[id].Sub(flow).Abs().LessThanOrEqual(Tolerance) {
				t.Fatalf("trial %d: net flow of %s changed from %s to %s", trial, id, flow, after[id])
			}
		}
		for _, txn := range once {
			if txn.From == txn.To {
				t.Fatalf("trial %d: self-payment %v", trial, txn)
			}
			if txn.Amount.Sign() <= 0 {
				t.Fatalf("trial %d: non-positive transaction %v", trial, txn)
			}
		}
	}
}
