package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tallyup/tallyup/internal/models"
)

func TestSQLiteStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "tallyup-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("CreateObligations generates IDs and timestamps", func(t *testing.T) {
		obligations := []*models.Obligation{
			{
				GroupID:    "trip",
				DebtorID:   "alice",
				CreditorID: "bob",
				Amount:     decimal.RequireFromString("30"),
				Currency:   "USD",
				Note:       "dinner",
			},
		}

		if err := store.CreateObligations(ctx, obligations); err != nil {
			t.Fatalf("CreateObligations failed: %v", err)
		}

		if obligations[0].ID == "" {
			t.Error("Expected obligation ID to be generated")
		}
		if obligations[0].CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("ListGroupObligations round-trips decimal amounts", func(t *testing.T) {
		obligations := []*models.Obligation{
			{GroupID: "flat", DebtorID: "carol", CreditorID: "dave", Amount: decimal.RequireFromString("12.34"), Currency: "EUR"},
			{GroupID: "flat", DebtorID: "dave", CreditorID: "erin", Amount: decimal.RequireFromString("0.01"), Currency: "EUR"},
		}
		if err := store.CreateObligations(ctx, obligations); err != nil {
			t.Fatalf("CreateObligations failed: %v", err)
		}

		got, err := store.ListGroupObligations(ctx, "flat")
		if err != nil {
			t.Fatalf("ListGroupObligations failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 obligations, got %d", len(got))
		}
		if !got[0].Amount.Equal(decimal.RequireFromString("12.34")) {
			t.Errorf("Amount = %s, want 12.34", got[0].Amount)
		}
		if got[0].DebtorID != "carol" || got[0].CreditorID != "dave" {
			t.Errorf("Unexpected parties: %s -> %s", got[0].DebtorID, got[0].CreditorID)
		}
	})

	t.Run("ListGroupObligations keeps insertion order within one second", func(t *testing.T) {
		// A batch insert lands on one created_at second; order must still
		// be the insertion order, not the random UUID order.
		debtors := []string{"d0", "d1", "d2", "d3", "d4", "d5", "d6", "d7"}
		obligations := make([]*models.Obligation, 0, len(debtors))
		for _, debtor := range debtors {
			obligations = append(obligations, &models.Obligation{
				GroupID:    "batch",
				DebtorID:   debtor,
				CreditorID: "payee",
				Amount:     decimal.RequireFromString("1"),
				Currency:   "USD",
			})
		}
		if err := store.CreateObligations(ctx, obligations); err != nil {
			t.Fatalf("CreateObligations failed: %v", err)
		}

		got, err := store.ListGroupObligations(ctx, "batch")
		if err != nil {
			t.Fatalf("ListGroupObligations failed: %v", err)
		}
		if len(got) != len(debtors) {
			t.Fatalf("Expected %d obligations, got %d", len(debtors), len(got))
		}
		for i, o := range got {
			if o.DebtorID != debtors[i] {
				t.Errorf("got[%d].DebtorID = %s, want %s", i, o.DebtorID, debtors[i])
			}
		}
	})

	t.Run("ListUserObligations matches either side", func(t *testing.T) {
		obligations := []*models.Obligation{
			{GroupID: "ski", DebtorID: "frank", CreditorID: "grace", Amount: decimal.RequireFromString("5"), Currency: "USD"},
			{GroupID: "ski", DebtorID: "grace", CreditorID: "heidi", Amount: decimal.RequireFromString("7"), Currency: "USD"},
			{GroupID: "ski", DebtorID: "frank", CreditorID: "heidi", Amount: decimal.RequireFromString("9"), Currency: "USD"},
		}
		if err := store.CreateObligations(ctx, obligations); err != nil {
			t.Fatalf("CreateObligations failed: %v", err)
		}

		got, err := store.ListUserObligations(ctx, "grace")
		if err != nil {
			t.Fatalf("ListUserObligations failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 obligations involving grace, got %d", len(got))
		}
	})

	t.Run("DeleteGroupObligations clears only the group", func(t *testing.T) {
		obligations := []*models.Obligation{
			{GroupID: "old", DebtorID: "alice", CreditorID: "bob", Amount: decimal.RequireFromString("1"), Currency: "USD"},
			{GroupID: "kept", DebtorID: "alice", CreditorID: "bob", Amount: decimal.RequireFromString("2"), Currency: "USD"},
		}
		if err := store.CreateObligations(ctx, obligations); err != nil {
			t.Fatalf("CreateObligations failed: %v", err)
		}

		if err := store.DeleteGroupObligations(ctx, "old"); err != nil {
			t.Fatalf("DeleteGroupObligations failed: %v", err)
		}

		gone, err := store.ListGroupObligations(ctx, "old")
		if err != nil {
			t.Fatalf("ListGroupObligations failed: %v", err)
		}
		if len(gone) != 0 {
			t.Errorf("Expected group 'old' to be empty, got %d obligations", len(gone))
		}

		kept, err := store.ListGroupObligations(ctx, "kept")
		if err != nil {
			t.Fatalf("ListGroupObligations failed: %v", err)
		}
		if len(kept) != 1 {
			t.Errorf("Expected group 'kept' to survive, got %d obligations", len(kept))
		}
	})
}
