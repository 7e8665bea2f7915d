package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyup/tallyup/internal/models"
)

// CreateObligations persists a batch of obligations in one transaction.
// The whole batch is rolled back if any insert fails.
func (s *SQLiteStore) CreateObligations(ctx context.Context, obligations []*models.Obligation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, o := range obligations {
		if o.ID == "" {
			o.ID = uuid.New().String()
		}
		if o.CreatedAt == 0 {
			o.CreatedAt = time.Now().Unix()
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO obligations (id, group_id, debtor_id, creditor_id, amount, currency, created_at, note)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.GroupID, o.DebtorID, o.CreditorID, o.Amount.String(), o.Currency, o.CreatedAt, o.Note,
		)
		if err != nil {
			return fmt.Errorf("failed to insert obligation: %w", err)
		}
	}

	return tx.Commit()
}

// ListGroupObligations retrieves all obligations for a group, oldest first.
// Rows sharing a created_at second keep their insertion order (rowid is
// monotonic), so a batch reads back in the order it was written.
func (s *SQLiteStore) ListGroupObligations(ctx context.Context, groupID string) ([]*models.Obligation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, debtor_id, creditor_id, amount, currency, created_at, note
		 FROM obligations WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations: %w", err)
	}
	defer rows.Close()

	return scanObligations(rows)
}

// ListUserObligations retrieves all obligations in which the user is debtor
// or creditor, oldest first.
func (s *SQLiteStore) ListUserObligations(ctx context.Context, userID string) ([]*models.Obligation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, debtor_id, creditor_id, amount, currency, created_at, note
		 FROM obligations WHERE debtor_id = ? OR creditor_id = ? ORDER BY created_at, rowid`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations: %w", err)
	}
	defer rows.Close()

	return scanObligations(rows)
}

// DeleteGroupObligations removes all obligations recorded for a group.
func (s *SQLiteStore) DeleteGroupObligations(ctx context.Context, groupID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM obligations WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("failed to delete obligations: %w", err)
	}
	return nil
}

func scanObligations(rows *sql.Rows) ([]*models.Obligation, error) {
	var obligations []*models.Obligation
	for rows.Next() {
		var o models.Obligation
		var amount string
		if err := rows.Scan(&o.ID, &o.GroupID, &o.DebtorID, &o.CreditorID, &amount, &o.Currency, &o.CreatedAt, &o.Note); err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q for obligation %s: %w", amount, o.ID, err)
		}
		o.Amount = parsed

		obligations = append(obligations, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate obligations: %w", err)
	}
	return obligations, nil
}
