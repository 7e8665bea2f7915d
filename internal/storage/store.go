// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/tallyup/tallyup/internal/models"
)

// Store defines the interface for obligation storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer. The settlement engine itself
// never touches a Store; the service layer reads obligations out and feeds
// them in.
type Store interface {
	// CreateObligations persists a batch of obligations atomically.
	// Missing IDs and timestamps are populated by the store.
	CreateObligations(ctx context.Context, obligations []*models.Obligation) error

	// ListGroupObligations retrieves all obligations recorded for a group.
	ListGroupObligations(ctx context.Context, groupID string) ([]*models.Obligation, error)

	// ListUserObligations retrieves all obligations in which the user is
	// either debtor or creditor.
	ListUserObligations(ctx context.Context, userID string) ([]*models.Obligation, error)

	// DeleteGroupObligations removes all obligations for a group, e.g.
	// after the group settles up for real.
	DeleteGroupObligations(ctx context.Context, groupID string) error

	// Close releases any resources held by the store.
	Close() error
}
