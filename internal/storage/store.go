// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/namansharma3007/Equi-share/internal/models"
)

// Common sentinel errors returned by every backend.
var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict is returned when a write violates a uniqueness rule.
	ErrConflict = errors.New("storage: conflict")
)

// ExpenseRepository is the port the ledger requires from a persistent store.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the ledger.
type ExpenseRepository interface {
	// BeginTx starts a transaction. All ledger writes go through a Txn.
	BeginTx(ctx context.Context) (Txn, error)

	// ListExpensesForUser returns, with splits populated, every expense the
	// user paid for or owes a share of. The result is one consistent snapshot.
	ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses with splits, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
}

// Txn is one atomic unit of work. Nothing written through a Txn is visible
// to other callers until Commit; Rollback discards all of it.
// Rollback after Commit is a no-op so callers can always defer it.
type Txn interface {
	InsertExpense(ctx context.Context, expense *models.Expense) error
	InsertSplits(ctx context.Context, splits []models.Split) error

	// GetExpense loads an expense without splits and locks it for the rest
	// of the transaction, so read-modify-write sequences on the same
	// expense are serialized.
	// Returns ErrNotFound if it does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// GetSplit returns ErrNotFound if the split does not exist.
	GetSplit(ctx context.Context, splitID string) (*models.Split, error)

	ListSplits(ctx context.Context, expenseID string) ([]models.Split, error)
	ListUnclearedSplits(ctx context.Context, expenseID string) ([]models.Split, error)

	UpdateSplitCleared(ctx context.Context, splitID string) error
	UpdateExpenseCleared(ctx context.Context, expenseID string) error

	// DeleteExpenseCascade removes the expense and all its splits.
	DeleteExpenseCascade(ctx context.Context, expenseID string) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// GroupDirectory answers read-only questions about groups.
type GroupDirectory interface {
	GroupExists(ctx context.Context, groupID string) (bool, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	// GroupAdmin returns ErrNotFound if the group does not exist.
	GroupAdmin(ctx context.Context, groupID string) (string, error)
}

// GroupStore manages the groups the directory reads from.
type GroupStore interface {
	GroupDirectory

	// CreateGroup persists a group and its initial members.
	// The group.ID and CreatedAt fields are populated by the store if unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// AddGroupMember returns ErrConflict if the user is already a member.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	ListGroupMembers(ctx context.Context, groupID string) ([]string, error)
}

// UserStorage defines user persistence. GetUserByEmail and GetUserByID
// return (nil, nil) when no user matches.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store is everything a backend provides to the server.
type Store interface {
	ExpenseRepository
	GroupStore
	UserStorage

	// Close releases any resources held by the store.
	Close() error
}
