package models

import (
	"time"

	"github.com/namansharma3007/Equi-share/internal/money"
)

// Expense is a single shared cost recorded against a group.
// Its Amount equals the sum of its splits' AmountOwed for its whole life;
// splits are never added or resized after creation.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the owning group. Immutable.
	GroupID string

	// Name is the human-readable description (e.g., "Groceries").
	Name string

	// Amount is the total value of the expense. Always positive.
	Amount money.Money

	// PaidByUserID is the member who fronted the money.
	PaidByUserID string

	// CreatorUserID is the caller who recorded the expense.
	// It need not equal the payer.
	CreatorUserID string

	// Cleared is true iff every split of the expense is cleared.
	Cleared bool

	// CreatedAt is when the expense was recorded. Immutable.
	CreatedAt time.Time

	// Splits are populated by reads that load the full expense.
	Splits []Split
}

// Split is one member's share of an Expense.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// ExpenseID is the owning expense. Immutable.
	ExpenseID string

	// GroupID is a denormalized copy of the expense's group. Immutable.
	GroupID string

	// UserID is the member responsible for this share.
	UserID string

	// AmountOwed is this member's share. Never negative.
	AmountOwed money.Money

	// Cleared records settlement. A split owed by the payer starts cleared.
	Cleared bool
}

// HasParticipant reports whether userID paid for or owes a share of the expense.
func (e *Expense) HasParticipant(userID string) bool {
	if e.PaidByUserID == userID {
		return true
	}
	for _, s := range e.Splits {
		if s.UserID == userID {
			return true
		}
	}
	return false
}
