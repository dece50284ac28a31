package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/storage"
)

// ClearResult is the outcome of clearing one split.
type ClearResult struct {
	Split   models.Split
	Expense models.Expense
	// ExpenseCleared is true only for the call that cleared the last
	// outstanding split.
	ExpenseCleared bool
}

// SplitLedger is the transactional write path for expenses and their
// splits. Each operation runs in exactly one store transaction; the store's
// isolation is the only mutual exclusion.
type SplitLedger struct {
	repo  storage.ExpenseRepository
	now   func() time.Time
	newID func() string
}

// NewSplitLedger builds a ledger over repo. Nil now/newID default to
// time.Now and random UUIDs.
func NewSplitLedger(repo storage.ExpenseRepository, now func() time.Time, newID func() string) *SplitLedger {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	return &SplitLedger{repo: repo, now: now, newID: newID}
}

// Create writes the expense and all of its splits atomically. A payer's own
// split starts cleared, and so does the expense when that is its only split.
func (l *SplitLedger) Create(ctx context.Context, ne NormalizedExpense) (*models.Expense, error) {
	expense := &models.Expense{
		ID:            l.newID(),
		GroupID:       ne.GroupID,
		Name:          ne.Name,
		Amount:        ne.Amount,
		PaidByUserID:  ne.PaidByUserID,
		CreatorUserID: ne.CreatorUserID,
		Cleared:       len(ne.Splits) == 1 && ne.Splits[0].UserID == ne.PaidByUserID,
		CreatedAt:     l.now().UTC(),
	}
	splits := make([]models.Split, len(ne.Splits))
	for i, s := range ne.Splits {
		splits[i] = models.Split{
			ID:         l.newID(),
			ExpenseID:  expense.ID,
			GroupID:    ne.GroupID,
			UserID:     s.UserID,
			AmountOwed: s.AmountOwed,
			Cleared:    s.UserID == ne.PaidByUserID,
		}
	}

	err := l.inTx(ctx, func(tx storage.Txn) error {
		if err := tx.InsertExpense(ctx, expense); err != nil {
			return err
		}
		return tx.InsertSplits(ctx, splits)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	expense.Splits = splits
	return expense, nil
}

// Clear marks one split as settled. Only the payer may clear. Clearing an
// already-cleared split is a no-op that reports the current state. When the
// last outstanding split is cleared the expense is cleared in the same
// transaction.
func (l *SplitLedger) Clear(ctx context.Context, callerID, expenseID, splitID string) (ClearResult, error) {
	var res ClearResult
	err := l.inTx(ctx, func(tx storage.Txn) error {
		// locks the expense until commit
		expense, err := tx.GetExpense(ctx, expenseID)
		if err != nil {
			return notFoundAs(err, ErrExpenseNotFound, expenseID)
		}
		if expense.PaidByUserID != callerID {
			return detail(ErrNotPayer, "expense %s", expenseID)
		}

		split, err := tx.GetSplit(ctx, splitID)
		if err != nil {
			return notFoundAs(err, ErrSplitNotFound, splitID)
		}
		if split.ExpenseID != expenseID {
			return detail(ErrSplitNotFound, "%s on expense %s", splitID, expenseID)
		}

		if !split.Cleared {
			if err := tx.UpdateSplitCleared(ctx, splitID); err != nil {
				return err
			}
			split.Cleared = true

			remaining, err := tx.ListUnclearedSplits(ctx, expenseID)
			if err != nil {
				return err
			}
			if len(remaining) == 0 && !expense.Cleared {
				if err := tx.UpdateExpenseCleared(ctx, expenseID); err != nil {
					return err
				}
				expense.Cleared = true
				res.ExpenseCleared = true
			}
		}

		all, err := tx.ListSplits(ctx, expenseID)
		if err != nil {
			return err
		}
		expense.Splits = all
		res.Split = *split
		res.Expense = *expense
		return nil
	})
	if err != nil {
		return ClearResult{}, err
	}
	return res, nil
}

// Delete removes an expense and all of its splits. Only the payer or the
// creator may delete. The removed expense is returned.
func (l *SplitLedger) Delete(ctx context.Context, callerID, expenseID string) (*models.Expense, error) {
	var deleted *models.Expense
	err := l.inTx(ctx, func(tx storage.Txn) error {
		expense, err := tx.GetExpense(ctx, expenseID)
		if err != nil {
			return notFoundAs(err, ErrExpenseNotFound, expenseID)
		}
		if expense.PaidByUserID != callerID && expense.CreatorUserID != callerID {
			return detail(ErrNotPayerOrOwner, "expense %s", expenseID)
		}
		splits, err := tx.ListSplits(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := tx.DeleteExpenseCascade(ctx, expenseID); err != nil {
			return err
		}
		expense.Splits = splits
		deleted = expense
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Get loads an expense with its splits in a short transaction.
func (l *SplitLedger) Get(ctx context.Context, expenseID string) (*models.Expense, error) {
	var found *models.Expense
	err := l.inTx(ctx, func(tx storage.Txn) error {
		expense, err := tx.GetExpense(ctx, expenseID)
		if err != nil {
			return notFoundAs(err, ErrExpenseNotFound, expenseID)
		}
		if expense.Splits, err = tx.ListSplits(ctx, expenseID); err != nil {
			return err
		}
		found = expense
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// inTx runs fn in one transaction and commits if fn succeeds. Errors that
// already carry a ledger kind pass through; anything else means the store
// failed and is reported as ErrTransactionAborted.
func (l *SplitLedger) inTx(ctx context.Context, fn func(storage.Txn) error) error {
	tx, err := l.repo.BeginTx(ctx)
	if err != nil {
		return aborted("begin", err)
	}
	// Rollback must run even when ctx is already cancelled.
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(tx); err != nil {
		if KindOf(err) != KindUnknown {
			return err
		}
		return aborted("write", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return aborted("commit", err)
	}
	return nil
}

// notFoundAs translates a store miss into the given ledger error and leaves
// other failures for inTx to classify.
func notFoundAs(err error, sentinel error, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return detail(sentinel, "%s", id)
	}
	return err
}
