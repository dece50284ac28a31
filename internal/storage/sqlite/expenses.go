package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/storage"
)

const expenseColumns = `e.id, e.group_id, e.name, e.amount_minor, e.paid_by_user_id, e.creator_user_id, e.cleared, e.created_at`

// BeginTx starts an IMMEDIATE transaction.
func (s *SQLiteStore) BeginTx(ctx context.Context) (storage.Txn, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &txn{tx: tx}, nil
}

// ListExpensesForUser reads every expense the user paid for or has a split in.
// A single statement is used so the result is one snapshot.
func (s *SQLiteStore) ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+`, s.id, s.user_id, s.amount_owed_minor, s.cleared
		 FROM expenses e
		 JOIN splits s ON s.expense_id = e.id
		 WHERE e.paid_by_user_id = ?
		    OR e.id IN (SELECT expense_id FROM splits WHERE user_id = ?)
		 ORDER BY e.created_at DESC, e.id, s.id`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for user: %w", err)
	}
	defer rows.Close()
	return scanExpensesWithSplits(rows)
}

// ListExpensesByGroup reads a group's expenses with splits, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+`, s.id, s.user_id, s.amount_owed_minor, s.cleared
		 FROM expenses e
		 JOIN splits s ON s.expense_id = e.id
		 WHERE e.group_id = ?
		 ORDER BY e.created_at DESC, e.id, s.id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()
	return scanExpensesWithSplits(rows)
}

// scanExpensesWithSplits folds joined expense/split rows into expenses,
// keeping the row order of the expenses.
func scanExpensesWithSplits(rows *sql.Rows) ([]*models.Expense, error) {
	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		var (
			e         models.Expense
			createdAt int64
			split     models.Split
		)
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Name, &e.Amount, &e.PaidByUserID, &e.CreatorUserID, &e.Cleared, &createdAt,
			&split.ID, &split.UserID, &split.AmountOwed, &split.Cleared); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense, ok := byID[e.ID]
		if !ok {
			e.CreatedAt = time.UnixMicro(createdAt).UTC()
			expense = &e
			byID[e.ID] = expense
			expenses = append(expenses, expense)
		}
		split.ExpenseID = expense.ID
		split.GroupID = expense.GroupID
		expense.Splits = append(expense.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// txn implements storage.Txn over a *sql.Tx.
type txn struct {
	tx *sql.Tx
}

func (t *txn) InsertExpense(ctx context.Context, e *models.Expense) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, name, amount_minor, paid_by_user_id, creator_user_id, cleared, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GroupID, e.Name, e.Amount, e.PaidByUserID, e.CreatorUserID, boolToInt(e.Cleared), e.CreatedAt.UnixMicro(),
	)
	if isConstraint(err) {
		return fmt.Errorf("failed to insert expense: %w", storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func (t *txn) InsertSplits(ctx context.Context, splits []models.Split) error {
	stmt, err := t.tx.PrepareContext(ctx,
		`INSERT INTO splits (id, expense_id, group_id, user_id, amount_owed_minor, cleared)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare split insert: %w", err)
	}
	defer stmt.Close()

	for _, sp := range splits {
		_, err := stmt.ExecContext(ctx, sp.ID, sp.ExpenseID, sp.GroupID, sp.UserID, sp.AmountOwed, boolToInt(sp.Cleared))
		if isConstraint(err) {
			return fmt.Errorf("failed to insert split for %s: %w", sp.UserID, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert split for %s: %w", sp.UserID, err)
		}
	}
	return nil
}

// GetExpense needs no explicit lock: the IMMEDIATE transaction already
// holds the write lock.
func (t *txn) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	var (
		e         models.Expense
		createdAt int64
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses e WHERE e.id = ?`,
		expenseID,
	).Scan(&e.ID, &e.GroupID, &e.Name, &e.Amount, &e.PaidByUserID, &e.CreatorUserID, &e.Cleared, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	e.CreatedAt = time.UnixMicro(createdAt).UTC()
	return &e, nil
}

func (t *txn) GetSplit(ctx context.Context, splitID string) (*models.Split, error) {
	var sp models.Split
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, expense_id, group_id, user_id, amount_owed_minor, cleared FROM splits WHERE id = ?`,
		splitID,
	).Scan(&sp.ID, &sp.ExpenseID, &sp.GroupID, &sp.UserID, &sp.AmountOwed, &sp.Cleared)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return &sp, nil
}

func (t *txn) ListSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	return t.querySplits(ctx,
		`SELECT id, expense_id, group_id, user_id, amount_owed_minor, cleared
		 FROM splits WHERE expense_id = ? ORDER BY id`,
		expenseID,
	)
}

func (t *txn) ListUnclearedSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	return t.querySplits(ctx,
		`SELECT id, expense_id, group_id, user_id, amount_owed_minor, cleared
		 FROM splits WHERE expense_id = ? AND cleared = 0 ORDER BY id`,
		expenseID,
	)
}

func (t *txn) querySplits(ctx context.Context, query string, args ...any) ([]models.Split, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var sp models.Split
		if err := rows.Scan(&sp.ID, &sp.ExpenseID, &sp.GroupID, &sp.UserID, &sp.AmountOwed, &sp.Cleared); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

func (t *txn) UpdateSplitCleared(ctx context.Context, splitID string) error {
	return t.execOne(ctx, "split "+splitID, `UPDATE splits SET cleared = 1 WHERE id = ?`, splitID)
}

func (t *txn) UpdateExpenseCleared(ctx context.Context, expenseID string) error {
	return t.execOne(ctx, "expense "+expenseID, `UPDATE expenses SET cleared = 1 WHERE id = ?`, expenseID)
}

// DeleteExpenseCascade relies on ON DELETE CASCADE for the splits.
func (t *txn) DeleteExpenseCascade(ctx context.Context, expenseID string) error {
	return t.execOne(ctx, "expense "+expenseID, `DELETE FROM expenses WHERE id = ?`, expenseID)
}

// execOne runs a statement that must touch exactly one row.
func (t *txn) execOne(ctx context.Context, what, query string, args ...any) error {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}

func (t *txn) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *txn) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}
