package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/money"
	"github.com/namansharma3007/Equi-share/internal/storage"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	if err := s.CreateGroup(ctx, &models.Group{ID: "g1", Name: "Trip", AdminUserID: "alice", Members: []string{"alice", "bob"}}); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
}

func newExpense() (*models.Expense, []models.Split) {
	e := &models.Expense{ID: "e1", GroupID: "g1", Name: "Fuel", Amount: money.MustParse("40"),
		PaidByUserID: "alice", CreatorUserID: "alice", CreatedAt: time.Now()}
	splits := []models.Split{
		{ID: "s1", ExpenseID: "e1", GroupID: "g1", UserID: "alice", AmountOwed: money.MustParse("20"), Cleared: true},
		{ID: "s2", ExpenseID: "e1", GroupID: "g1", UserID: "bob", AmountOwed: money.MustParse("20")},
	}
	return e, splits
}

func TestUncommittedWritesAreInvisible(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	e, splits := newExpense()
	if err := tx.InsertExpense(ctx, e); err != nil {
		t.Fatalf("InsertExpense failed: %v", err)
	}
	if err := tx.InsertSplits(ctx, splits); err != nil {
		t.Fatalf("InsertSplits failed: %v", err)
	}

	if got, _ := s.ListExpensesByGroup(ctx, "g1"); len(got) != 0 {
		t.Errorf("Expected no committed expenses yet, got %d", len(got))
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Errorf("Rollback after Commit should be a no-op, got %v", err)
	}

	got, err := s.ListExpensesForUser(ctx, "bob")
	if err != nil {
		t.Fatalf("ListExpensesForUser failed: %v", err)
	}
	if len(got) != 1 || len(got[0].Splits) != 2 {
		t.Fatalf("Expected 1 expense with 2 splits, got %+v", got)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	tx, _ := s.BeginTx(ctx)
	e, splits := newExpense()
	_ = tx.InsertExpense(ctx, e)
	dup := append(splits, models.Split{ID: "s3", ExpenseID: "e1", GroupID: "g1", UserID: "bob", AmountOwed: money.FromMinor(1)})
	if err := tx.InsertSplits(ctx, dup); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx after rollback failed: %v", err)
	}
	defer tx.Rollback(ctx)
	if _, err := tx.GetExpense(ctx, "e1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after rollback, got %v", err)
	}
}

func TestBeginTxWaitsForSlot(t *testing.T) {
	s := New()
	held, err := s.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.BeginTx(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded while slot is held, got %v", err)
	}

	_ = held.Rollback(context.Background())
	tx, err := s.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("BeginTx after release failed: %v", err)
	}
	_ = tx.Rollback(context.Background())
}

func TestDeleteExpenseCascade(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	tx, _ := s.BeginTx(ctx)
	e, splits := newExpense()
	_ = tx.InsertExpense(ctx, e)
	_ = tx.InsertSplits(ctx, splits)
	_ = tx.Commit(ctx)

	tx, _ = s.BeginTx(ctx)
	if err := tx.DeleteExpenseCascade(ctx, "e1"); err != nil {
		t.Fatalf("DeleteExpenseCascade failed: %v", err)
	}
	if _, err := tx.GetSplit(ctx, "s2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected split to be gone, got %v", err)
	}
	if err := tx.DeleteExpenseCascade(ctx, "e1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
	_ = tx.Commit(ctx)
}

func TestGroupsAndUsers(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	if err := s.AddGroupMember(ctx, "g1", "bob"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
	if err := s.AddGroupMember(ctx, "g1", "carol"); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}
	members, _ := s.ListGroupMembers(ctx, "g1")
	if len(members) != 3 || members[0] != "alice" {
		t.Errorf("Unexpected members: %v", members)
	}
	if _, err := s.GroupAdmin(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	u := models.NewUser("bob@example.com", "Bob", "hash")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := s.CreateUser(ctx, models.NewUser("bob@example.com", "B", "hash")); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
	if got, _ := s.GetUserByEmail(ctx, "nobody@example.com"); got != nil {
		t.Errorf("Expected nil user, got %+v", got)
	}
}
