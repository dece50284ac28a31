package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/money"
	"github.com/namansharma3007/Equi-share/internal/storage"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

func mustOpen(t *testing.T) *Store {
	t.Helper()
	dsn := getTestDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_ExpensesAndSplits(t *testing.T) {
	s := mustOpen(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice, bob := "alice-"+uuid.NewString(), "bob-"+uuid.NewString()
	g := &models.Group{Name: "pg", AdminUserID: alice, Members: []string{alice, bob}}
	if err := s.CreateGroup(ctx, g); err != nil {
		t.Fatalf("create group: %v", err)
	}

	expID := uuid.NewString()
	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.InsertExpense(ctx, &models.Expense{ID: expID, GroupID: g.ID, Name: "Rent", Amount: money.MustParse("1200"),
		PaidByUserID: alice, CreatorUserID: alice, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("insert expense: %v", err)
	}
	if err := tx.InsertSplits(ctx, []models.Split{
		{ID: uuid.NewString(), ExpenseID: expID, GroupID: g.ID, UserID: alice, AmountOwed: money.MustParse("600"), Cleared: true},
		{ID: uuid.NewString(), ExpenseID: expID, GroupID: g.ID, UserID: bob, AmountOwed: money.MustParse("600")},
	}); err != nil {
		t.Fatalf("insert splits: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	list, err := s.ListExpensesForUser(ctx, bob)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || len(list[0].Splits) != 2 || !list[0].Amount.Equal(money.MustParse("1200")) {
		t.Fatalf("unexpected list: %+v", list)
	}

	tx, err = s.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)
	if _, err := tx.GetExpense(ctx, uuid.NewString()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := tx.InsertSplits(ctx, []models.Split{
		{ID: uuid.NewString(), ExpenseID: expID, GroupID: g.ID, UserID: bob, AmountOwed: money.FromMinor(1)},
	}); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestStore_Users(t *testing.T) {
	s := mustOpen(t)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	u := models.NewUser(email, "Test", "hash")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.CreateUser(ctx, models.NewUser(email, "Dup", "hash")); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, err := s.GetUserByEmail(ctx, email)
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("get by email: %+v, %v", got, err)
	}
}
