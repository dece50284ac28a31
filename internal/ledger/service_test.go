package ledger_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namansharma3007/Equi-share/internal/calculator"
	"github.com/namansharma3007/Equi-share/internal/ledger"
	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/money"
	"github.com/namansharma3007/Equi-share/internal/storage/memory"
)

type fixture struct {
	svc     *ledger.Service
	store   *memory.Store
	settled []models.Expense
}

// newFixture builds a service over a memory store holding group g1 with
// members u1, u2 and u3. u4 exists outside the group.
func newFixture(t *testing.T, mutate ...func(*ledger.Options)) *fixture {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.CreateGroup(context.Background(), &models.Group{
		ID: "g1", Name: "Flat", AdminUserID: "u1", Members: []string{"u1", "u2", "u3"},
	}))

	f := &fixture{store: store}
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	opts := ledger.Options{
		Tolerance:         ledger.DefaultTolerance,
		EnforceMembership: true,
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnExpenseSettled: func(e models.Expense) { f.settled = append(f.settled, e) },
	}
	for _, m := range mutate {
		m(&opts)
	}
	f.svc = ledger.NewService(store, opts)
	return f
}

func splitsOf(pairs ...string) []ledger.SplitInput {
	var out []ledger.SplitInput
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, ledger.SplitInput{UserID: pairs[i], AmountOwed: money.MustParse(pairs[i+1])})
	}
	return out
}

// scenarioA records 100.00 paid by u1 and split equally among u1, u2, u3.
func (f *fixture) scenarioA(t *testing.T) *models.Expense {
	t.Helper()
	shares, err := calculator.EqualSplit(money.MustParse("100.00"), "u1", []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	in := ledger.CreateExpenseInput{
		CallerID: "u1", Name: "Groceries", Amount: money.MustParse("100.00"),
		GroupID: "g1", PaidByUserID: "u1",
	}
	for _, s := range shares {
		in.Splits = append(in.Splits, ledger.SplitInput{UserID: s.UserID, AmountOwed: s.Amount})
	}
	e, err := f.svc.CreateExpense(context.Background(), in)
	require.NoError(t, err)
	return e
}

func splitFor(t *testing.T, e *models.Expense, user string) models.Split {
	t.Helper()
	for _, s := range e.Splits {
		if s.UserID == user {
			return s
		}
	}
	t.Fatalf("no split for %s", user)
	return models.Split{}
}

func TestScenarioA_EqualSplitCreate(t *testing.T) {
	f := newFixture(t)
	e := f.scenarioA(t)

	assert.False(t, e.Cleared)
	assert.Equal(t, "u1", e.CreatorUserID)
	require.Len(t, e.Splits, 3)

	u1 := splitFor(t, e, "u1")
	assert.Equal(t, "33.34", u1.AmountOwed.String())
	assert.True(t, u1.Cleared, "payer's own split starts cleared")
	for _, u := range []string{"u2", "u3"} {
		s := splitFor(t, e, u)
		assert.Equal(t, "33.33", s.AmountOwed.String())
		assert.False(t, s.Cleared)
		assert.Equal(t, e.ID, s.ExpenseID)
		assert.Equal(t, "g1", s.GroupID)
	}
}

func TestScenarioB_ClearanceCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.scenarioA(t)

	res, err := f.svc.ClearSplit(ctx, "u1", e.ID, splitFor(t, e, "u2").ID)
	require.NoError(t, err)
	assert.True(t, res.Split.Cleared)
	assert.False(t, res.ExpenseCleared)
	assert.False(t, res.Expense.Cleared)
	assert.Empty(t, f.settled)

	res, err = f.svc.ClearSplit(ctx, "u1", e.ID, splitFor(t, e, "u3").ID)
	require.NoError(t, err)
	assert.True(t, res.ExpenseCleared, "clearing the last split reports the cascade")
	assert.True(t, res.Expense.Cleared)
	require.Len(t, f.settled, 1)
	assert.Equal(t, e.ID, f.settled[0].ID)

	got, err := f.svc.GetExpense(ctx, "u2", e.ID)
	require.NoError(t, err)
	assert.True(t, got.Cleared)
}

func TestScenarioC_BalancesBeforeClearance(t *testing.T) {
	f := newFixture(t)
	f.scenarioA(t)

	summary, err := f.svc.ComputeBalances(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "33.33", summary.TotalOwedByUser.String())
	assert.True(t, summary.TotalOwedToUser.IsZero())

	payer, err := f.svc.ComputeBalances(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "66.66", payer.TotalOwedToUser.String())
	assert.True(t, payer.TotalOwedByUser.IsZero())
}

func TestScenarioD_SplitMismatch(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateExpense(context.Background(), ledger.CreateExpenseInput{
		CallerID: "u1", Name: "Taxi", Amount: money.MustParse("50.00"), GroupID: "g1", PaidByUserID: "u1",
		Splits: splitsOf("u1", "20.00", "u2", "20.00"),
	})
	assert.ErrorIs(t, err, ledger.ErrSplitMismatch)
	assert.Equal(t, ledger.KindValidation, ledger.KindOf(err))
	assert.Contains(t, err.Error(), "40.00")
	assert.Contains(t, err.Error(), "50.00")
}

func TestScenarioE_DeleteForbiddenForOutsider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.scenarioA(t)

	_, err := f.svc.DeleteExpense(ctx, "u3", e.ID)
	assert.ErrorIs(t, err, ledger.ErrForbidden)

	got, err := f.svc.GetExpense(ctx, "u3", e.ID)
	require.NoError(t, err)
	assert.Len(t, got.Splits, 3)
}

func TestDeleteExpense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// u2 records an expense that u1 paid; either may delete it.
	e, err := f.svc.CreateExpense(ctx, ledger.CreateExpenseInput{
		CallerID: "u2", Name: "Tickets", Amount: money.MustParse("30"), GroupID: "g1", PaidByUserID: "u1",
		Splits: splitsOf("u1", "15", "u2", "15"),
	})
	require.NoError(t, err)

	deleted, err := f.svc.DeleteExpense(ctx, "u2", e.ID)
	require.NoError(t, err)
	assert.Len(t, deleted.Splits, 2)

	_, err = f.svc.GetExpense(ctx, "u2", e.ID)
	assert.ErrorIs(t, err, ledger.ErrExpenseNotFound)

	_, err = f.svc.DeleteExpense(ctx, "u1", e.ID)
	assert.ErrorIs(t, err, ledger.ErrExpenseNotFound)
	assert.Equal(t, ledger.KindNotFound, ledger.KindOf(err))
}

func TestClearSplit_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.scenarioA(t)
	splitID := splitFor(t, e, "u2").ID

	first, err := f.svc.ClearSplit(ctx, "u1", e.ID, splitID)
	require.NoError(t, err)
	second, err := f.svc.ClearSplit(ctx, "u1", e.ID, splitID)
	require.NoError(t, err)

	assert.Equal(t, first.Split, second.Split)
	assert.Equal(t, first.Expense.Cleared, second.Expense.Cleared)
	assert.False(t, second.ExpenseCleared)

	// the payer's auto-cleared split is also a no-op
	_, err = f.svc.ClearSplit(ctx, "u1", e.ID, splitFor(t, e, "u1").ID)
	require.NoError(t, err)
}

func TestClearSplit_OnlyPayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.scenarioA(t)

	_, err := f.svc.ClearSplit(ctx, "u2", e.ID, splitFor(t, e, "u2").ID)
	assert.ErrorIs(t, err, ledger.ErrForbidden)

	got, err := f.svc.GetExpense(ctx, "u1", e.ID)
	require.NoError(t, err)
	for _, s := range got.Splits {
		assert.Equal(t, s.UserID == "u1", s.Cleared, "split %s changed", s.UserID)
	}
}

func TestClearSplit_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.scenarioA(t)
	other, err := f.svc.CreateExpense(ctx, ledger.CreateExpenseInput{
		CallerID: "u1", Name: "Fuel", Amount: money.MustParse("10"), GroupID: "g1", PaidByUserID: "u1",
		Splits: splitsOf("u2", "10"),
	})
	require.NoError(t, err)

	_, err = f.svc.ClearSplit(ctx, "u1", e.ID, "missing")
	assert.ErrorIs(t, err, ledger.ErrSplitNotFound)

	_, err = f.svc.ClearSplit(ctx, "u1", e.ID, other.Splits[0].ID)
	assert.ErrorIs(t, err, ledger.ErrSplitNotFound, "a split of another expense is not found")

	_, err = f.svc.ClearSplit(ctx, "u1", "missing", other.Splits[0].ID)
	assert.ErrorIs(t, err, ledger.ErrExpenseNotFound)

	_, err = f.svc.ClearSplit(ctx, "u1", e.ID, "")
	assert.ErrorIs(t, err, ledger.ErrMissingField)
}

func TestCreateExpense_PayerOnlySplitIsCleared(t *testing.T) {
	f := newFixture(t)
	e, err := f.svc.CreateExpense(context.Background(), ledger.CreateExpenseInput{
		CallerID: "u1", Name: "Own lunch", Amount: money.MustParse("12.40"), GroupID: "g1", PaidByUserID: "u1",
		Splits: splitsOf("u1", "12.40"),
	})
	require.NoError(t, err)
	assert.True(t, e.Cleared)
	assert.True(t, e.Splits[0].Cleared)
}

func TestCreateExpense_Validation(t *testing.T) {
	base := func() ledger.CreateExpenseInput {
		return ledger.CreateExpenseInput{
			CallerID: "u1", Name: "Dinner", Amount: money.MustParse("100.00"), GroupID: "g1", PaidByUserID: "u1",
			Splits: splitsOf("u1", "50.00", "u2", "50.00"),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ledger.CreateExpenseInput)
		opts    func(*ledger.Options)
		wantErr error
	}{
		{name: "valid", mutate: func(*ledger.CreateExpenseInput) {}},
		{name: "missing caller", mutate: func(in *ledger.CreateExpenseInput) { in.CallerID = "" }, wantErr: ledger.ErrMissingField},
		{name: "blank name", mutate: func(in *ledger.CreateExpenseInput) { in.Name = "   " }, wantErr: ledger.ErrMissingField},
		{name: "missing group", mutate: func(in *ledger.CreateExpenseInput) { in.GroupID = "" }, wantErr: ledger.ErrMissingField},
		{name: "missing payer", mutate: func(in *ledger.CreateExpenseInput) { in.PaidByUserID = "" }, wantErr: ledger.ErrMissingField},
		{name: "no splits", mutate: func(in *ledger.CreateExpenseInput) { in.Splits = nil }, wantErr: ledger.ErrMissingField},
		{name: "split without user", mutate: func(in *ledger.CreateExpenseInput) { in.Splits[1].UserID = "" }, wantErr: ledger.ErrMissingField},
		{name: "zero amount", mutate: func(in *ledger.CreateExpenseInput) { in.Amount = money.Zero }, wantErr: ledger.ErrNonPositiveAmount},
		{name: "negative amount", mutate: func(in *ledger.CreateExpenseInput) { in.Amount = money.MustParse("-1") }, wantErr: ledger.ErrNonPositiveAmount},
		{
			name:    "negative split",
			mutate:  func(in *ledger.CreateExpenseInput) { in.Splits = splitsOf("u1", "110.00", "u2", "-10.00") },
			wantErr: ledger.ErrNegativeSplit,
		},
		{
			name:    "duplicate member",
			mutate:  func(in *ledger.CreateExpenseInput) { in.Splits = splitsOf("u2", "50.00", "u2", "50.00") },
			wantErr: ledger.ErrDuplicateSplitMember,
		},
		{
			name:   "one cent short is tolerated",
			mutate: func(in *ledger.CreateExpenseInput) { in.Splits = splitsOf("u1", "33.33", "u2", "33.33", "u3", "33.33") },
		},
		{
			name:    "two cents short is rejected",
			mutate:  func(in *ledger.CreateExpenseInput) { in.Splits = splitsOf("u1", "33.33", "u2", "33.33", "u3", "33.32") },
			wantErr: ledger.ErrSplitMismatch,
		},
		{
			name:    "exact match required with zero tolerance",
			mutate:  func(in *ledger.CreateExpenseInput) { in.Splits = splitsOf("u1", "33.33", "u2", "33.33", "u3", "33.33") },
			opts:    func(o *ledger.Options) { o.Tolerance = 0 },
			wantErr: ledger.ErrSplitMismatch,
		},
		{name: "unknown group", mutate: func(in *ledger.CreateExpenseInput) { in.GroupID = "nope" }, wantErr: ledger.ErrGroupNotFound},
		{
			name:    "split user outside group",
			mutate:  func(in *ledger.CreateExpenseInput) { in.Splits = splitsOf("u1", "50.00", "u4", "50.00") },
			wantErr: ledger.ErrNotAGroupMember,
		},
		{name: "payer outside group", mutate: func(in *ledger.CreateExpenseInput) { in.PaidByUserID = "u4" }, wantErr: ledger.ErrNotAGroupMember},
		{
			name:   "outsiders allowed when membership is not enforced",
			mutate: func(in *ledger.CreateExpenseInput) { in.CallerID = "u4"; in.Splits = splitsOf("u1", "50.00", "u4", "50.00") },
			opts:   func(o *ledger.Options) { o.EnforceMembership = false },
		},
		{name: "caller outside group", mutate: func(in *ledger.CreateExpenseInput) { in.CallerID = "u4" }, wantErr: ledger.ErrCallerNotMember},
		{
			name: "splits wrapping past the int64 limit are rejected",
			mutate: func(in *ledger.CreateExpenseInput) {
				in.Amount = money.MustParse("1.00")
				in.Splits = []ledger.SplitInput{
					{UserID: "u2", AmountOwed: money.FromMinor(math.MaxInt64)},
					{UserID: "u3", AmountOwed: money.FromMinor(math.MaxInt64)},
					{UserID: "u1", AmountOwed: money.MustParse("1.02")},
				}
			},
			wantErr: ledger.ErrAmountTooLarge,
		},
		{
			name:    "amount above the maximum",
			mutate:  func(in *ledger.CreateExpenseInput) { in.Amount = money.MaxAmount.Add(money.FromMinor(1)) },
			wantErr: ledger.ErrAmountTooLarge,
		},
		{
			name: "amount at the maximum",
			mutate: func(in *ledger.CreateExpenseInput) {
				in.Amount = money.MaxAmount
				in.Splits = []ledger.SplitInput{{UserID: "u2", AmountOwed: money.MaxAmount}}
			},
		},
		{
			name: "split total overflowing int64 is a mismatch",
			mutate: func(in *ledger.CreateExpenseInput) {
				in.Amount = money.MaxAmount
				in.Splits = nil
				for i := 0; i < 9300; i++ {
					in.Splits = append(in.Splits, ledger.SplitInput{UserID: fmt.Sprintf("x%d", i), AmountOwed: money.MaxAmount})
				}
			},
			opts:    func(o *ledger.Options) { o.EnforceMembership = false },
			wantErr: ledger.ErrSplitMismatch,
		},
		{
			// amount is checked before totals, totals before the group lookup
			name: "checks run in order",
			mutate: func(in *ledger.CreateExpenseInput) {
				in.GroupID = "nope"
				in.Splits = splitsOf("u1", "1.00")
			},
			wantErr: ledger.ErrSplitMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f *fixture
			if tt.opts != nil {
				f = newFixture(t, tt.opts)
			} else {
				f = newFixture(t)
			}
			in := base()
			tt.mutate(&in)

			e, err := f.svc.CreateExpense(context.Background(), in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				list, _ := f.store.ListExpensesByGroup(context.Background(), "g1")
				assert.Empty(t, list, "rejected request must not write")
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, e.ID)
		})
	}
}

func TestListGroupExpenses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.scenarioA(t)
	second := f.scenarioA(t)

	list, err := f.svc.ListGroupExpenses(ctx, "u3", "g1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	_, err = f.svc.ListGroupExpenses(ctx, "u4", "g1")
	assert.ErrorIs(t, err, ledger.ErrCallerNotMember)
	assert.Equal(t, ledger.KindForbidden, ledger.KindOf(err))

	_, err = f.svc.ListGroupExpenses(ctx, "u1", "nope")
	assert.ErrorIs(t, err, ledger.ErrGroupNotFound)
}

func TestGetExpense_OutsiderForbidden(t *testing.T) {
	f := newFixture(t)
	e := f.scenarioA(t)

	_, err := f.svc.GetExpense(context.Background(), "u4", e.ID)
	assert.ErrorIs(t, err, ledger.ErrForbidden)
}

func TestGroupBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.scenarioA(t)
	_, err := f.svc.CreateExpense(ctx, ledger.CreateExpenseInput{
		CallerID: "u2", Name: "Wine", Amount: money.MustParse("20"), GroupID: "g1", PaidByUserID: "u2",
		Splits: splitsOf("u1", "10", "u2", "10"),
	})
	require.NoError(t, err)

	got, err := f.svc.GroupBalances(ctx, "u3", "g1")
	require.NoError(t, err)
	assert.Equal(t, []calculator.MemberBalance{
		{UserID: "u1", Net: money.MustParse("56.66")},
		{UserID: "u2", Net: money.MustParse("-23.33")},
		{UserID: "u3", Net: money.MustParse("-33.33")},
	}, got.Members)
	assert.Equal(t, []models.DebtEdge{
		{From: "u3", To: "u1", Amount: money.MustParse("33.33")},
		{From: "u2", To: "u1", Amount: money.MustParse("23.33")},
	}, got.Transfers)
}

func TestInvariantsHoldAcrossOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 1; i <= 5; i++ {
		amount := money.FromMinor(int64(i*1001 + 7))
		shares, err := calculator.EqualSplit(amount, "u1", []string{"u1", "u2", "u3"})
		require.NoError(t, err)
		in := ledger.CreateExpenseInput{CallerID: "u1", Name: fmt.Sprintf("e%d", i), Amount: amount, GroupID: "g1", PaidByUserID: "u1"}
		for _, s := range shares {
			in.Splits = append(in.Splits, ledger.SplitInput{UserID: s.UserID, AmountOwed: s.Amount})
		}
		e, err := f.svc.CreateExpense(ctx, in)
		require.NoError(t, err)
		ids = append(ids, e.ID)

		// clear a growing prefix of the debtors' splits
		for _, s := range e.Splits[1 : 1+i%3] {
			_, err := f.svc.ClearSplit(ctx, "u1", e.ID, s.ID)
			require.NoError(t, err)
		}
	}
	_, err := f.svc.DeleteExpense(ctx, "u1", ids[0])
	require.NoError(t, err)

	list, err := f.svc.ListGroupExpenses(ctx, "u1", "g1")
	require.NoError(t, err)
	require.Len(t, list, 4)
	for _, e := range list {
		total := money.Zero
		allCleared := true
		for _, s := range e.Splits {
			total = total.Add(s.AmountOwed)
			allCleared = allCleared && s.Cleared
		}
		assert.True(t, total.ApproxEqual(e.Amount, ledger.DefaultTolerance), "expense %s amount drifted", e.Name)
		assert.Equal(t, allCleared, e.Cleared, "expense %s cleared flag out of sync", e.Name)
	}
}

func TestCancelledContextAbortsTransaction(t *testing.T) {
	f := newFixture(t)
	e := f.scenarioA(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.ClearSplit(ctx, "u1", e.ID, splitFor(t, e, "u2").ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionAborted)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := f.svc.GetExpense(context.Background(), "u1", e.ID)
	require.NoError(t, err)
	assert.False(t, splitFor(t, got, "u2").Cleared)
}
