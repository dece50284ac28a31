package ledger

import (
	"context"

	"github.com/namansharma3007/Equi-share/internal/calculator"
	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/storage"
)

// GroupSettlement is a group's standing: each member's net balance and a
// minimal set of transfers that would settle it.
type GroupSettlement struct {
	GroupID   string
	Members   []calculator.MemberBalance
	Transfers []models.DebtEdge
}

// BalanceAggregator derives balances from current expense state on every
// call. It never writes and keeps nothing between calls.
type BalanceAggregator struct {
	repo storage.ExpenseRepository
}

func NewBalanceAggregator(repo storage.ExpenseRepository) *BalanceAggregator {
	return &BalanceAggregator{repo: repo}
}

// ComputeBalances reports what userID owes and is owed. A user with no
// expenses gets zero totals.
func (a *BalanceAggregator) ComputeBalances(ctx context.Context, userID string) (models.BalanceSummary, error) {
	if userID == "" {
		return models.BalanceSummary{}, detail(ErrMissingField, "user_id")
	}
	expenses, err := a.repo.ListExpensesForUser(ctx, userID)
	if err != nil {
		return models.BalanceSummary{}, aborted("list expenses", err)
	}
	return calculator.ComputeBalances(userID, expenses), nil
}

// GroupBalances computes the settlement view of one group.
func (a *BalanceAggregator) GroupBalances(ctx context.Context, groupID string) (GroupSettlement, error) {
	expenses, err := a.repo.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return GroupSettlement{}, aborted("list group expenses", err)
	}
	members, transfers := calculator.GroupBalances(expenses)
	return GroupSettlement{GroupID: groupID, Members: members, Transfers: transfers}, nil
}
