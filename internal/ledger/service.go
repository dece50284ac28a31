// Package ledger records shared expenses, splits them among group members,
// tracks settlement of each split and derives balances.
//
// Service is the entry point. Its operations return errors tagged with one
// of four kinds (see KindOf) and never recover silently.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/storage"
)

// Options tune a Service. The zero value is usable.
type Options struct {
	// Tolerance is the accepted split-total drift in minor units.
	// Zero means exact; use DefaultTolerance for one cent.
	Tolerance int64
	// EnforceMembership requires payer, split users and callers to be
	// current members of the expense's group.
	EnforceMembership bool

	Now    func() time.Time
	NewID  func() string
	Logger *slog.Logger

	// OnExpenseSettled is called after the commit that cleared an expense.
	OnExpenseSettled func(models.Expense)
}

// Repository is everything the service needs from a store.
type Repository interface {
	storage.ExpenseRepository
	storage.GroupDirectory
}

// Service orchestrates validation, the split ledger and balance reads.
type Service struct {
	groups    storage.GroupDirectory
	validator *Validator
	splits    *SplitLedger
	balances  *BalanceAggregator
	enforce   bool
	logger    *slog.Logger
	onSettled func(models.Expense)
}

// NewService wires a Service over repo.
func NewService(repo Repository, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		groups:    repo,
		validator: NewValidator(repo, opts.Tolerance, opts.EnforceMembership),
		splits:    NewSplitLedger(repo, opts.Now, opts.NewID),
		balances:  NewBalanceAggregator(repo),
		enforce:   opts.EnforceMembership,
		logger:    logger,
		onSettled: opts.OnExpenseSettled,
	}
}

// CreateExpense validates in and records the expense with its splits.
func (s *Service) CreateExpense(ctx context.Context, in CreateExpenseInput) (*models.Expense, error) {
	ne, err := s.validator.Validate(ctx, in)
	if err != nil {
		s.failed("CreateExpense", err, "group_id", in.GroupID, "caller", in.CallerID)
		return nil, err
	}
	if err := s.requireMember(ctx, ne.GroupID, in.CallerID); err != nil {
		s.failed("CreateExpense", err, "group_id", in.GroupID, "caller", in.CallerID)
		return nil, err
	}

	expense, err := s.splits.Create(ctx, ne)
	if err != nil {
		s.failed("CreateExpense", err, "group_id", in.GroupID, "caller", in.CallerID)
		return nil, err
	}
	s.logger.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount.String(),
		"splits", len(expense.Splits),
		"cleared", expense.Cleared,
	)
	return expense, nil
}

// ClearSplit settles one split on behalf of the expense's payer.
func (s *Service) ClearSplit(ctx context.Context, callerID, expenseID, splitID string) (ClearResult, error) {
	if err := required("caller", callerID, "expense_id", expenseID, "split_id", splitID); err != nil {
		return ClearResult{}, err
	}
	res, err := s.splits.Clear(ctx, callerID, expenseID, splitID)
	if err != nil {
		s.failed("ClearSplit", err, "expense_id", expenseID, "split_id", splitID, "caller", callerID)
		return ClearResult{}, err
	}
	s.logger.Info("Split cleared", "expense_id", expenseID, "split_id", splitID, "expense_cleared", res.ExpenseCleared)
	if res.ExpenseCleared {
		s.logger.Info("Expense settled", "expense_id", expenseID, "group_id", res.Expense.GroupID)
		if s.onSettled != nil {
			s.onSettled(res.Expense)
		}
	}
	return res, nil
}

// DeleteExpense removes an expense on behalf of its payer or creator.
func (s *Service) DeleteExpense(ctx context.Context, callerID, expenseID string) (*models.Expense, error) {
	if err := required("caller", callerID, "expense_id", expenseID); err != nil {
		return nil, err
	}
	deleted, err := s.splits.Delete(ctx, callerID, expenseID)
	if err != nil {
		s.failed("DeleteExpense", err, "expense_id", expenseID, "caller", callerID)
		return nil, err
	}
	s.logger.Info("Expense deleted", "expense_id", expenseID, "group_id", deleted.GroupID)
	return deleted, nil
}

// ComputeBalances returns the caller's own balance summary.
func (s *Service) ComputeBalances(ctx context.Context, callerID string) (models.BalanceSummary, error) {
	summary, err := s.balances.ComputeBalances(ctx, callerID)
	if err != nil {
		s.failed("ComputeBalances", err, "caller", callerID)
		return models.BalanceSummary{}, err
	}
	s.logger.Debug("Balances computed",
		"user_id", callerID,
		"owed_by_user", summary.TotalOwedByUser.String(),
		"owed_to_user", summary.TotalOwedToUser.String(),
	)
	return summary, nil
}

// GetExpense returns one expense with its splits. Participants may always
// read it; otherwise the caller must belong to the expense's group.
func (s *Service) GetExpense(ctx context.Context, callerID, expenseID string) (*models.Expense, error) {
	if err := required("caller", callerID, "expense_id", expenseID); err != nil {
		return nil, err
	}
	expense, err := s.splits.Get(ctx, expenseID)
	if err != nil {
		s.failed("GetExpense", err, "expense_id", expenseID, "caller", callerID)
		return nil, err
	}
	if expense.HasParticipant(callerID) || expense.CreatorUserID == callerID {
		return expense, nil
	}
	ok, err := s.groups.IsMember(ctx, expense.GroupID, callerID)
	if err != nil {
		return nil, aborted("check membership", err)
	}
	if !ok {
		err := detail(ErrCallerNotMember, "group %s", expense.GroupID)
		s.failed("GetExpense", err, "expense_id", expenseID, "caller", callerID)
		return nil, err
	}
	return expense, nil
}

// ListGroupExpenses returns a group's expenses, newest first, to members.
func (s *Service) ListGroupExpenses(ctx context.Context, callerID, groupID string) ([]*models.Expense, error) {
	if err := s.groupReadable(ctx, callerID, groupID); err != nil {
		s.failed("ListGroupExpenses", err, "group_id", groupID, "caller", callerID)
		return nil, err
	}
	expenses, err := s.splits.repo.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		err = aborted("list group expenses", err)
		s.failed("ListGroupExpenses", err, "group_id", groupID)
		return nil, err
	}
	return expenses, nil
}

// GroupBalances returns the settlement view of a group to its members.
func (s *Service) GroupBalances(ctx context.Context, callerID, groupID string) (GroupSettlement, error) {
	if err := s.groupReadable(ctx, callerID, groupID); err != nil {
		s.failed("GroupBalances", err, "group_id", groupID, "caller", callerID)
		return GroupSettlement{}, err
	}
	settlement, err := s.balances.GroupBalances(ctx, groupID)
	if err != nil {
		s.failed("GroupBalances", err, "group_id", groupID)
		return GroupSettlement{}, err
	}
	return settlement, nil
}

// groupReadable checks the group exists and the caller belongs to it.
// Group reads are gated on membership even when writes are not.
func (s *Service) groupReadable(ctx context.Context, callerID, groupID string) error {
	if err := required("caller", callerID, "group_id", groupID); err != nil {
		return err
	}
	exists, err := s.groups.GroupExists(ctx, groupID)
	if err != nil {
		return aborted("check group", err)
	}
	if !exists {
		return detail(ErrGroupNotFound, "%s", groupID)
	}
	ok, err := s.groups.IsMember(ctx, groupID, callerID)
	if err != nil {
		return aborted("check membership", err)
	}
	if !ok {
		return detail(ErrCallerNotMember, "group %s", groupID)
	}
	return nil
}

func (s *Service) requireMember(ctx context.Context, groupID, userID string) error {
	if !s.enforce {
		return nil
	}
	ok, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return aborted("check membership", err)
	}
	if !ok {
		return detail(ErrCallerNotMember, "group %s", groupID)
	}
	return nil
}

// failed logs a rejected or failed operation. Store failures are errors;
// everything else is the caller's problem and logged as a warning.
func (s *Service) failed(op string, err error, attrs ...any) {
	attrs = append(attrs, "kind", KindOf(err).String(), "error", err)
	if KindOf(err) == KindTransactionAborted {
		s.logger.Error(op+" failed", attrs...)
		return
	}
	s.logger.Warn(op+" rejected", attrs...)
}

// required takes name/value pairs and reports the first empty value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return detail(ErrMissingField, "%s", pairs[i])
		}
	}
	return nil
}
