package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/namansharma3007/Equi-share/internal/calculator"
	"github.com/namansharma3007/Equi-share/internal/ledger"
	"github.com/namansharma3007/Equi-share/internal/middleware"
	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/money"
	"github.com/namansharma3007/Equi-share/pkg/api"
	"github.com/namansharma3007/Equi-share/pkg/api/apiconnect"
)

// ExpenseService implements the Connect ExpenseService on top of the ledger.
// The caller of every ledger operation is the authenticated user.
type ExpenseService struct {
	apiconnect.UnimplementedExpenseServiceHandler
	ledger *ledger.Service
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(l *ledger.Service) *ExpenseService {
	return &ExpenseService{ledger: l}
}

// CreateExpense records an expense and its splits.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	amount, err := parseAmount("amount", req.Msg.Amount)
	if err != nil {
		return nil, err
	}
	splits := make([]ledger.SplitInput, len(req.Msg.Splits))
	for i, sh := range req.Msg.Splits {
		if sh == nil {
			return nil, connectError(fmt.Errorf("%w: splits[%d]", ledger.ErrMissingField, i))
		}
		owed, err := parseAmount(fmt.Sprintf("splits[%d].amount", i), sh.Amount)
		if err != nil {
			return nil, err
		}
		splits[i] = ledger.SplitInput{UserID: sh.UserID, AmountOwed: owed}
	}

	expense, err := s.ledger.CreateExpense(ctx, ledger.CreateExpenseInput{
		CallerID:     middleware.GetUserID(ctx),
		Name:         req.Msg.Name,
		Amount:       amount,
		GroupID:      req.Msg.GroupID,
		PaidByUserID: req.Msg.PaidByUserID,
		Splits:       splits,
	})
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ClearSplit marks one split as settled.
func (s *ExpenseService) ClearSplit(ctx context.Context, req *connect.Request[api.ClearSplitRequest]) (*connect.Response[api.ClearSplitResponse], error) {
	res, err := s.ledger.ClearSplit(ctx, middleware.GetUserID(ctx), req.Msg.ExpenseID, req.Msg.SplitID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.ClearSplitResponse{
		Split:          toAPISplit(res.Split),
		Expense:        toAPIExpense(&res.Expense),
		ExpenseCleared: res.ExpenseCleared,
	}), nil
}

// DeleteExpense removes an expense and all of its splits.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	deleted, err := s.ledger.DeleteExpense(ctx, middleware.GetUserID(ctx), req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.DeleteExpenseResponse{Expense: toAPIExpense(deleted)}), nil
}

// GetExpense returns one expense with its splits.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	expense, err := s.ledger.GetExpense(ctx, middleware.GetUserID(ctx), req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListGroupExpenses returns a group's expenses, newest first.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	expenses, err := s.ledger.ListGroupExpenses(ctx, middleware.GetUserID(ctx), req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return connect.NewResponse(&api.ListGroupExpensesResponse{Expenses: out}), nil
}

// GetBalances returns the caller's balance summary.
func (s *ExpenseService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	summary, err := s.ledger.ComputeBalances(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, connectError(err)
	}
	groups := make([]*api.GroupBalance, len(summary.PerGroup))
	for i, g := range summary.PerGroup {
		groups[i] = &api.GroupBalance{
			GroupID:    g.GroupID,
			OwedByUser: g.OwedByUser.String(),
			OwedToUser: g.OwedToUser.String(),
			Net:        g.Net.String(),
			Debts:      toAPIDebts(g.Debts),
		}
	}
	return connect.NewResponse(&api.GetBalancesResponse{
		UserID:          summary.UserID,
		TotalOwedByUser: summary.TotalOwedByUser.String(),
		TotalOwedToUser: summary.TotalOwedToUser.String(),
		Net:             summary.Net.String(),
		Groups:          groups,
	}), nil
}

// GetGroupBalances returns every member's net standing in a group and the
// transfers that would settle it.
func (s *ExpenseService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	settlement, err := s.ledger.GroupBalances(ctx, middleware.GetUserID(ctx), req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}
	members := make([]*api.MemberBalance, len(settlement.Members))
	for i, m := range settlement.Members {
		members[i] = &api.MemberBalance{UserID: m.UserID, Net: m.Net.String()}
	}
	return connect.NewResponse(&api.GetGroupBalancesResponse{
		GroupID:   settlement.GroupID,
		Members:   members,
		Transfers: toAPIDebts(settlement.Transfers),
	}), nil
}

// CalculateEqualSplit previews an equal division of an amount. Nothing is stored.
func (s *ExpenseService) CalculateEqualSplit(ctx context.Context, req *connect.Request[api.CalculateEqualSplitRequest]) (*connect.Response[api.CalculateEqualSplitResponse], error) {
	amount, err := parseAmount("amount", req.Msg.Amount)
	if err != nil {
		return nil, err
	}
	shares, err := calculator.EqualSplit(amount, req.Msg.PaidByUserID, req.Msg.ParticipantIDs)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	out := make([]*api.Share, len(shares))
	for i, sh := range shares {
		out[i] = &api.Share{UserID: sh.UserID, Amount: sh.Amount.String()}
	}
	return connect.NewResponse(&api.CalculateEqualSplitResponse{Shares: out}), nil
}

// parseAmount turns a wire amount into Money. An empty string counts as a
// missing field.
func parseAmount(field, s string) (money.Money, error) {
	if s == "" {
		return money.Zero, connectError(fmt.Errorf("%w: %s", ledger.ErrMissingField, field))
	}
	m, err := money.Parse(s)
	if err != nil {
		return money.Zero, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s: %w", field, err))
	}
	return m, nil
}

// connectError maps a ledger error kind to a Connect code. Store failures
// are reported as retryable without leaking their cause.
func connectError(err error) error {
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		return connect.NewError(connect.CodeInvalidArgument, err)
	case ledger.KindNotFound:
		return connect.NewError(connect.CodeNotFound, err)
	case ledger.KindForbidden:
		return connect.NewError(connect.CodePermissionDenied, err)
	default:
		return connect.NewError(connect.CodeAborted, errTemporary)
	}
}

var errTemporary = errors.New("temporary failure, try again")

func toAPISplit(sp models.Split) *api.Split {
	return &api.Split{
		ID:         sp.ID,
		ExpenseID:  sp.ExpenseID,
		GroupID:    sp.GroupID,
		UserID:     sp.UserID,
		AmountOwed: sp.AmountOwed.String(),
		Cleared:    sp.Cleared,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	splits := make([]*api.Split, len(e.Splits))
	for i, sp := range e.Splits {
		splits[i] = toAPISplit(sp)
	}
	return &api.Expense{
		ID:            e.ID,
		GroupID:       e.GroupID,
		Name:          e.Name,
		Amount:        e.Amount.String(),
		PaidByUserID:  e.PaidByUserID,
		CreatorUserID: e.CreatorUserID,
		Cleared:       e.Cleared,
		CreatedAt:     e.CreatedAt,
		Splits:        splits,
	}
}

func toAPIDebts(edges []models.DebtEdge) []*api.Debt {
	out := make([]*api.Debt, len(edges))
	for i, d := range edges {
		out[i] = &api.Debt{From: d.From, To: d.To, Amount: d.Amount.String()}
	}
	return out
}
