// Package apiconnect holds the Connect handlers and clients for the
// equishare.v1 services. Messages are the plain structs of package api,
// carried by api.JSONCodec.
package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/namansharma3007/Equi-share/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = "equishare.v1.ExpenseService"

// Procedure paths of ExpenseService.
const (
	ExpenseServiceCreateExpenseProcedure       = "/equishare.v1.ExpenseService/CreateExpense"
	ExpenseServiceClearSplitProcedure          = "/equishare.v1.ExpenseService/ClearSplit"
	ExpenseServiceDeleteExpenseProcedure       = "/equishare.v1.ExpenseService/DeleteExpense"
	ExpenseServiceGetExpenseProcedure          = "/equishare.v1.ExpenseService/GetExpense"
	ExpenseServiceListGroupExpensesProcedure   = "/equishare.v1.ExpenseService/ListGroupExpenses"
	ExpenseServiceGetBalancesProcedure         = "/equishare.v1.ExpenseService/GetBalances"
	ExpenseServiceGetGroupBalancesProcedure    = "/equishare.v1.ExpenseService/GetGroupBalances"
	ExpenseServiceCalculateEqualSplitProcedure = "/equishare.v1.ExpenseService/CalculateEqualSplit"
)

// ExpenseServiceClient is a client for the equishare.v1.ExpenseService service.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	ClearSplit(context.Context, *connect.Request[api.ClearSplitRequest]) (*connect.Response[api.ClearSplitResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListGroupExpenses(context.Context, *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	CalculateEqualSplit(context.Context, *connect.Request[api.CalculateEqualSplitRequest]) (*connect.Response[api.CalculateEqualSplitResponse], error)
}

// NewExpenseServiceClient constructs a client for the equishare.v1.ExpenseService
// service. The JSON codec is always used.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &expenseServiceClient{
		createExpense:       connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		clearSplit:          connect.NewClient[api.ClearSplitRequest, api.ClearSplitResponse](httpClient, baseURL+ExpenseServiceClearSplitProcedure, opts...),
		deleteExpense:       connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		getExpense:          connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		listGroupExpenses:   connect.NewClient[api.ListGroupExpensesRequest, api.ListGroupExpensesResponse](httpClient, baseURL+ExpenseServiceListGroupExpensesProcedure, opts...),
		getBalances:         connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+ExpenseServiceGetBalancesProcedure, opts...),
		getGroupBalances:    connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+ExpenseServiceGetGroupBalancesProcedure, opts...),
		calculateEqualSplit: connect.NewClient[api.CalculateEqualSplitRequest, api.CalculateEqualSplitResponse](httpClient, baseURL+ExpenseServiceCalculateEqualSplitProcedure, opts...),
	}
}

type expenseServiceClient struct {
	createExpense       *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	clearSplit          *connect.Client[api.ClearSplitRequest, api.ClearSplitResponse]
	deleteExpense       *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	getExpense          *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	listGroupExpenses   *connect.Client[api.ListGroupExpensesRequest, api.ListGroupExpensesResponse]
	getBalances         *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	getGroupBalances    *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	calculateEqualSplit *connect.Client[api.CalculateEqualSplitRequest, api.CalculateEqualSplitResponse]
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ClearSplit(ctx context.Context, req *connect.Request[api.ClearSplitRequest]) (*connect.Response[api.ClearSplitResponse], error) {
	return c.clearSplit.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	return c.listGroupExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *expenseServiceClient) CalculateEqualSplit(ctx context.Context, req *connect.Request[api.CalculateEqualSplitRequest]) (*connect.Response[api.CalculateEqualSplitResponse], error) {
	return c.calculateEqualSplit.CallUnary(ctx, req)
}

// ExpenseServiceHandler is an implementation of the equishare.v1.ExpenseService service.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	ClearSplit(context.Context, *connect.Request[api.ClearSplitRequest]) (*connect.Response[api.ClearSplitResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListGroupExpenses(context.Context, *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	CalculateEqualSplit(context.Context, *connect.Request[api.CalculateEqualSplitRequest]) (*connect.Response[api.CalculateEqualSplitResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	createExpense := connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...)
	clearSplit := connect.NewUnaryHandler(ExpenseServiceClearSplitProcedure, svc.ClearSplit, opts...)
	deleteExpense := connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...)
	getExpense := connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...)
	listGroupExpenses := connect.NewUnaryHandler(ExpenseServiceListGroupExpensesProcedure, svc.ListGroupExpenses, opts...)
	getBalances := connect.NewUnaryHandler(ExpenseServiceGetBalancesProcedure, svc.GetBalances, opts...)
	getGroupBalances := connect.NewUnaryHandler(ExpenseServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...)
	calculateEqualSplit := connect.NewUnaryHandler(ExpenseServiceCalculateEqualSplitProcedure, svc.CalculateEqualSplit, opts...)
	return "/equishare.v1.ExpenseService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ExpenseServiceCreateExpenseProcedure:
			createExpense.ServeHTTP(w, r)
		case ExpenseServiceClearSplitProcedure:
			clearSplit.ServeHTTP(w, r)
		case ExpenseServiceDeleteExpenseProcedure:
			deleteExpense.ServeHTTP(w, r)
		case ExpenseServiceGetExpenseProcedure:
			getExpense.ServeHTTP(w, r)
		case ExpenseServiceListGroupExpensesProcedure:
			listGroupExpenses.ServeHTTP(w, r)
		case ExpenseServiceGetBalancesProcedure:
			getBalances.ServeHTTP(w, r)
		case ExpenseServiceGetGroupBalancesProcedure:
			getGroupBalances.ServeHTTP(w, r)
		case ExpenseServiceCalculateEqualSplitProcedure:
			calculateEqualSplit.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedExpenseServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedExpenseServiceHandler struct{}

func (UnimplementedExpenseServiceHandler) CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.ExpenseService.CreateExpense is not implemented"))
}

func (UnimplementedExpenseServiceHandler) ClearSplit(context.Context, *connect.Request[api.ClearSplitRequest]) (*connect.Response[api.ClearSplitResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.ExpenseService.ClearSplit is not implemented"))
}

func (UnimplementedExpenseServiceHandler) DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.ExpenseService.DeleteExpense is not implemented"))
}

func (UnimplementedExpenseServiceHandler) GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.ExpenseService.GetExpense is not implemented"))
}

func (UnimplementedExpenseServiceHandler) ListGroupExpenses(context.Context, *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.ExpenseService.ListGroupExpenses is not implemented"))
}

func (UnimplementedExpenseServiceHandler) GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.ExpenseService.GetBalances is not implemented"))
}

func (UnimplementedExpenseServiceHandler) GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.ExpenseService.GetGroupBalances is not implemented"))
}

func (UnimplementedExpenseServiceHandler) CalculateEqualSplit(context.Context, *connect.Request[api.CalculateEqualSplitRequest]) (*connect.Response[api.CalculateEqualSplitResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.ExpenseService.CalculateEqualSplit is not implemented"))
}
