package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"connectrpc.com/connect"

	"github.com/namansharma3007/Equi-share/internal/ledger"
	"github.com/namansharma3007/Equi-share/internal/middleware"
	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/storage/sqlite"
	"github.com/namansharma3007/Equi-share/pkg/api/apiconnect"
)

const testUserHeader = "X-Test-User"

// testAuthInterceptor authenticates each request as the user named in the
// X-Test-User header.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if user := req.Header().Get(testUserHeader); user != "" {
				ctx = middleware.WithUser(ctx, user, user+"@example.com")
			}
			return next(ctx, req)
		}
	}
}

// as builds a request authenticated as user.
func as[T any](user string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, user)
	return req
}

type testServer struct {
	expenses apiconnect.ExpenseServiceClient
	groups   apiconnect.GroupServiceClient

	mu      sync.Mutex
	settled []string
}

func (ts *testServer) settledExpenses() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.settled...)
}

// setupTestServer starts Expense and Group services over a temp-file SQLite
// store with membership enforced.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ts := &testServer{}
	svc := ledger.NewService(store, ledger.Options{
		Tolerance:         ledger.DefaultTolerance,
		EnforceMembership: true,
		OnExpenseSettled: func(e models.Expense) {
			ts.mu.Lock()
			ts.settled = append(ts.settled, e.ID)
			ts.mu.Unlock()
		},
	})

	interceptors := connect.WithInterceptors(testAuthInterceptor())
	expensePath, expenseHandler := apiconnect.NewExpenseServiceHandler(NewExpenseService(svc), interceptors)
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(NewGroupService(store, nil), interceptors)

	mux := http.NewServeMux()
	mux.Handle(expensePath, expenseHandler)
	mux.Handle(groupPath, groupHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	ts.expenses = apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL)
	ts.groups = apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
	return ts
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("Expected code %v, got %v (%v)", want, got, err)
	}
}
