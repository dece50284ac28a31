package service

import (
	"context"
	"slices"
	"testing"

	"connectrpc.com/connect"

	"github.com/namansharma3007/Equi-share/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := ts.groups.CreateGroup(context.Background(), as("alice", &api.CreateGroupRequest{
		Name:      "  Roommates ",
		MemberIDs: []string{"bob", "alice", "bob", ""},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	g := resp.Msg.Group
	if g.ID == "" {
		t.Error("expected group ID to be generated")
	}
	if g.Name != "Roommates" {
		t.Errorf("Expected trimmed name, got %q", g.Name)
	}
	if g.AdminUserID != "alice" {
		t.Errorf("Expected alice as admin, got %q", g.AdminUserID)
	}
	if !slices.Equal(g.MemberIDs, []string{"alice", "bob"}) {
		t.Errorf("Expected members [alice bob], got %v", g.MemberIDs)
	}

	_, err = ts.groups.CreateGroup(context.Background(), as("alice", &api.CreateGroupRequest{Name: " "}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestAddGroupMember(t *testing.T) {
	ts := setupTestServer(t)
	groupID := createTrip(t, ts)
	ctx := context.Background()

	_, err := ts.groups.AddGroupMember(ctx, as("bob", &api.AddGroupMemberRequest{GroupID: groupID, UserID: "dave"}))
	assertCode(t, err, connect.CodePermissionDenied)

	resp, err := ts.groups.AddGroupMember(ctx, as("alice", &api.AddGroupMemberRequest{GroupID: groupID, UserID: "dave"}))
	if err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}
	if !slices.Contains(resp.Msg.MemberIDs, "dave") {
		t.Errorf("Expected dave among members, got %v", resp.Msg.MemberIDs)
	}

	_, err = ts.groups.AddGroupMember(ctx, as("alice", &api.AddGroupMemberRequest{GroupID: groupID, UserID: "dave"}))
	assertCode(t, err, connect.CodeAlreadyExists)

	_, err = ts.groups.AddGroupMember(ctx, as("alice", &api.AddGroupMemberRequest{GroupID: "missing", UserID: "dave"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListGroupMembers(t *testing.T) {
	ts := setupTestServer(t)
	groupID := createTrip(t, ts)
	ctx := context.Background()

	resp, err := ts.groups.ListGroupMembers(ctx, as("carol", &api.ListGroupMembersRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListGroupMembers failed: %v", err)
	}
	if !slices.Equal(resp.Msg.MemberIDs, []string{"alice", "bob", "carol"}) {
		t.Errorf("Unexpected members: %v", resp.Msg.MemberIDs)
	}

	_, err = ts.groups.ListGroupMembers(ctx, as("mallory", &api.ListGroupMembersRequest{GroupID: groupID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = ts.groups.ListGroupMembers(ctx, as("alice", &api.ListGroupMembersRequest{GroupID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

// A member added after an expense can be the payer of the next one.
func TestAddedMemberCanPay(t *testing.T) {
	ts := setupTestServer(t)
	groupID := createTrip(t, ts)
	ctx := context.Background()

	req := &api.CreateExpenseRequest{
		GroupID: groupID, Name: "Fuel", Amount: "40.00", PaidByUserID: "dave",
		Splits: []*api.Share{{UserID: "dave", Amount: "20.00"}, {UserID: "alice", Amount: "20.00"}},
	}
	_, err := ts.expenses.CreateExpense(ctx, as("alice", req))
	assertCode(t, err, connect.CodeInvalidArgument)

	if _, err := ts.groups.AddGroupMember(ctx, as("alice", &api.AddGroupMemberRequest{GroupID: groupID, UserID: "dave"})); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}
	if _, err := ts.expenses.CreateExpense(ctx, as("alice", req)); err != nil {
		t.Fatalf("CreateExpense failed after adding dave: %v", err)
	}
}
