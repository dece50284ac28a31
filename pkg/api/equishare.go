// Package api defines the wire messages of the equishare.v1 services.
//
// Amounts travel as decimal strings with two places ("33.34") so that no
// client has to round-trip money through a binary float.
package api

import "time"

// --- Shared ---

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type Split struct {
	ID         string `json:"id"`
	ExpenseID  string `json:"expense_id"`
	GroupID    string `json:"group_id"`
	UserID     string `json:"user_id"`
	AmountOwed string `json:"amount_owed"`
	Cleared    bool   `json:"cleared"`
}

type Expense struct {
	ID            string    `json:"id"`
	GroupID       string    `json:"group_id"`
	Name          string    `json:"name"`
	Amount        string    `json:"amount"`
	PaidByUserID  string    `json:"paid_by_user_id"`
	CreatorUserID string    `json:"creator_user_id"`
	Cleared       bool      `json:"cleared"`
	CreatedAt     time.Time `json:"created_at"`
	Splits        []*Split  `json:"splits"`
}

// Share is one user's part of an amount.
type Share struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

type Debt struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	AdminUserID string   `json:"admin_user_id"`
	MemberIDs   []string `json:"member_ids"`
	CreatedAt   int64    `json:"created_at"`
}

// --- ExpenseService ---

type CreateExpenseRequest struct {
	GroupID      string   `json:"group_id"`
	Name         string   `json:"name"`
	Amount       string   `json:"amount"`
	PaidByUserID string   `json:"paid_by_user_id"`
	Splits       []*Share `json:"splits"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ClearSplitRequest struct {
	ExpenseID string `json:"expense_id"`
	SplitID   string `json:"split_id"`
}

type ClearSplitResponse struct {
	Split   *Split   `json:"split"`
	Expense *Expense `json:"expense"`
	// ExpenseCleared is true only on the call that settled the whole expense.
	ExpenseCleared bool `json:"expense_cleared"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListGroupExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListGroupExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type GetBalancesRequest struct{}

type GroupBalance struct {
	GroupID    string  `json:"group_id"`
	OwedByUser string  `json:"owed_by_user"`
	OwedToUser string  `json:"owed_to_user"`
	Net        string  `json:"net"`
	Debts      []*Debt `json:"debts"`
}

type GetBalancesResponse struct {
	UserID          string          `json:"user_id"`
	TotalOwedByUser string          `json:"total_owed_by_user"`
	TotalOwedToUser string          `json:"total_owed_to_user"`
	Net             string          `json:"net"`
	Groups          []*GroupBalance `json:"groups"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type MemberBalance struct {
	UserID string `json:"user_id"`
	Net    string `json:"net"`
}

type GetGroupBalancesResponse struct {
	GroupID   string           `json:"group_id"`
	Members   []*MemberBalance `json:"members"`
	Transfers []*Debt          `json:"transfers"`
}

type CalculateEqualSplitRequest struct {
	Amount         string   `json:"amount"`
	PaidByUserID   string   `json:"paid_by_user_id"`
	ParticipantIDs []string `json:"participant_ids"`
}

type CalculateEqualSplitResponse struct {
	Shares []*Share `json:"shares"`
}

// --- GroupService ---

type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"member_ids"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type AddGroupMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type AddGroupMemberResponse struct {
	GroupID   string   `json:"group_id"`
	MemberIDs []string `json:"member_ids"`
}

type ListGroupMembersRequest struct {
	GroupID string `json:"group_id"`
}

type ListGroupMembersResponse struct {
	MemberIDs []string `json:"member_ids"`
}

// --- AuthService ---

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}
