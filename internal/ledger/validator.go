package ledger

import (
	"context"
	"strings"

	"github.com/namansharma3007/Equi-share/internal/money"
	"github.com/namansharma3007/Equi-share/internal/storage"
)

// DefaultTolerance is how far, in minor units, the split total may drift
// from the expense amount. Equal division cannot always be distributed
// without a remainder; the remainder is accepted, never corrected.
const DefaultTolerance int64 = 1

// SplitInput is one requested share of an expense.
type SplitInput struct {
	UserID     string
	AmountOwed money.Money
}

// CreateExpenseInput is a proposed expense as received from a caller.
type CreateExpenseInput struct {
	CallerID     string
	Name         string
	Amount       money.Money
	GroupID      string
	PaidByUserID string
	Splits       []SplitInput
}

// NormalizedExpense is an input that passed validation. Splits keep the
// request order.
type NormalizedExpense struct {
	Name          string
	Amount        money.Money
	GroupID       string
	PaidByUserID  string
	CreatorUserID string
	Splits        []SplitInput
}

// Validator rejects invalid expense requests before anything is written.
type Validator struct {
	groups            storage.GroupDirectory
	tolerance         int64
	enforceMembership bool
}

// NewValidator builds a validator. A negative tolerance is treated as zero.
func NewValidator(groups storage.GroupDirectory, tolerance int64, enforceMembership bool) *Validator {
	if tolerance < 0 {
		tolerance = 0
	}
	return &Validator{groups: groups, tolerance: tolerance, enforceMembership: enforceMembership}
}

// Validate runs the checks cheapest first: field presence, amounts,
// uniqueness, totals, then the group directory lookups.
func (v *Validator) Validate(ctx context.Context, in CreateExpenseInput) (NormalizedExpense, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case in.CallerID == "":
		return NormalizedExpense{}, detail(ErrMissingField, "caller")
	case name == "":
		return NormalizedExpense{}, detail(ErrMissingField, "name")
	case in.GroupID == "":
		return NormalizedExpense{}, detail(ErrMissingField, "group_id")
	case in.PaidByUserID == "":
		return NormalizedExpense{}, detail(ErrMissingField, "paid_by_user_id")
	case len(in.Splits) == 0:
		return NormalizedExpense{}, detail(ErrMissingField, "splits")
	}
	for i, s := range in.Splits {
		if s.UserID == "" {
			return NormalizedExpense{}, detail(ErrMissingField, "splits[%d].user_id", i)
		}
	}

	if !in.Amount.IsPositive() {
		return NormalizedExpense{}, detail(ErrNonPositiveAmount, "got %s", in.Amount)
	}
	if in.Amount.Cmp(money.MaxAmount) > 0 {
		return NormalizedExpense{}, detail(ErrAmountTooLarge, "got %s, max %s", in.Amount, money.MaxAmount)
	}
	for _, s := range in.Splits {
		if s.AmountOwed.IsNegative() {
			return NormalizedExpense{}, detail(ErrNegativeSplit, "%s owes %s", s.UserID, s.AmountOwed)
		}
		if s.AmountOwed.Cmp(money.MaxAmount) > 0 {
			return NormalizedExpense{}, detail(ErrAmountTooLarge, "%s owes %s, max %s", s.UserID, s.AmountOwed, money.MaxAmount)
		}
	}

	seen := make(map[string]struct{}, len(in.Splits))
	for _, s := range in.Splits {
		if _, dup := seen[s.UserID]; dup {
			return NormalizedExpense{}, detail(ErrDuplicateSplitMember, "%s", s.UserID)
		}
		seen[s.UserID] = struct{}{}
	}

	total := money.Zero
	for _, s := range in.Splits {
		var err error
		if total, err = total.AddChecked(s.AmountOwed); err != nil {
			return NormalizedExpense{}, detail(ErrSplitMismatch, "splits total overflows")
		}
	}
	if !total.ApproxEqual(in.Amount, v.tolerance) {
		return NormalizedExpense{}, detail(ErrSplitMismatch, "splits total %s, amount is %s", total, in.Amount)
	}

	exists, err := v.groups.GroupExists(ctx, in.GroupID)
	if err != nil {
		return NormalizedExpense{}, aborted("check group", err)
	}
	if !exists {
		return NormalizedExpense{}, detail(ErrGroupNotFound, "%s", in.GroupID)
	}

	if v.enforceMembership {
		users := make([]string, 0, len(in.Splits)+1)
		users = append(users, in.PaidByUserID)
		for _, s := range in.Splits {
			if s.UserID != in.PaidByUserID {
				users = append(users, s.UserID)
			}
		}
		for _, u := range users {
			ok, err := v.groups.IsMember(ctx, in.GroupID, u)
			if err != nil {
				return NormalizedExpense{}, aborted("check membership", err)
			}
			if !ok {
				return NormalizedExpense{}, detail(ErrNotAGroupMember, "%s in group %s", u, in.GroupID)
			}
		}
	}

	splits := make([]SplitInput, len(in.Splits))
	copy(splits, in.Splits)
	return NormalizedExpense{
		Name:          name,
		Amount:        in.Amount,
		GroupID:       in.GroupID,
		PaidByUserID:  in.PaidByUserID,
		CreatorUserID: in.CallerID,
		Splits:        splits,
	}, nil
}
