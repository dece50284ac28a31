package calculator

import (
	"sort"

	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/money"
)

// ComputeBalances derives what userID owes and is owed from a snapshot of
// expenses. Only uncleared splits count, and a payer's own split never does.
//
// Algorithm:
//   - split owned by the user on someone else's expense: the user owes the payer
//   - split owned by someone else on the user's expense: they owe the user
//   - per group, amounts to and from the same counterparty are netted into one edge
//
// Expenses the user has no part in are ignored, so passing a wider
// snapshot is harmless.
func ComputeBalances(userID string, expenses []*models.Expense) models.BalanceSummary {
	type groupAcc struct {
		balance models.GroupBalance
		// net[counterparty] > 0 means the counterparty owes the user
		net map[string]money.Money
	}
	groups := make(map[string]*groupAcc)
	summary := models.BalanceSummary{UserID: userID}

	for _, e := range expenses {
		if !e.HasParticipant(userID) {
			continue
		}
		acc, ok := groups[e.GroupID]
		if !ok {
			acc = &groupAcc{
				balance: models.GroupBalance{GroupID: e.GroupID},
				net:     make(map[string]money.Money),
			}
			groups[e.GroupID] = acc
		}

		for _, s := range e.Splits {
			if s.Cleared || s.UserID == e.PaidByUserID {
				continue
			}
			switch userID {
			case s.UserID:
				summary.TotalOwedByUser = summary.TotalOwedByUser.Add(s.AmountOwed)
				acc.balance.OwedByUser = acc.balance.OwedByUser.Add(s.AmountOwed)
				acc.net[e.PaidByUserID] = acc.net[e.PaidByUserID].Sub(s.AmountOwed)
			case e.PaidByUserID:
				summary.TotalOwedToUser = summary.TotalOwedToUser.Add(s.AmountOwed)
				acc.balance.OwedToUser = acc.balance.OwedToUser.Add(s.AmountOwed)
				acc.net[s.UserID] = acc.net[s.UserID].Add(s.AmountOwed)
			}
		}
	}

	summary.Net = summary.TotalOwedToUser.Sub(summary.TotalOwedByUser)

	groupIDs := make([]string, 0, len(groups))
	for id := range groups {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	for _, id := range groupIDs {
		acc := groups[id]
		acc.balance.Net = acc.balance.OwedToUser.Sub(acc.balance.OwedByUser)

		counterparties := make([]string, 0, len(acc.net))
		for c := range acc.net {
			counterparties = append(counterparties, c)
		}
		sort.Strings(counterparties)
		for _, c := range counterparties {
			amt := acc.net[c]
			switch {
			case amt.IsPositive():
				acc.balance.Debts = append(acc.balance.Debts, models.DebtEdge{From: c, To: userID, Amount: amt})
			case amt.IsNegative():
				acc.balance.Debts = append(acc.balance.Debts, models.DebtEdge{From: userID, To: c, Amount: amt.Neg()})
			}
		}
		summary.PerGroup = append(summary.PerGroup, acc.balance)
	}
	return summary
}

// MemberBalance is one member's standing within a group.
type MemberBalance struct {
	UserID string
	// Net is positive when the member is owed money, negative when they owe.
	Net money.Money
}

// GroupBalances computes every member's net standing from a group's
// uncleared splits and a simplified set of transfers that would settle
// the group. Members are sorted by user ID.
func GroupBalances(expenses []*models.Expense) ([]MemberBalance, []models.DebtEdge) {
	nets := make(map[string]money.Money)
	for _, e := range expenses {
		for _, s := range e.Splits {
			if s.Cleared || s.UserID == e.PaidByUserID {
				continue
			}
			nets[e.PaidByUserID] = nets[e.PaidByUserID].Add(s.AmountOwed)
			nets[s.UserID] = nets[s.UserID].Sub(s.AmountOwed)
		}
	}

	members := make([]MemberBalance, 0, len(nets))
	for id, net := range nets {
		members = append(members, MemberBalance{UserID: id, Net: net})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })

	return members, SimplifyDebts(members)
}

// SimplifyDebts matches debtors with creditors to minimize the number of
// transfers. Largest balances are matched first; ties break on user ID so
// the result is deterministic. The input nets must sum to zero.
func SimplifyDebts(members []MemberBalance) []models.DebtEdge {
	type party struct {
		id  string
		amt money.Money
	}
	var creditors, debtors []party
	for _, m := range members {
		switch {
		case m.Net.IsPositive():
			creditors = append(creditors, party{m.UserID, m.Net})
		case m.Net.IsNegative():
			debtors = append(debtors, party{m.UserID, m.Net.Neg()})
		}
	}
	byAmount := func(ps []party) func(i, j int) bool {
		return func(i, j int) bool {
			if c := ps[i].amt.Cmp(ps[j].amt); c != 0 {
				return c > 0
			}
			return ps[i].id < ps[j].id
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	var edges []models.DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := debtors[i].amt
		if creditors[j].amt.Cmp(amount) < 0 {
			amount = creditors[j].amt
		}
		edges = append(edges, models.DebtEdge{From: debtors[i].id, To: creditors[j].id, Amount: amount})

		debtors[i].amt = debtors[i].amt.Sub(amount)
		creditors[j].amt = creditors[j].amt.Sub(amount)
		if debtors[i].amt.IsZero() {
			i++
		}
		if creditors[j].amt.IsZero() {
			j++
		}
	}
	return edges
}
