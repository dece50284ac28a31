package models

import "github.com/namansharma3007/Equi-share/internal/money"

// BalanceSummary is the derived view of what one user owes and is owed
// across every group they take part in. It is recomputed on every read.
type BalanceSummary struct {
	UserID string

	// TotalOwedByUser sums the user's uncleared splits on expenses paid by someone else.
	TotalOwedByUser money.Money

	// TotalOwedToUser sums other members' uncleared splits on expenses the user paid.
	TotalOwedToUser money.Money

	// Net is TotalOwedToUser - TotalOwedByUser. Positive means the user is owed money.
	Net money.Money

	PerGroup []GroupBalance
}

// GroupBalance is the part of a BalanceSummary that comes from one group.
type GroupBalance struct {
	GroupID    string
	OwedByUser money.Money
	OwedToUser money.Money
	Net        money.Money

	// Debts lists the uncleared amounts between the user and each counterparty.
	Debts []DebtEdge
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount money.Money
}
