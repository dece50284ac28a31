package calculator

import (
	"fmt"

	"github.com/namansharma3007/Equi-share/internal/money"
)

// Share is one participant's part of an equal split.
type Share struct {
	UserID string
	Amount money.Money
}

// EqualSplit divides amount evenly among participants. Shares differ by at
// most one minor unit and sum exactly to amount. The payer, when among the
// participants, is placed first and so absorbs any leftover cent:
// 100.00 over three gives the payer 33.34 and the others 33.33.
func EqualSplit(amount money.Money, payerID string, participants []string) ([]Share, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", amount)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	ordered := make([]string, 0, len(participants))
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p == "" {
			return nil, fmt.Errorf("participant id cannot be empty")
		}
		if seen[p] {
			return nil, fmt.Errorf("participant %s listed twice", p)
		}
		seen[p] = true
	}
	if seen[payerID] {
		ordered = append(ordered, payerID)
	}
	for _, p := range participants {
		if p != payerID {
			ordered = append(ordered, p)
		}
	}

	amounts := amount.Allocate(len(ordered))
	shares := make([]Share, len(ordered))
	for i, p := range ordered {
		shares[i] = Share{UserID: p, Amount: amounts[i]}
	}
	return shares, nil
}
