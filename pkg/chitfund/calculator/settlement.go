package calculator

import (
	"errors"
	"fmt"
)

// NegativePolicy decides what happens when the dividend exceeds the
// installment and the non-winner amount would drop below zero
type NegativePolicy string

const (
	// PolicyAllow keeps the negative amount as computed
	PolicyAllow NegativePolicy = "allow"
	// PolicyClamp raises negative amounts to zero
	PolicyClamp NegativePolicy = "clamp"
	// PolicyReject refuses to settle the auction
	PolicyReject NegativePolicy = "reject"
)

// ErrNegativeInstallment is returned under PolicyReject
var ErrNegativeInstallment = errors.New("dividend exceeds installment amount")

// ParsePolicy converts a config value to a NegativePolicy
func ParsePolicy(s string) (NegativePolicy, error) {
	switch NegativePolicy(s) {
	case PolicyAllow, PolicyClamp, PolicyReject:
		return NegativePolicy(s), nil
	case "":
		return PolicyAllow, nil
	}
	return "", fmt.Errorf("unknown negative installment policy %q", s)
}

// Terms are the parts of a group that settlement depends on
type Terms struct {
	TotalMembers            int
	InstallmentAmount       float64
	LiftedInstallmentAmount float64
}

// Share is the amount one member owes for an auction
type Share struct {
	MemberID string
	Amount   float64
}

// Settlement is the result of settling one auction
type Settlement struct {
	DividendPerMember float64
	AmountToPay       float64 // owed by every member except the winner
	Shares            []Share
}

// Settle splits an auction bid across the linked members.
//
//	dividend = bid / totalMembers
//	winner pays the lifted installment
//	everyone else pays installment - dividend
//
// The dividend is divided by the scheme size, not by the number of linked
// members, and is not rounded. One share is produced per entry in memberIDs,
// in order.
func Settle(terms Terms, bidAmount float64, winnerID string, memberIDs []string, policy NegativePolicy) (*Settlement, error) {
	if terms.TotalMembers <= 0 {
		return nil, fmt.Errorf("total members must be positive, got %d", terms.TotalMembers)
	}

	dividend := bidAmount / float64(terms.TotalMembers)
	amountToPay := terms.InstallmentAmount - dividend

	if amountToPay < 0 {
		switch policy {
		case PolicyClamp:
			amountToPay = 0
		case PolicyReject:
			return nil, fmt.Errorf("%w: dividend %.2f, installment %.2f",
				ErrNegativeInstallment, dividend, terms.InstallmentAmount)
		}
	}

	shares := make([]Share, len(memberIDs))
	for i, id := range memberIDs {
		amount := amountToPay
		if id == winnerID {
			amount = terms.LiftedInstallmentAmount
		}
		shares[i] = Share{MemberID: id, Amount: amount}
	}

	return &Settlement{
		DividendPerMember: dividend,
		AmountToPay:       amountToPay,
		Shares:            shares,
	}, nil
}
