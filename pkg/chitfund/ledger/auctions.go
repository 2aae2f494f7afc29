package ledger

import (
	"context"
	"fmt"

	"github.com/mikepea/chitfund/pkg/chitfund/calculator"
	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/metrics"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// AuctionInput is what the owner supplies when recording an auction
type AuctionInput struct {
	GroupID        string  `json:"groupId" validate:"required"`
	WinnerMemberID string  `json:"winnerMemberId" validate:"required"`
	BidAmount      float64 `json:"bidAmount" validate:"gte=0"`
	Month          int     `json:"month" validate:"gte=1"`
}

// RecordAuction stores the auction with its frozen dividend and creates one
// Pending payment for every member linked to the group at this moment.
// Month uniqueness and winner membership are left to the caller.
func (l *Ledger) RecordAuction(ctx context.Context, in AuctionInput) (models.Auction, []models.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	auction, payments, err := l.recordAuction(ctx, in)
	metrics.ObserveOperation("record_auction", err)
	return auction, payments, err
}

func (l *Ledger) recordAuction(ctx context.Context, in AuctionInput) (models.Auction, []models.Payment, error) {
	if err := l.check(in); err != nil {
		return models.Auction{}, nil, err
	}

	s := &l.state
	gi := s.groupIndex(in.GroupID)
	if gi < 0 {
		return models.Auction{}, nil, ErrGroupNotFound
	}
	group := s.Groups[gi]

	var memberIDs []string
	if li := s.linkageIndex(group.ID); li >= 0 {
		memberIDs = s.Linkages[li].MemberIDs
	}

	settlement, err := calculator.Settle(calculator.Terms{
		TotalMembers:            group.TotalMembers,
		InstallmentAmount:       group.InstallmentAmount,
		LiftedInstallmentAmount: group.LiftedInstallmentAmount,
	}, in.BidAmount, in.WinnerMemberID, memberIDs, l.opts.NegativePolicy)
	if err != nil {
		return models.Auction{}, nil, fmt.Errorf("failed to settle auction: %w", err)
	}

	auction := models.Auction{
		ID:                l.opts.NewID(),
		GroupID:           group.ID,
		WinnerMemberID:    in.WinnerMemberID,
		BidAmount:         in.BidAmount,
		DividendPerMember: settlement.DividendPerMember,
		Date:              l.today(),
		Month:             in.Month,
	}

	payments := make([]models.Payment, 0, len(settlement.Shares))
	for _, share := range settlement.Shares {
		payments = append(payments, models.Payment{
			ID:        l.opts.NewID(),
			AuctionID: auction.ID,
			MemberID:  share.MemberID,
			Amount:    share.Amount,
			Status:    models.PaymentPending,
		})
	}

	s.Auctions = append(s.Auctions, auction)
	s.Payments = append(s.Payments, payments...)
	l.persist(ctx, kv.KeyAuctions, kv.KeyPayments)

	l.log.Info("auction recorded",
		"auction_id", auction.ID,
		"group_id", group.ID,
		"month", auction.Month,
		"winner", auction.WinnerMemberID,
		"dividend", auction.DividendPerMember,
		"payments", len(payments),
	)
	return auction, payments, nil
}

// TogglePaymentStatus flips the payment between Pending and Paid. Moving to
// Paid stamps today's date; moving back clears it.
func (l *Ledger) TogglePaymentStatus(ctx context.Context, auctionID, memberID string) (models.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &l.state
	for i := range s.Payments {
		p := &s.Payments[i]
		if p.AuctionID != auctionID || p.MemberID != memberID {
			continue
		}

		if p.Status == models.PaymentPaid {
			p.Status = models.PaymentPending
			p.Date = ""
		} else {
			p.Status = models.PaymentPaid
			p.Date = l.today()
		}
		updated := *p

		l.persist(ctx, kv.KeyPayments)
		l.log.Info("payment toggled", "auction_id", auctionID, "member_id", memberID, "status", updated.Status)
		metrics.ObserveOperation("toggle_payment", nil)
		return updated, nil
	}

	metrics.ObserveOperation("toggle_payment", ErrPaymentNotFound)
	return models.Payment{}, ErrPaymentNotFound
}

// AuctionsByGroup lists the group's auctions in recording order
func (l *Ledger) AuctionsByGroup(groupID string) []models.Auction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return filter(l.state.Auctions, func(a models.Auction) bool { return a.GroupID == groupID })
}

// Auction returns one auction
func (l *Ledger) Auction(id string) (models.Auction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.state.auctionIndex(id)
	if i < 0 {
		return models.Auction{}, ErrAuctionNotFound
	}
	return l.state.Auctions[i], nil
}

// PaymentsByAuction lists the auction's payments in creation order
func (l *Ledger) PaymentsByAuction(auctionID string) []models.Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return filter(l.state.Payments, func(p models.Payment) bool { return p.AuctionID == auctionID })
}
