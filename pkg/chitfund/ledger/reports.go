package ledger

import (
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// recentAuctionLimit caps DashboardStats.RecentAuctions
const recentAuctionLimit = 5

// DashboardStats is the landing summary. Owners get the scheme-wide
// fields, members the personal ones.
type DashboardStats struct {
	TotalGroups     int              `json:"totalGroups"`
	TotalMembers    int              `json:"totalMembers"`
	AuctionsHeld    int              `json:"auctionsHeld"`
	TotalCollection float64          `json:"totalCollection"`
	RecentAuctions  []models.Auction `json:"recentAuctions,omitempty"`

	JoinedGroups int `json:"joinedGroups"`
	PaidCount    int `json:"paidCount"`
	PendingCount int `json:"pendingCount"`
}

// ReportRow is one payment with the member's name resolved
type ReportRow struct {
	models.Payment
	MemberName string `json:"memberName"`
}

// AuctionReport lists the payments of one auction
type AuctionReport struct {
	Auction      models.Auction `json:"auction"`
	Group        models.Group   `json:"group"`
	Rows         []ReportRow    `json:"rows"`
	PaidCount    int            `json:"paidCount"`
	PendingCount int            `json:"pendingCount"`
}

// ownIDs is every id the session user may appear under. Must hold l.mu.
func (l *Ledger) ownIDs(user models.User) map[string]bool {
	ids := l.identities(user.ID)
	if user.MemberID != "" {
		for id := range l.identities(user.MemberID) {
			ids[id] = true
		}
	}
	return ids
}

// DashboardStats summarises the ledger for user
func (l *Ledger) DashboardStats(user models.User) DashboardStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &l.state
	if user.IsOwner() {
		stats := DashboardStats{
			TotalGroups:  len(s.Groups),
			TotalMembers: len(s.Members),
			AuctionsHeld: len(s.Auctions),
		}
		for _, p := range s.Payments {
			if p.Status == models.PaymentPaid {
				stats.TotalCollection += p.Amount
			}
		}
		start := max(len(s.Auctions)-recentAuctionLimit, 0)
		for i := len(s.Auctions) - 1; i >= start; i-- {
			stats.RecentAuctions = append(stats.RecentAuctions, s.Auctions[i])
		}
		return stats
	}

	var stats DashboardStats
	for _, g := range s.Groups {
		if l.isMemberInGroup(g.ID, user.ID) {
			stats.JoinedGroups++
		}
	}
	own := l.ownIDs(user)
	for _, p := range s.Payments {
		if !own[p.MemberID] {
			continue
		}
		switch p.Status {
		case models.PaymentPaid:
			stats.PaidCount++
		case models.PaymentPending:
			stats.PendingCount++
		}
	}
	return stats
}

// AuctionReport lists the auction's payments. Members see only their own.
func (l *Ledger) AuctionReport(auctionID string, user models.User) (AuctionReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.auctionReport(auctionID, user, false)
}

// Receipts is AuctionReport restricted to Paid payments
func (l *Ledger) Receipts(auctionID string, user models.User) (AuctionReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.auctionReport(auctionID, user, true)
}

func (l *Ledger) auctionReport(auctionID string, user models.User, paidOnly bool) (AuctionReport, error) {
	s := &l.state
	ai := s.auctionIndex(auctionID)
	if ai < 0 {
		return AuctionReport{}, ErrAuctionNotFound
	}

	report := AuctionReport{Auction: s.Auctions[ai], Rows: []ReportRow{}}
	if gi := s.groupIndex(report.Auction.GroupID); gi >= 0 {
		report.Group = s.Groups[gi]
	}

	var own map[string]bool
	if !user.IsOwner() {
		own = l.ownIDs(user)
	}

	for _, p := range s.Payments {
		if p.AuctionID != auctionID {
			continue
		}
		if own != nil && !own[p.MemberID] {
			continue
		}
		if paidOnly && p.Status != models.PaymentPaid {
			continue
		}

		row := ReportRow{Payment: p}
		if mi := s.memberIndex(p.MemberID); mi >= 0 {
			row.MemberName = s.Members[mi].Name
		}
		report.Rows = append(report.Rows, row)

		if p.Status == models.PaymentPaid {
			report.PaidCount++
		} else {
			report.PendingCount++
		}
	}
	return report, nil
}
