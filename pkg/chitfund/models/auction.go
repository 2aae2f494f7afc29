package models

// PaymentStatus is the state of one installment payment
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

// Auction records the winner of one cycle of a group.
// DividendPerMember is computed when the auction is recorded and never changes.
type Auction struct {
	ID                string  `json:"id"`
	GroupID           string  `json:"groupId"`
	WinnerMemberID    string  `json:"winnerMemberId"`
	BidAmount         float64 `json:"bidAmount"`
	DividendPerMember float64 `json:"dividendPerMember"`
	Date              string  `json:"date"`
	Month             int     `json:"month"`
}

// Payment is one member's installment for one auction
type Payment struct {
	ID        string        `json:"id"`
	AuctionID string        `json:"auctionId"`
	MemberID  string        `json:"memberId"`
	Amount    float64       `json:"amount"`
	Status    PaymentStatus `json:"status"`
	Date      string        `json:"date,omitempty"` // set only while Paid
}
