package ledger

import (
	"context"
	"fmt"

	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/metrics"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// LinkMemberToGroup adds memberID to the group's linkage, creating the
// linkage if needed. Linking an already linked member changes nothing.
func (l *Ledger) LinkMemberToGroup(ctx context.Context, groupID, memberID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.link(ctx, groupID, memberID)
	metrics.ObserveOperation("link_member", err)
	return err
}

// link does the work of LinkMemberToGroup. Must hold l.mu.
func (l *Ledger) link(ctx context.Context, groupID, memberID string) error {
	if groupID == "" || memberID == "" {
		return fmt.Errorf("%w: group and member are required", ErrInvalidInput)
	}
	s := &l.state
	if s.groupIndex(groupID) < 0 {
		return ErrGroupNotFound
	}
	if s.memberIndex(memberID) < 0 {
		return ErrMemberNotFound
	}

	i := s.linkageIndex(groupID)
	if i < 0 {
		s.Linkages = append(s.Linkages, models.Linkage{GroupID: groupID, MemberIDs: []string{memberID}})
	} else {
		if s.Linkages[i].Has(memberID) {
			return nil
		}
		s.Linkages[i].MemberIDs = append(s.Linkages[i].MemberIDs, memberID)
	}

	l.persist(ctx, kv.KeyLinkages)
	l.log.Info("member linked", "group_id", groupID, "member_id", memberID)
	return nil
}

// UnlinkMemberFromGroup removes memberID from the group's linkage and drops
// that member's payments for every auction of the group
func (l *Ledger) UnlinkMemberFromGroup(ctx context.Context, groupID, memberID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &l.state
	if s.groupIndex(groupID) < 0 {
		metrics.ObserveOperation("unlink_member", ErrGroupNotFound)
		return ErrGroupNotFound
	}

	if i := s.linkageIndex(groupID); i >= 0 {
		s.Linkages[i].MemberIDs = filter(s.Linkages[i].MemberIDs, func(mid string) bool { return mid != memberID })
	}

	groupAuctions := make(map[string]bool)
	for _, a := range s.Auctions {
		if a.GroupID == groupID {
			groupAuctions[a.ID] = true
		}
	}
	s.Payments = filter(s.Payments, func(p models.Payment) bool {
		return !(groupAuctions[p.AuctionID] && p.MemberID == memberID)
	})

	l.persist(ctx, kv.KeyLinkages, kv.KeyPayments)

	l.log.Info("member unlinked", "group_id", groupID, "member_id", memberID)
	metrics.ObserveOperation("unlink_member", nil)
	return nil
}

// MembersInGroup joins the group's linkage against the member records.
// An unknown group has no members.
func (l *Ledger) MembersInGroup(groupID string) []models.Member {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.membersInGroup(groupID)
}

func (l *Ledger) membersInGroup(groupID string) []models.Member {
	i := l.state.linkageIndex(groupID)
	if i < 0 {
		return []models.Member{}
	}
	linkage := l.state.Linkages[i]
	return filter(l.state.Members, func(m models.Member) bool { return linkage.Has(m.ID) })
}

// Linkages returns a copy of every linkage
func (l *Ledger) Linkages() []models.Linkage {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Linkage, len(l.state.Linkages))
	for i, lk := range l.state.Linkages {
		out[i] = cloneLinkage(lk)
	}
	return out
}
