package ledger

import (
	"context"

	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/metrics"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// MemberPatch holds the fields to change in UpdateMember
type MemberPatch struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// AddMember creates a member with a fresh id and today's joined date.
// The member shares a person id with any account that has the same phone.
func (l *Ledger) AddMember(ctx context.Context, m models.Member) (models.Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m.ID = l.opts.NewID()
	m.JoinedDate = l.today()
	if err := l.check(m); err != nil {
		metrics.ObserveOperation("add_member", err)
		return models.Member{}, err
	}
	m.PersonID = l.personForPhone(m.Phone)

	l.state.Members = append(l.state.Members, m)
	l.persist(ctx, kv.KeyMembers)

	l.log.Info("member added", "member_id", m.ID, "person_id", m.PersonID)
	metrics.ObserveOperation("add_member", nil)
	return m, nil
}

// UpdateMember merges patch into the member. A new phone moves the member to
// the person that phone belongs to, or to a fresh person.
func (l *Ledger) UpdateMember(ctx context.Context, id string, patch MemberPatch) (models.Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.state.memberIndex(id)
	if i < 0 {
		metrics.ObserveOperation("update_member", ErrMemberNotFound)
		return models.Member{}, ErrMemberNotFound
	}

	updated := l.state.Members[i]
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Phone != nil && *patch.Phone != updated.Phone {
		updated.Phone = *patch.Phone
		updated.PersonID = l.personForPhoneExcept(updated.Phone, id)
	}
	if patch.Address != nil {
		updated.Address = *patch.Address
	}
	if err := l.check(updated); err != nil {
		metrics.ObserveOperation("update_member", err)
		return models.Member{}, err
	}

	l.state.Members[i] = updated
	l.persist(ctx, kv.KeyMembers)

	l.log.Info("member updated", "member_id", id, "person_id", updated.PersonID)
	metrics.ObserveOperation("update_member", nil)
	return updated, nil
}

// DeleteMember removes the member from every linkage and drops every auction
// it won and every payment naming it
func (l *Ledger) DeleteMember(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &l.state
	if s.memberIndex(id) < 0 {
		metrics.ObserveOperation("delete_member", ErrMemberNotFound)
		return ErrMemberNotFound
	}

	s.Members = filter(s.Members, func(m models.Member) bool { return m.ID != id })
	for i := range s.Linkages {
		s.Linkages[i].MemberIDs = filter(s.Linkages[i].MemberIDs, func(mid string) bool { return mid != id })
	}
	s.Auctions = filter(s.Auctions, func(a models.Auction) bool { return a.WinnerMemberID != id })
	s.Payments = filter(s.Payments, func(p models.Payment) bool { return p.MemberID != id })

	l.persist(ctx, kv.KeyMembers, kv.KeyLinkages, kv.KeyAuctions, kv.KeyPayments)

	l.log.Info("member deleted", "member_id", id)
	metrics.ObserveOperation("delete_member", nil)
	return nil
}

// Members lists every member in creation order
func (l *Ledger) Members() []models.Member {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Member{}, l.state.Members...)
}

// Member returns one member
func (l *Ledger) Member(id string) (models.Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.state.memberIndex(id)
	if i < 0 {
		return models.Member{}, ErrMemberNotFound
	}
	return l.state.Members[i], nil
}
