package ledger

import (
	"context"
	"fmt"

	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/metrics"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

const selfEnrollAddress = "Added via Self-Enrollment"

// EnrollMember links the person behind userID (an account id or a member id)
// into the group. A member record is created from the account when the
// person has none yet. The user and every owner are notified.
func (l *Ledger) EnrollMember(ctx context.Context, groupID, userID string) (models.Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, err := l.enroll(ctx, groupID, userID)
	metrics.ObserveOperation("enroll_member", err)
	return m, err
}

func (l *Ledger) enroll(ctx context.Context, groupID, userID string) (models.Member, error) {
	s := &l.state
	gi := s.groupIndex(groupID)
	if gi < 0 {
		return models.Member{}, ErrGroupNotFound
	}
	group := s.Groups[gi]

	linked := 0
	if li := s.linkageIndex(groupID); li >= 0 {
		linked = len(s.Linkages[li].MemberIDs)
	}
	if linked >= group.TotalMembers {
		return models.Member{}, &CapacityError{Limit: group.TotalMembers}
	}

	if l.isMemberInGroup(groupID, userID) {
		return models.Member{}, ErrAlreadyEnrolled
	}

	var account *models.AuthAccount
	if ai := s.accountIndex(userID); ai >= 0 {
		account = &s.AuthAccounts[ai]
	}

	member, ok := l.memberFor(userID)
	if !ok {
		if account == nil {
			return models.Member{}, ErrMemberNotFound
		}
		member = models.Member{
			ID:         account.ID,
			PersonID:   account.PersonID,
			Name:       account.Name,
			Phone:      account.Phone,
			Address:    selfEnrollAddress,
			JoinedDate: l.today(),
		}
		s.Members = append(s.Members, member)
		l.persist(ctx, kv.KeyMembers)
		l.log.Info("member created from account", "member_id", member.ID)
	}

	if err := l.link(ctx, groupID, member.ID); err != nil {
		return models.Member{}, err
	}

	name := "A user"
	if account != nil && account.Name != "" {
		name = account.Name
	}

	l.notify(userID, "Scheme Enrollment Successful",
		"You have successfully enrolled into the scheme.", models.NotificationSuccess)
	for _, ownerID := range l.ownerRecipients() {
		l.notify(ownerID, "New Scheme Enrollment",
			fmt.Sprintf("%s has enrolled into %s.", name, group.Name), models.NotificationInfo)
	}
	l.persist(ctx, kv.KeyNotifications)

	l.log.Info("member enrolled", "group_id", groupID, "member_id", member.ID, "user_id", userID)
	return member, nil
}

// ownerRecipients lists every owner account id plus the seed admin.
// Must hold l.mu.
func (l *Ledger) ownerRecipients() []string {
	var ids []string
	for _, a := range l.state.AuthAccounts {
		if a.Role == models.RoleOwner {
			ids = append(ids, a.ID)
		}
	}
	if seed := l.opts.SeedAdmin; seed.Username != "" && seed.ID != "" {
		ids = append(ids, seed.ID)
	}
	return ids
}
