package ledger

import (
	"context"

	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/metrics"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// GroupPatch holds the fields to change in UpdateGroup. Nil fields are kept.
type GroupPatch struct {
	Name                    *string           `json:"name"`
	TotalMembers            *int              `json:"totalMembers"`
	ChitAmount              *float64          `json:"chitAmount"`
	InstallmentAmount       *float64          `json:"installmentAmount"`
	Frequency               *models.Frequency `json:"frequency"`
	StartDate               *string           `json:"startDate"`
	LiftedInstallmentAmount *float64          `json:"liftedInstallmentAmount"`
}

func (p GroupPatch) apply(g *models.Group) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.TotalMembers != nil {
		g.TotalMembers = *p.TotalMembers
	}
	if p.ChitAmount != nil {
		g.ChitAmount = *p.ChitAmount
	}
	if p.InstallmentAmount != nil {
		g.InstallmentAmount = *p.InstallmentAmount
	}
	if p.Frequency != nil {
		g.Frequency = *p.Frequency
	}
	if p.StartDate != nil {
		g.StartDate = *p.StartDate
	}
	if p.LiftedInstallmentAmount != nil {
		g.LiftedInstallmentAmount = *p.LiftedInstallmentAmount
	}
}

// AddGroup creates a group with a fresh id
func (l *Ledger) AddGroup(ctx context.Context, g models.Group) (models.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g.ID = l.opts.NewID()
	if err := l.check(g); err != nil {
		metrics.ObserveOperation("add_group", err)
		return models.Group{}, err
	}

	l.state.Groups = append(l.state.Groups, g)
	l.persist(ctx, kv.KeyGroups)

	l.log.Info("group added", "group_id", g.ID, "name", g.Name)
	metrics.ObserveOperation("add_group", nil)
	return g, nil
}

// UpdateGroup merges patch into the group. The merged group must still be
// valid.
func (l *Ledger) UpdateGroup(ctx context.Context, id string, patch GroupPatch) (models.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.state.groupIndex(id)
	if i < 0 {
		metrics.ObserveOperation("update_group", ErrGroupNotFound)
		return models.Group{}, ErrGroupNotFound
	}

	updated := l.state.Groups[i]
	patch.apply(&updated)
	if err := l.check(updated); err != nil {
		metrics.ObserveOperation("update_group", err)
		return models.Group{}, err
	}

	l.state.Groups[i] = updated
	l.persist(ctx, kv.KeyGroups)

	l.log.Info("group updated", "group_id", id)
	metrics.ObserveOperation("update_group", nil)
	return updated, nil
}

// DeleteGroup removes the group together with its linkage, its auctions and
// every payment of those auctions
func (l *Ledger) DeleteGroup(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &l.state
	if s.groupIndex(id) < 0 {
		metrics.ObserveOperation("delete_group", ErrGroupNotFound)
		return ErrGroupNotFound
	}

	// Collect auction ids before the auctions themselves are dropped
	doomed := make(map[string]bool)
	for _, a := range s.Auctions {
		if a.GroupID == id {
			doomed[a.ID] = true
		}
	}

	s.Groups = filter(s.Groups, func(g models.Group) bool { return g.ID != id })
	s.Linkages = filter(s.Linkages, func(lk models.Linkage) bool { return lk.GroupID != id })
	s.Auctions = filter(s.Auctions, func(a models.Auction) bool { return a.GroupID != id })
	s.Payments = filter(s.Payments, func(p models.Payment) bool { return !doomed[p.AuctionID] })

	l.persist(ctx, kv.KeyGroups, kv.KeyLinkages, kv.KeyAuctions, kv.KeyPayments)

	l.log.Info("group deleted", "group_id", id, "auctions_removed", len(doomed))
	metrics.ObserveOperation("delete_group", nil)
	return nil
}

// Groups lists every group in creation order
func (l *Ledger) Groups() []models.Group {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Group{}, l.state.Groups...)
}

// Group returns one group
func (l *Ledger) Group(id string) (models.Group, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.state.groupIndex(id)
	if i < 0 {
		return models.Group{}, ErrGroupNotFound
	}
	return l.state.Groups[i], nil
}

// filter keeps the elements for which keep returns true, in order
func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
