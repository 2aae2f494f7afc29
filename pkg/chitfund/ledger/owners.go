package ledger

import (
	"context"

	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/metrics"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// OwnerPatch holds the fields to change in UpdateOwner
type OwnerPatch struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"companyName"`
}

func (l *Ledger) AddOwner(ctx context.Context, o models.Owner) (models.Owner, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o.ID = l.opts.NewID()
	if err := l.check(o); err != nil {
		metrics.ObserveOperation("add_owner", err)
		return models.Owner{}, err
	}

	l.state.Owners = append(l.state.Owners, o)
	l.persist(ctx, kv.KeyOwners)

	l.log.Info("owner added", "owner_id", o.ID)
	metrics.ObserveOperation("add_owner", nil)
	return o, nil
}

func (l *Ledger) UpdateOwner(ctx context.Context, id string, patch OwnerPatch) (models.Owner, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.state.ownerIndex(id)
	if i < 0 {
		metrics.ObserveOperation("update_owner", ErrOwnerNotFound)
		return models.Owner{}, ErrOwnerNotFound
	}

	updated := l.state.Owners[i]
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Phone != nil {
		updated.Phone = *patch.Phone
	}
	if patch.CompanyName != nil {
		updated.CompanyName = *patch.CompanyName
	}
	if err := l.check(updated); err != nil {
		metrics.ObserveOperation("update_owner", err)
		return models.Owner{}, err
	}

	l.state.Owners[i] = updated
	l.persist(ctx, kv.KeyOwners)

	l.log.Info("owner updated", "owner_id", id)
	metrics.ObserveOperation("update_owner", nil)
	return updated, nil
}

func (l *Ledger) DeleteOwner(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.ownerIndex(id) < 0 {
		metrics.ObserveOperation("delete_owner", ErrOwnerNotFound)
		return ErrOwnerNotFound
	}

	l.state.Owners = filter(l.state.Owners, func(o models.Owner) bool { return o.ID != id })
	l.persist(ctx, kv.KeyOwners)

	l.log.Info("owner deleted", "owner_id", id)
	metrics.ObserveOperation("delete_owner", nil)
	return nil
}

func (l *Ledger) Owners() []models.Owner {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Owner{}, l.state.Owners...)
}

func (l *Ledger) Owner(id string) (models.Owner, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.state.ownerIndex(id)
	if i < 0 {
		return models.Owner{}, ErrOwnerNotFound
	}
	return l.state.Owners[i], nil
}
