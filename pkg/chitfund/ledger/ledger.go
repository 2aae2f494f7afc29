// Package ledger is the chit fund service layer. It owns the in-memory state
// and exposes every bookkeeping operation with explicit errors. Each
// mutation writes the collections it changed through to a kv.Store; a
// failed write is logged and counted but never undoes the mutation.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mikepea/chitfund/pkg/chitfund/calculator"
	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/metrics"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

const dateLayout = "2006-01-02"

// SeedAdmin is the built-in owner that can log in by username alone.
// An empty Username disables it.
type SeedAdmin struct {
	Username string
	ID       string
	Name     string
	Email    string
	Phone    string
}

// Options configures a Ledger
type Options struct {
	OwnerSecretCode string
	AllowPhoneLogin bool
	SeedAdmin       SeedAdmin
	NegativePolicy  calculator.NegativePolicy
	Logger          *slog.Logger
	Clock           func() time.Time
	NewID           func() string
}

// Ledger is safe for concurrent use
type Ledger struct {
	mu       sync.Mutex
	state    State
	store    kv.Store
	opts     Options
	log      *slog.Logger
	validate *validator.Validate
}

// New loads every slot from store and returns a ready Ledger. Missing slots
// start empty. A slot that exists but cannot be decoded is an error.
func New(ctx context.Context, store kv.Store, opts Options) (*Ledger, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.NegativePolicy == "" {
		opts.NegativePolicy = calculator.PolicyAllow
	}

	l := &Ledger{
		state:    newState(),
		store:    store,
		opts:     opts,
		log:      opts.Logger.With("component", "ledger"),
		validate: validator.New(),
	}

	if err := l.load(ctx); err != nil {
		return nil, err
	}

	if changed := l.backfillPersons(); len(changed) > 0 {
		l.log.Info("assigned person ids to legacy records", "keys", changed)
		l.persist(ctx, changed...)
	}

	return l, nil
}

// legacyAccount accepts accounts saved before isApproved existed
type legacyAccount struct {
	models.AuthAccount
	IsApproved *bool `json:"isApproved"`
}

func (l *Ledger) load(ctx context.Context) error {
	s := &l.state

	targets := map[string]any{
		kv.KeyGroups:        &s.Groups,
		kv.KeyMembers:       &s.Members,
		kv.KeyOwners:        &s.Owners,
		kv.KeyLinkages:      &s.Linkages,
		kv.KeyAuctions:      &s.Auctions,
		kv.KeyPayments:      &s.Payments,
		kv.KeyCurrentUser:   &s.CurrentUser,
		kv.KeyNotifications: &s.Notifications,

		kv.KeyPageAnimation:        &s.Preferences.PageAnimation,
		kv.KeyDarkMode:             &s.Preferences.DarkModeEnabled,
		kv.KeyNotificationsEnabled: &s.Preferences.NotificationsEnabled,
	}

	for _, key := range kv.AllKeys {
		raw, err := l.store.Load(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", key, err)
		}

		if key == kv.KeyAuthAccounts {
			accounts, err := decodeAccounts(raw)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", key, err)
			}
			s.AuthAccounts = accounts
			continue
		}

		if err := json.Unmarshal(raw, targets[key]); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
	}

	l.normalize()
	return nil
}

func decodeAccounts(raw []byte) ([]models.AuthAccount, error) {
	var legacy []legacyAccount
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, err
	}
	accounts := make([]models.AuthAccount, 0, len(legacy))
	for _, la := range legacy {
		acc := la.AuthAccount
		if la.IsApproved != nil {
			acc.IsApproved = *la.IsApproved
		} else {
			acc.IsApproved = acc.Role == models.RoleOwner
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// normalize replaces JSON nulls with empty collections
func (l *Ledger) normalize() {
	s := &l.state
	if s.Groups == nil {
		s.Groups = []models.Group{}
	}
	if s.Members == nil {
		s.Members = []models.Member{}
	}
	if s.Owners == nil {
		s.Owners = []models.Owner{}
	}
	if s.Linkages == nil {
		s.Linkages = []models.Linkage{}
	}
	for i := range s.Linkages {
		if s.Linkages[i].MemberIDs == nil {
			s.Linkages[i].MemberIDs = []string{}
		}
	}
	if s.Auctions == nil {
		s.Auctions = []models.Auction{}
	}
	if s.Payments == nil {
		s.Payments = []models.Payment{}
	}
	if s.AuthAccounts == nil {
		s.AuthAccounts = []models.AuthAccount{}
	}
	if s.Notifications == nil {
		s.Notifications = []models.Notification{}
	}
	if s.Preferences == (models.Preferences{}) {
		s.Preferences = models.DefaultPreferences()
	}
	if s.Preferences.PageAnimation == "" {
		s.Preferences.PageAnimation = models.DefaultPreferences().PageAnimation
	}
}

// slotValue returns the value persisted under key. Must hold l.mu.
func (l *Ledger) slotValue(key string) any {
	s := &l.state
	switch key {
	case kv.KeyGroups:
		return s.Groups
	case kv.KeyMembers:
		return s.Members
	case kv.KeyOwners:
		return s.Owners
	case kv.KeyLinkages:
		return s.Linkages
	case kv.KeyAuctions:
		return s.Auctions
	case kv.KeyPayments:
		return s.Payments
	case kv.KeyCurrentUser:
		return s.CurrentUser
	case kv.KeyAuthAccounts:
		return s.AuthAccounts
	case kv.KeyNotifications:
		return s.Notifications
	case kv.KeyPageAnimation:
		return s.Preferences.PageAnimation
	case kv.KeyDarkMode:
		return s.Preferences.DarkModeEnabled
	case kv.KeyNotificationsEnabled:
		return s.Preferences.NotificationsEnabled
	}
	return nil
}

// persist rewrites each named collection in full. Must hold l.mu.
func (l *Ledger) persist(ctx context.Context, keys ...string) {
	for _, key := range keys {
		data, err := json.Marshal(l.slotValue(key))
		if err == nil {
			err = l.store.Save(ctx, key, data)
		}
		if err != nil {
			metrics.PersistFailures.WithLabelValues(key).Inc()
			l.log.Error("failed to persist collection", "key", key, "error", err)
		}
	}
}

func (l *Ledger) today() string {
	return l.opts.Clock().Format(dateLayout)
}

func (l *Ledger) check(v any) error {
	if err := l.validate.Struct(v); err != nil {
		return invalidInput(err)
	}
	return nil
}

// Snapshot returns a deep copy of the full state
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

// Restore replaces the full state and rewrites every slot
func (l *Ledger) Restore(ctx context.Context, s State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, g := range s.Groups {
		if err := l.check(g); err != nil {
			return fmt.Errorf("group %s: %w", g.ID, err)
		}
	}

	l.state = s.clone()
	l.normalize()
	l.backfillPersons()
	l.persist(ctx, kv.AllKeys...)

	l.log.Info("state restored",
		"groups", len(l.state.Groups),
		"members", len(l.state.Members),
		"auctions", len(l.state.Auctions),
		"accounts", len(l.state.AuthAccounts),
	)
	metrics.ObserveOperation("restore", nil)
	return nil
}
