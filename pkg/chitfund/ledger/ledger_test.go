package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mikepea/chitfund/pkg/chitfund/calculator"
	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testOptions() Options {
	n := 0
	return Options{
		OwnerSecretCode: "owner-code",
		AllowPhoneLogin: true,
		SeedAdmin: SeedAdmin{
			Username: "admin",
			ID:       "admin-seed",
			Name:     "Admin",
			Email:    "admin@example.com",
			Phone:    "9000000000",
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func setupLedger(t *testing.T) (*Ledger, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	l, err := New(context.Background(), store, testOptions())
	require.NoError(t, err)
	return l, store
}

func newGroup(total int) models.Group {
	return models.Group{
		Name:                    "Gold Scheme",
		TotalMembers:            total,
		ChitAmount:              100000,
		InstallmentAmount:       5000,
		Frequency:               models.FrequencyMonthly,
		StartDate:               "2026-01-01",
		LiftedInstallmentAmount: 5000,
	}
}

func addMembers(t *testing.T, l *Ledger, n int) []models.Member {
	t.Helper()
	ctx := context.Background()
	out := make([]models.Member, 0, n)
	for i := 0; i < n; i++ {
		m, err := l.AddMember(ctx, models.Member{
			Name:  fmt.Sprintf("Member %d", i),
			Phone: fmt.Sprintf("98765432%02d", i),
		})
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func linkAll(t *testing.T, l *Ledger, groupID string, members []models.Member) {
	t.Helper()
	for _, m := range members {
		require.NoError(t, l.LinkMemberToGroup(context.Background(), groupID, m.ID))
	}
}

// failingStore is a kv.Store whose writes can be made to fail
type failingStore struct {
	mock.Mock
}

func (f *failingStore) Load(ctx context.Context, key string) ([]byte, error) {
	args := f.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (f *failingStore) Save(ctx context.Context, key string, value []byte) error {
	return f.Called(ctx, key, value).Error(0)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	return f.Called(ctx, key).Error(0)
}

func (f *failingStore) Close() error { return nil }

func TestNewEmptyStore(t *testing.T) {
	l, _ := setupLedger(t)

	snap := l.Snapshot()
	assert.Empty(t, snap.Groups)
	assert.Empty(t, snap.Members)
	assert.Nil(t, snap.CurrentUser)
	assert.Equal(t, models.DefaultPreferences(), snap.Preferences)
}

func TestNewLoadsPersistedState(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Save(ctx, kv.KeyGroups, []byte(`[{"id":"g1","name":"Old","totalMembers":5,"chitAmount":1,"installmentAmount":1,"frequency":"Weekly"}]`)))
	require.NoError(t, store.Save(ctx, kv.KeyDarkMode, []byte(`false`)))
	require.NoError(t, store.Save(ctx, kv.KeyPageAnimation, []byte(`"zoom-in"`)))
	require.NoError(t, store.Save(ctx, kv.KeyCurrentUser, []byte(`{"id":"u1","name":"U","email":"","phone":"","role":"member"}`)))

	l, err := New(ctx, store, testOptions())
	require.NoError(t, err)

	g, err := l.Group("g1")
	require.NoError(t, err)
	assert.Equal(t, "Old", g.Name)
	assert.Equal(t, models.FrequencyWeekly, g.Frequency)

	prefs := l.Preferences()
	assert.False(t, prefs.DarkModeEnabled)
	assert.Equal(t, "zoom-in", prefs.PageAnimation)
	assert.True(t, prefs.NotificationsEnabled)

	u, ok := l.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u1", u.ID)
}

func TestNewRejectsCorruptSlot(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Save(ctx, kv.KeyMembers, []byte(`{not json`)))

	_, err := New(ctx, store, testOptions())
	assert.Error(t, err)
}

func TestLegacyAccountMigration(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Save(ctx, kv.KeyAuthAccounts, []byte(`[
		{"id":"a1","name":"Old Owner","phone":"9111111111","username":"oo","role":"owner"},
		{"id":"a2","name":"Old Member","phone":"9222222222","username":"om","role":"member"},
		{"id":"a3","name":"Approved","phone":"9333333333","username":"ap","role":"member","isApproved":true}
	]`)))

	l, err := New(ctx, store, testOptions())
	require.NoError(t, err)

	accounts := l.Accounts()
	require.Len(t, accounts, 3)
	assert.True(t, accounts[0].IsApproved, "owner without flag loads approved")
	assert.False(t, accounts[1].IsApproved, "member without flag loads unapproved")
	assert.True(t, accounts[2].IsApproved)
}

func TestPersonBackfill(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Save(ctx, kv.KeyMembers, []byte(`[{"id":"m1","name":"Ravi","phone":"9876543210"}]`)))
	require.NoError(t, store.Save(ctx, kv.KeyAuthAccounts, []byte(`[{"id":"a1","name":"Ravi","phone":"9876543210","username":"ravi","role":"member","isApproved":true}]`)))

	l, err := New(ctx, store, testOptions())
	require.NoError(t, err)

	snap := l.Snapshot()
	require.NotEmpty(t, snap.Members[0].PersonID)
	assert.Equal(t, snap.Members[0].PersonID, snap.AuthAccounts[0].PersonID)

	// Backfilled ids are written back
	raw, err := store.Load(ctx, kv.KeyMembers)
	require.NoError(t, err)
	assert.Contains(t, string(raw), snap.Members[0].PersonID)
}

func TestPersistFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	store.On("Load", mock.Anything, mock.Anything).Return(nil, kv.ErrNotFound)
	store.On("Save", mock.Anything, kv.KeyGroups, mock.Anything).Return(errors.New("disk full"))

	l, err := New(ctx, store, testOptions())
	require.NoError(t, err)

	g, err := l.AddGroup(ctx, newGroup(10))
	require.NoError(t, err, "persistence failure is not surfaced")

	got, err := l.Group(g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gold Scheme", got.Name)
	store.AssertCalled(t, "Save", mock.Anything, kv.KeyGroups, mock.Anything)
}

func TestNewLoadError(t *testing.T) {
	store := &failingStore{}
	store.On("Load", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := New(context.Background(), store, testOptions())
	assert.Error(t, err)
}

func TestSnapshotIsCopy(t *testing.T) {
	l, _ := setupLedger(t)
	ctx := context.Background()

	g, err := l.AddGroup(ctx, newGroup(5))
	require.NoError(t, err)
	members := addMembers(t, l, 1)
	linkAll(t, l, g.ID, members)

	snap := l.Snapshot()
	snap.Groups[0].Name = "mutated"
	snap.Linkages[0].MemberIDs[0] = "mutated"

	got, _ := l.Group(g.ID)
	assert.Equal(t, "Gold Scheme", got.Name)
	assert.True(t, l.IsMemberInGroup(g.ID, members[0].ID))
}

func TestRestore(t *testing.T) {
	src, _ := setupLedger(t)
	ctx := context.Background()

	g, err := src.AddGroup(ctx, newGroup(5))
	require.NoError(t, err)
	members := addMembers(t, src, 2)
	linkAll(t, src, g.ID, members)
	_, _, err = src.RecordAuction(ctx, AuctionInput{GroupID: g.ID, WinnerMemberID: members[0].ID, BidAmount: 1000, Month: 1})
	require.NoError(t, err)

	dst, store := setupLedger(t)
	require.NoError(t, dst.Restore(ctx, src.Snapshot()))

	assert.Equal(t, src.Snapshot(), dst.Snapshot())

	// Every slot was rewritten, so a fresh ledger sees the same state
	reloaded, err := New(ctx, store, testOptions())
	require.NoError(t, err)
	assert.Len(t, reloaded.Groups(), 1)
	assert.Len(t, reloaded.Members(), 2)
	assert.Len(t, reloaded.AuctionsByGroup(g.ID), 1)
}

func TestRestoreRejectsInvalidGroup(t *testing.T) {
	l, _ := setupLedger(t)

	bad := newState()
	bad.Groups = []models.Group{{ID: "g1", Name: "Broken"}}

	err := l.Restore(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, l.Groups())
}

func TestNegativePolicyDefaultsToAllow(t *testing.T) {
	opts := testOptions()
	l, err := New(context.Background(), kv.NewMemoryStore(), opts)
	require.NoError(t, err)
	assert.Equal(t, calculator.PolicyAllow, l.opts.NegativePolicy)
}

func TestRestoreMissingPreferencesKeepsDefaults(t *testing.T) {
	l, _ := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Restore(ctx, State{}))
	assert.Equal(t, models.DefaultPreferences(), l.Preferences())

	var decoded State
	require.NoError(t, json.Unmarshal([]byte(`{"groups":[]}`), &decoded))
	require.NoError(t, l.Restore(ctx, decoded))
	assert.Equal(t, models.DefaultPreferences(), l.Preferences())

	var partial State
	require.NoError(t, json.Unmarshal([]byte(`{"preferences":{"darkModeEnabled":false}}`), &partial))
	require.NoError(t, l.Restore(ctx, partial))
	prefs := l.Preferences()
	assert.False(t, prefs.DarkModeEnabled)
	assert.True(t, prefs.NotificationsEnabled)
	assert.Equal(t, "fade", prefs.PageAnimation)
}
