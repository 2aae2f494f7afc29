// Package kv is the persistence adapter for the ledger. Every collection is
// written whole, as one JSON document, under a fixed key.
package kv

import (
	"context"
	"errors"
)

// Collection keys. Each is read independently at startup.
const (
	KeyGroups        = "groups"
	KeyMembers       = "members"
	KeyOwners        = "owners"
	KeyLinkages      = "linkages"
	KeyAuctions      = "auctions"
	KeyPayments      = "payments"
	KeyCurrentUser   = "currentUser"
	KeyAuthAccounts  = "authAccounts"
	KeyNotifications = "notifications"

	KeyPageAnimation        = "pageAnimation"
	KeyDarkMode             = "darkMode"
	KeyNotificationsEnabled = "notificationsEnabled"
)

// AllKeys lists every slot in load order
var AllKeys = []string{
	KeyGroups,
	KeyMembers,
	KeyOwners,
	KeyLinkages,
	KeyAuctions,
	KeyPayments,
	KeyCurrentUser,
	KeyAuthAccounts,
	KeyNotifications,
	KeyPageAnimation,
	KeyDarkMode,
	KeyNotificationsEnabled,
}

// ErrNotFound is returned by Load when a key has never been saved
var ErrNotFound = errors.New("kv: key not found")

// Store is a durable key-value slot store.
// Save overwrites the whole value; there are no partial writes.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
