package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// Preferences returns the current UI settings
func (l *Ledger) Preferences() models.Preferences {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Preferences
}

// SetPageAnimation stores one of models.PageAnimations
func (l *Ledger) SetPageAnimation(ctx context.Context, animation string) error {
	if !slices.Contains(models.PageAnimations, animation) {
		return fmt.Errorf("%w: unknown page animation %q", ErrInvalidInput, animation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Preferences.PageAnimation = animation
	l.persist(ctx, kv.KeyPageAnimation)
	return nil
}

func (l *Ledger) SetDarkMode(ctx context.Context, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Preferences.DarkModeEnabled = enabled
	l.persist(ctx, kv.KeyDarkMode)
}

func (l *Ledger) SetNotificationsEnabled(ctx context.Context, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Preferences.NotificationsEnabled = enabled
	l.persist(ctx, kv.KeyNotificationsEnabled)
}
