package ledger

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/metrics"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// LoginResult is the outcome of Login
type LoginResult string

const (
	LoginSuccess LoginResult = "success"
	LoginPending LoginResult = "pending"
	LoginInvalid LoginResult = "invalid"
)

// PhoneLoginEmail is the email given to sessions opened by phone number
const PhoneLoginEmail = "member@chitfund.local"

// SignUpRequest is the account data supplied at registration
type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=4"`
}

// personForPhone returns the person id already carried by an account or
// member with this phone, or a new one. Accounts win over members. Must hold
// l.mu.
func (l *Ledger) personForPhone(phone string) string {
	return l.personForPhoneExcept(phone, "")
}

// personForPhoneExcept is personForPhone ignoring the record with id skip
func (l *Ledger) personForPhoneExcept(phone, skip string) string {
	if phone != "" {
		for _, a := range l.state.AuthAccounts {
			if a.ID != skip && a.Phone == phone && a.PersonID != "" {
				return a.PersonID
			}
		}
		for _, m := range l.state.Members {
			if m.ID != skip && m.Phone == phone && m.PersonID != "" {
				return m.PersonID
			}
		}
	}
	return l.opts.NewID()
}

// backfillPersons gives a person id to every member and account saved
// without one, pairing records by phone. Returns the keys it changed.
// Must hold l.mu.
func (l *Ledger) backfillPersons() []string {
	var changed []string
	s := &l.state

	dirty := false
	for i := range s.Members {
		if s.Members[i].PersonID == "" {
			s.Members[i].PersonID = l.personForPhone(s.Members[i].Phone)
			dirty = true
		}
	}
	if dirty {
		changed = append(changed, kv.KeyMembers)
	}

	dirty = false
	for i := range s.AuthAccounts {
		if s.AuthAccounts[i].PersonID == "" {
			s.AuthAccounts[i].PersonID = l.personForPhone(s.AuthAccounts[i].Phone)
			dirty = true
		}
	}
	if dirty {
		changed = append(changed, kv.KeyAuthAccounts)
	}
	return changed
}

// personOf returns the person id behind an account id or a member id.
// Must hold l.mu.
func (l *Ledger) personOf(id string) string {
	if i := l.state.accountIndex(id); i >= 0 {
		return l.state.AuthAccounts[i].PersonID
	}
	if i := l.state.memberIndex(id); i >= 0 {
		return l.state.Members[i].PersonID
	}
	return ""
}

// identities returns every account and member id that stands for the same
// person as id, including id itself. Must hold l.mu.
func (l *Ledger) identities(id string) map[string]bool {
	ids := map[string]bool{id: true}
	person := l.personOf(id)
	if person == "" {
		return ids
	}
	for _, a := range l.state.AuthAccounts {
		if a.PersonID == person {
			ids[a.ID] = true
		}
	}
	for _, m := range l.state.Members {
		if m.PersonID == person {
			ids[m.ID] = true
		}
	}
	return ids
}

// memberFor returns the member record of the person behind id. Must hold l.mu.
func (l *Ledger) memberFor(id string) (models.Member, bool) {
	if i := l.state.memberIndex(id); i >= 0 {
		return l.state.Members[i], true
	}
	person := l.personOf(id)
	if person == "" {
		return models.Member{}, false
	}
	for _, m := range l.state.Members {
		if m.PersonID == person {
			return m, true
		}
	}
	return models.Member{}, false
}

// IsMemberInGroup reports whether the person behind candidateID, known by an
// account id or a member id, is linked to the group
func (l *Ledger) IsMemberInGroup(groupID, candidateID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isMemberInGroup(groupID, candidateID)
}

func (l *Ledger) isMemberInGroup(groupID, candidateID string) bool {
	i := l.state.linkageIndex(groupID)
	if i < 0 {
		return false
	}
	linkage := l.state.Linkages[i]
	for id := range l.identities(candidateID) {
		if linkage.Has(id) {
			return true
		}
	}
	return false
}

// SignUp registers an account. Owners must present the owner secret code and
// are approved at once; members wait for approval.
func (l *Ledger) SignUp(ctx context.Context, req SignUpRequest, role models.Role, secretCode string) (models.AuthAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, err := l.signUp(ctx, req, role, secretCode)
	metrics.ObserveOperation("sign_up", err)
	return acc, err
}

func (l *Ledger) signUp(ctx context.Context, req SignUpRequest, role models.Role, secretCode string) (models.AuthAccount, error) {
	if err := l.check(req); err != nil {
		return models.AuthAccount{}, err
	}

	switch role {
	case models.RoleOwner:
		if !l.validSecret(secretCode) {
			return models.AuthAccount{}, ErrInvalidSecret
		}
	case models.RoleMember:
	default:
		return models.AuthAccount{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	for _, a := range l.state.AuthAccounts {
		if a.Username == req.Username {
			return models.AuthAccount{}, ErrUsernameTaken
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.AuthAccount{}, fmt.Errorf("failed to hash password: %w", err)
	}

	acc := models.AuthAccount{
		ID:           l.opts.NewID(),
		PersonID:     l.personForPhone(req.Phone),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
		IsApproved:   role == models.RoleOwner,
	}

	l.state.AuthAccounts = append(l.state.AuthAccounts, acc)
	l.persist(ctx, kv.KeyAuthAccounts)

	l.log.Info("account registered", "account_id", acc.ID, "role", acc.Role, "approved", acc.IsApproved)
	return acc, nil
}

func (l *Ledger) validSecret(code string) bool {
	want := l.opts.OwnerSecretCode
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(want)) == 1
}

// Login resolves credentials to a session. The order is: seed admin,
// username and password, then phone number if phone login is allowed.
// On success the session becomes the current user.
func (l *Ledger) Login(ctx context.Context, username, password string) (models.User, LoginResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	user, result := l.resolveLogin(username, password)
	metrics.LoginAttempts.WithLabelValues(string(result)).Inc()
	if result != LoginSuccess {
		l.log.Info("login refused", "username", username, "result", result)
		return models.User{}, result
	}

	l.state.CurrentUser = &user
	l.persist(ctx, kv.KeyCurrentUser)

	l.log.Info("login", "user_id", user.ID, "role", user.Role)
	return user, LoginSuccess
}

func (l *Ledger) resolveLogin(username, password string) (models.User, LoginResult) {
	seed := l.opts.SeedAdmin
	if seed.Username != "" && strings.EqualFold(username, seed.Username) {
		return models.User{
			ID:    seed.ID,
			Name:  seed.Name,
			Email: seed.Email,
			Phone: seed.Phone,
			Role:  models.RoleOwner,
		}, LoginSuccess
	}

	for _, acc := range l.state.AuthAccounts {
		if acc.Username != username || !auth.CheckPassword(password, acc.PasswordHash) {
			continue
		}
		if acc.Role != models.RoleOwner && !acc.IsApproved {
			return models.User{}, LoginPending
		}

		user := models.User{
			ID:    acc.ID,
			Name:  acc.Name,
			Email: acc.Email,
			Phone: acc.Phone,
			Role:  acc.Role,
		}
		if m, ok := l.memberFor(acc.ID); ok {
			user.MemberID = m.ID
		} else if acc.Role == models.RoleMember {
			user.MemberID = acc.ID
		}
		return user, LoginSuccess
	}

	if l.opts.AllowPhoneLogin && username != "" {
		for _, m := range l.state.Members {
			if m.Phone == username {
				return models.User{
					ID:       m.ID,
					Name:     m.Name,
					Email:    PhoneLoginEmail,
					Phone:    m.Phone,
					Role:     models.RoleMember,
					MemberID: m.ID,
				}, LoginSuccess
			}
		}
	}

	return models.User{}, LoginInvalid
}

// Logout clears the current user
func (l *Ledger) Logout(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.CurrentUser = nil
	l.persist(ctx, kv.KeyCurrentUser)
	l.log.Info("logout")
}

// CurrentUser returns the last logged-in session, if any
func (l *Ledger) CurrentUser() (models.User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.CurrentUser == nil {
		return models.User{}, false
	}
	return *l.state.CurrentUser, true
}

// ResetPassword sets a new password on the account registered with phone
func (l *Ledger) ResetPassword(ctx context.Context, phone, newPassword string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.resetPassword(ctx, phone, newPassword)
	metrics.ObserveOperation("reset_password", err)
	return err
}

func (l *Ledger) resetPassword(ctx context.Context, phone, newPassword string) error {
	if phone == "" || newPassword == "" {
		return fmt.Errorf("%w: phone and new password are required", ErrInvalidInput)
	}

	for i := range l.state.AuthAccounts {
		if l.state.AuthAccounts[i].Phone != phone {
			continue
		}
		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		l.state.AuthAccounts[i].PasswordHash = hash
		l.persist(ctx, kv.KeyAuthAccounts)

		l.log.Info("password reset", "account_id", l.state.AuthAccounts[i].ID)
		return nil
	}
	return ErrAccountNotFound
}

// ApproveAccount lets a member account log in
func (l *Ledger) ApproveAccount(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.state.accountIndex(id)
	if i < 0 {
		metrics.ObserveOperation("approve_account", ErrAccountNotFound)
		return ErrAccountNotFound
	}

	l.state.AuthAccounts[i].IsApproved = true
	l.persist(ctx, kv.KeyAuthAccounts)

	l.log.Info("account approved", "account_id", id)
	metrics.ObserveOperation("approve_account", nil)
	return nil
}

// DeleteAuthAccount removes the login. Member records are left alone.
func (l *Ledger) DeleteAuthAccount(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.accountIndex(id) < 0 {
		metrics.ObserveOperation("delete_account", ErrAccountNotFound)
		return ErrAccountNotFound
	}

	l.state.AuthAccounts = filter(l.state.AuthAccounts, func(a models.AuthAccount) bool { return a.ID != id })
	l.persist(ctx, kv.KeyAuthAccounts)

	l.log.Info("account deleted", "account_id", id)
	metrics.ObserveOperation("delete_account", nil)
	return nil
}

// Accounts lists every registered account
func (l *Ledger) Accounts() []models.AuthAccount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.AuthAccount{}, l.state.AuthAccounts...)
}

// Account returns one account
func (l *Ledger) Account(id string) (models.AuthAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.state.accountIndex(id)
	if i < 0 {
		return models.AuthAccount{}, ErrAccountNotFound
	}
	return l.state.AuthAccounts[i], nil
}
