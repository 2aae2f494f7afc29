package models

// Role is the role of an account or session
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// AuthAccount is a login identity created at sign-up
type AuthAccount struct {
	ID           string `json:"id"`
	PersonID     string `json:"personId,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
	IsApproved   bool   `json:"isApproved"`
}

// User is the logged-in session. It is derived from an AuthAccount or a
// Member at login time and is not stored as a collection of its own.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
	MemberID string `json:"memberId,omitempty"`
}

// IsOwner reports whether the session has the owner role
func (u User) IsOwner() bool {
	return u.Role == RoleOwner
}
