package models

// Member is a person who can be linked into groups.
// PersonID is shared with the AuthAccount of the same person, if any.
type Member struct {
	ID         string `json:"id"`
	PersonID   string `json:"personId,omitempty"`
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required,len=10,numeric"`
	Address    string `json:"address"`
	JoinedDate string `json:"joinedDate"`
}

// Owner is a bookkeeping record of a scheme operator. It is not tied to an
// AuthAccount.
type Owner struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	CompanyName string `json:"companyName"`
}
