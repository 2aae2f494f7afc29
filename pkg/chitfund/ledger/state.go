package ledger

import (
	"encoding/json"

	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// State is everything the ledger knows. It is also the backup document
// format.
type State struct {
	Groups        []models.Group        `json:"groups"`
	Members       []models.Member       `json:"members"`
	Owners        []models.Owner        `json:"owners"`
	Linkages      []models.Linkage      `json:"linkages"`
	Auctions      []models.Auction      `json:"auctions"`
	Payments      []models.Payment      `json:"payments"`
	CurrentUser   *models.User          `json:"currentUser"`
	AuthAccounts  []models.AuthAccount  `json:"authAccounts"`
	Notifications []models.Notification `json:"notifications"`
	Preferences   models.Preferences    `json:"preferences"`
}

func newState() State {
	return State{
		Groups:        []models.Group{},
		Members:       []models.Member{},
		Owners:        []models.Owner{},
		Linkages:      []models.Linkage{},
		Auctions:      []models.Auction{},
		Payments:      []models.Payment{},
		AuthAccounts:  []models.AuthAccount{},
		Notifications: []models.Notification{},
		Preferences:   models.DefaultPreferences(),
	}
}

// UnmarshalJSON decodes over the defaults, so absent preferences keep their
// default values
func (s *State) UnmarshalJSON(data []byte) error {
	type plain State
	p := plain(newState())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = State(p)
	return nil
}

// clone returns a deep copy, so callers can never alias ledger internals
func (s State) clone() State {
	out := State{
		Groups:        append([]models.Group{}, s.Groups...),
		Members:       append([]models.Member{}, s.Members...),
		Owners:        append([]models.Owner{}, s.Owners...),
		Linkages:      make([]models.Linkage, len(s.Linkages)),
		Auctions:      append([]models.Auction{}, s.Auctions...),
		Payments:      append([]models.Payment{}, s.Payments...),
		AuthAccounts:  append([]models.AuthAccount{}, s.AuthAccounts...),
		Notifications: append([]models.Notification{}, s.Notifications...),
		Preferences:   s.Preferences,
	}
	for i, l := range s.Linkages {
		out.Linkages[i] = cloneLinkage(l)
	}
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	return out
}

func cloneLinkage(l models.Linkage) models.Linkage {
	return models.Linkage{GroupID: l.GroupID, MemberIDs: append([]string{}, l.MemberIDs...)}
}

func (s *State) groupIndex(id string) int {
	for i := range s.Groups {
		if s.Groups[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) memberIndex(id string) int {
	for i := range s.Members {
		if s.Members[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) ownerIndex(id string) int {
	for i := range s.Owners {
		if s.Owners[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) accountIndex(id string) int {
	for i := range s.AuthAccounts {
		if s.AuthAccounts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) linkageIndex(groupID string) int {
	for i := range s.Linkages {
		if s.Linkages[i].GroupID == groupID {
			return i
		}
	}
	return -1
}

func (s *State) auctionIndex(id string) int {
	for i := range s.Auctions {
		if s.Auctions[i].ID == id {
			return i
		}
	}
	return -1
}
