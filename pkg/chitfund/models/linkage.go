package models

// Linkage is the membership relation between one group and its members.
// There is at most one Linkage per group; MemberIDs keeps insertion order.
type Linkage struct {
	GroupID   string   `json:"groupId"`
	MemberIDs []string `json:"memberIds"`
}

// Has reports whether memberID is linked
func (l Linkage) Has(memberID string) bool {
	for _, id := range l.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}
