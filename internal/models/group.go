package models

// Group represents a roster of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Trip to Goa").
	Name string

	// Members is the list of user IDs in this group. Order is irrelevant to
	// balance math but stable for display (insertion order).
	Members []string

	// CreatedBy is the user ID of the group's creator.
	CreatedBy string

	// SettleUpMode holds per-member settle-up flags. It is a display hint and
	// never feeds balance computation.
	SettleUpMode []SettleUpFlag

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// SettleUpFlag records whether a member has cleared their group debts.
type SettleUpFlag struct {
	MemberID           string
	IsSettled          bool
	LastSettlementDate int64 // Unix seconds; zero when never settled
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
