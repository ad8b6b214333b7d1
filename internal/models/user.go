package models

// Role values carried by user records and bearer tokens.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DailyResetSentinel marks a record whose daily counter has never rolled over.
const DailyResetSentinel = "1970-01-01"

// UserRecord is one element of the persisted user collection. Field names
// match the stored JSON document; the whole collection is the unit of
// storage. Passwords are stored in cleartext in the document.
type UserRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`

	// Sender mail credentials, used only by the send path.
	Email       string `json:"email,omitempty"`
	AppPassword string `json:"appPassword,omitempty"`

	Premium      bool  `json:"premium"`
	PremiumUntil int64 `json:"premiumUntil"` // epoch milliseconds, 0 = none

	LastSend       int64  `json:"lastSend"`  // epoch milliseconds, 0 = never
	UsedToday      int    `json:"usedToday"` // valid only for DailyResetDate
	DailyResetDate string `json:"dailyResetDate"`

	Limit int `json:"limit,omitempty"` // daily quota override, 0 = default
}

// EffectiveRole returns the record role, defaulting to RoleUser.
func (u *UserRecord) EffectiveRole() string {
	if u.Role == "" {
		return RoleUser
	}
	return u.Role
}

// Collection is the full ordered user collection. Username uniqueness is
// enforced at creation time only.
type Collection []UserRecord

// Find returns a pointer into the collection for the given username, or nil.
func (c Collection) Find(username string) *UserRecord {
	for i := range c {
		if c[i].Username == username {
			return &c[i]
		}
	}
	return nil
}

// Contains reports whether a record with the given username exists.
func (c Collection) Contains(username string) bool {
	return c.Find(username) != nil
}
