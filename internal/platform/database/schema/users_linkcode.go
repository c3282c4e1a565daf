package schema

// UserLinkCodeTable represents the 'users.linkcode' table
type UserLinkCodeTable struct {
	Table         string
	ID            string
	UserID        string
	CodeHash      string
	DiscordUserID string
	IsUsed        string
	IssuedAt      string
	ExpiresAt     string
	UsedAt        string
}

// UserLinkCode is the schema definition for users.linkcode
var UserLinkCode = UserLinkCodeTable{
	Table:         "users.linkcode",
	ID:            "id",
	UserID:        "userid",
	CodeHash:      "codehash",
	DiscordUserID: "discorduserid",
	IsUsed:        "isused",
	IssuedAt:      "issuedat",
	ExpiresAt:     "expiresat",
	UsedAt:        "usedat",
}

// Columns returns all standard column names
func (t UserLinkCodeTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.CodeHash, t.DiscordUserID, t.IsUsed,
		t.IssuedAt, t.ExpiresAt, t.UsedAt,
	}
}
