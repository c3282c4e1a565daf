package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table           string
	ID              string
	Username        string
	Email           string
	DisplayName     string
	IsAdmin         string
	DiscordUserID   string
	DiscordVerified string
	CreatedAt       string
	UpdatedAt       string
	DeletedAt       string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:           "users.account",
	ID:              "id",
	Username:        "username",
	Email:           "email",
	DisplayName:     "displayname",
	IsAdmin:         "isadmin",
	DiscordUserID:   "discorduserid",
	DiscordVerified: "discordverified",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
	DeletedAt:       "deletedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.DisplayName, t.IsAdmin,
		t.DiscordUserID, t.DiscordVerified, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
