package schema

// CoreProjectMemberTable represents the 'core.projectmember' table
type CoreProjectMemberTable struct {
	Table     string
	ProjectID string
	UserID    string
	AddedBy   string
	CreatedAt string
}

// CoreProjectMember is the schema definition for core.projectmember
var CoreProjectMember = CoreProjectMemberTable{
	Table:     "core.projectmember",
	ProjectID: "projectid",
	UserID:    "userid",
	AddedBy:   "addedby",
	CreatedAt: "createdat",
}
