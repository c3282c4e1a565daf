package schema

// CoreProjectTable represents the 'core.project' table
type CoreProjectTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	Description string
	OwnerID     string
	IsPersonal  string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// CoreProject is the schema definition for core.project
var CoreProject = CoreProjectTable{
	Table:       "core.project",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	Description: "description",
	OwnerID:     "ownerid",
	IsPersonal:  "ispersonal",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// Columns returns all standard column names
func (t CoreProjectTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.Description, t.OwnerID, t.IsPersonal,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
