package schema

// SystemActivityLogTable represents the 'system.activitylog' table
type SystemActivityLogTable struct {
	Table      string
	ID         string
	ActorID    string
	ProjectID  string
	Action     string
	EntityType string
	EntityID   string
	Detail     string
	IPAddress  string
	CreatedAt  string
}

var SystemActivityLog = SystemActivityLogTable{
	Table:      "system.activitylog",
	ID:         "id",
	ActorID:    "actorid",
	ProjectID:  "projectid",
	Action:     "action",
	EntityType: "entitytype",
	EntityID:   "entityid",
	Detail:     "detail",
	IPAddress:  "ipaddress",
	CreatedAt:  "createdat",
}
