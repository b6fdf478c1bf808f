package models

import "time"

// SharedFolder represents a folder in a team's shared tree.
//
// FolderPath is a denormalized copy of the full path from the team root
// (e.g. "/Engineering/Specs"). It is recomputed through pathing.Join on
// every create, rename, and move so that the stored path always matches
// the parent chain.
type SharedFolder struct {
	ID          string        `bson:"_id" json:"id"`
	TeamID      string        `bson:"team_id" json:"teamId"` // immutable after creation
	Name        string        `bson:"name" json:"name"`
	NameCI      string        `bson:"name_ci" json:"-"` // case-insensitive for sorting
	ParentID    *string       `bson:"parent_id,omitempty" json:"parentId,omitempty"` // nil = root
	FolderPath  string        `bson:"folder_path" json:"folderPath"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	Permissions PermissionSet `bson:"permissions" json:"permissions"`

	CreatedBy      string    `bson:"created_by" json:"createdBy"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	LastModified   time.Time `bson:"last_modified" json:"lastModified"`
	LastModifiedBy string    `bson:"last_modified_by" json:"lastModifiedBy"`
}

// IsRoot returns true if the folder is at the root level.
func (f *SharedFolder) IsRoot() bool {
	return f.ParentID == nil
}

// Breadcrumb is one entry in the ancestor chain from root to a folder.
type Breadcrumb struct {
	ID   string `json:"id"` // "" for the synthetic root entry
	Name string `json:"name"`
	Path string `json:"path"`
}
