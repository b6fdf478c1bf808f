package models

import "time"

// Team roles, highest to lowest. Roles map onto permission tiers when a
// member shares an item: owner/admin grant the admin tier, member grants
// edit, viewer grants view.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// IsValidRole checks if a value is a valid team role.
func IsValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// TeamMember is one entry in a team's membership map.
type TeamMember struct {
	Role     string    `bson:"role" json:"role"`
	JoinedAt time.Time `bson:"joined_at" json:"joined_at"`
}

// TeamSettings holds per-team feature switches.
type TeamSettings struct {
	AllowFileSharing bool `bson:"allow_file_sharing" json:"allow_file_sharing"`
}

// Team is the tenancy boundary. It owns shared files and folders and a
// membership map keyed by user ID.
type Team struct {
	ID        string                `bson:"_id" json:"id"`
	Name      string                `bson:"name" json:"name"`
	Members   map[string]TeamMember `bson:"members" json:"members"`
	Settings  TeamSettings          `bson:"settings" json:"settings"`
	CreatedBy string                `bson:"created_by" json:"created_by"`
	CreatedAt time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time             `bson:"updated_at" json:"updated_at"`
}

// RoleOf returns the member's role, or "" if userID is not a member.
func (t *Team) RoleOf(userID string) string {
	m, ok := t.Members[userID]
	if !ok {
		return ""
	}
	return m.Role
}
