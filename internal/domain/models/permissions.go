package models

// Terminology: Permission Tiers
//   - view: may read an item and see it in listings
//   - edit: may change content, rename, and move an item
//   - admin: may delete, change permissions, and everything below
//
// The stored tiers are disjoint: a user appears in at most one of the three
// sets. Capability checks compute the union downward (admin implies edit
// implies view), so the hierarchy holds structurally and a grant can never
// leave a user with edit but not view.

// Tier identifies a permission tier on a shared file or folder.
type Tier string

// Permission tiers, lowest to highest.
const (
	TierNone  Tier = ""
	TierView  Tier = "view"
	TierEdit  Tier = "edit"
	TierAdmin Tier = "admin"
)

// IsValidTier reports whether t names a grantable tier.
func IsValidTier(t Tier) bool {
	return t == TierView || t == TierEdit || t == TierAdmin
}

// PermissionSet holds the user IDs granted each tier on an item.
type PermissionSet struct {
	View  []string `bson:"view" json:"view"`
	Edit  []string `bson:"edit" json:"edit"`
	Admin []string `bson:"admin" json:"admin"`
}

// CanView reports whether userID holds any tier on the item.
func (p PermissionSet) CanView(userID string) bool {
	return contains(p.View, userID) || contains(p.Edit, userID) || contains(p.Admin, userID)
}

// CanEdit reports whether userID holds the edit or admin tier.
func (p PermissionSet) CanEdit(userID string) bool {
	return contains(p.Edit, userID) || contains(p.Admin, userID)
}

// CanManage reports whether userID holds the admin tier.
func (p PermissionSet) CanManage(userID string) bool {
	return contains(p.Admin, userID)
}

// TierOf returns the single stored tier for userID, or TierNone.
func (p PermissionSet) TierOf(userID string) Tier {
	switch {
	case contains(p.Admin, userID):
		return TierAdmin
	case contains(p.Edit, userID):
		return TierEdit
	case contains(p.View, userID):
		return TierView
	default:
		return TierNone
	}
}

// SetTier rewrites userID's membership across all three sets in one step:
// the user is removed from every tier and re-added to exactly the target
// tier. TierNone revokes all access.
func (p *PermissionSet) SetTier(userID string, tier Tier) {
	p.View = remove(p.View, userID)
	p.Edit = remove(p.Edit, userID)
	p.Admin = remove(p.Admin, userID)
	switch tier {
	case TierView:
		p.View = append(p.View, userID)
	case TierEdit:
		p.Edit = append(p.Edit, userID)
	case TierAdmin:
		p.Admin = append(p.Admin, userID)
	}
}

// AdminCount returns the number of admin-tier holders.
func (p PermissionSet) AdminCount() int {
	return len(p.Admin)
}

// Effective is the computed capability of a user on a single item.
type Effective struct {
	CanView   bool `json:"canView"`
	CanEdit   bool `json:"canEdit"`
	CanManage bool `json:"canManage"`
	// IsOwner is informational only; it confers no extra rights.
	IsOwner bool `json:"isOwner"`
}

// EffectiveFor computes the capability of userID given the item's
// permission set and creator.
func EffectiveFor(p PermissionSet, createdBy, userID string) Effective {
	return Effective{
		CanView:   p.CanView(userID),
		CanEdit:   p.CanEdit(userID),
		CanManage: p.CanManage(userID),
		IsOwner:   userID != "" && userID == createdBy,
	}
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func remove(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
