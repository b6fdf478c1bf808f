// Package teamperm derives item permission sets from team membership.
package teamperm

import (
	"context"
	"errors"

	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"go.uber.org/zap"
)

// TeamGetter is the read-only team lookup Derive needs. The team store
// satisfies it.
type TeamGetter interface {
	GetByID(ctx context.Context, id string) (*models.Team, error)
}

// Derive maps each team member's role into a permission tier and returns
// the resulting set for a newly created item:
//
//	owner/admin -> admin tier, member -> edit tier, viewer -> view tier
//
// The creator always ends up in the admin tier regardless of role, and in
// no lower tier. If the team does not exist or the creator is not a
// member, Derive degrades to a creator-only set rather than failing the
// whole create operation.
func Derive(ctx context.Context, teams TeamGetter, teamID, creatorID string, logger *zap.Logger) models.PermissionSet {
	t, err := teams.GetByID(ctx, teamID)
	if err != nil {
		if !errors.Is(err, faults.ErrNotFound) {
			logger.Warn("permission derivation falling back to creator-only",
				zap.String("team_id", teamID),
				zap.Error(err),
			)
		}
		return creatorOnly(creatorID)
	}
	if t.RoleOf(creatorID) == "" {
		return creatorOnly(creatorID)
	}

	var p models.PermissionSet
	for userID, m := range t.Members {
		switch m.Role {
		case models.RoleOwner, models.RoleAdmin:
			p.SetTier(userID, models.TierAdmin)
		case models.RoleMember:
			p.SetTier(userID, models.TierEdit)
		case models.RoleViewer:
			p.SetTier(userID, models.TierView)
		}
	}
	p.SetTier(creatorID, models.TierAdmin)
	return p
}

// creatorOnly grants the creator the admin tier and nothing else. Admin
// implies edit and view through the capability checks, so the degraded
// set is equivalent to granting the creator every tier.
func creatorOnly(creatorID string) models.PermissionSet {
	return models.PermissionSet{Admin: []string{creatorID}}
}
