package teamperm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/stratashare/internal/app/system/faults"
	"github.com/dalemusser/stratashare/internal/domain/models"
	"go.uber.org/zap"
)

// fakeTeams serves a fixed set of teams without a database.
type fakeTeams struct {
	teams map[string]*models.Team
}

func (f *fakeTeams) GetByID(_ context.Context, id string) (*models.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, fmt.Errorf("%w: team %s", faults.ErrNotFound, id)
	}
	return t, nil
}

func testTeam(id string, roles map[string]string) *models.Team {
	members := make(map[string]models.TeamMember, len(roles))
	for userID, role := range roles {
		members[userID] = models.TeamMember{Role: role, JoinedAt: time.Now().UTC()}
	}
	return &models.Team{ID: id, Name: "Team " + id, Members: members}
}

func TestDerive_RoleMapping(t *testing.T) {
	teams := &fakeTeams{teams: map[string]*models.Team{
		"t1": testTeam("t1", map[string]string{
			"owner":  models.RoleOwner,
			"admin":  models.RoleAdmin,
			"member": models.RoleMember,
			"viewer": models.RoleViewer,
		}),
	}}

	p := Derive(context.Background(), teams, "t1", "member", zap.NewNop())

	tests := []struct {
		userID string
		want   models.Tier
	}{
		{"owner", models.TierAdmin},
		{"admin", models.TierAdmin},
		{"viewer", models.TierView},
		// The creator is promoted to admin regardless of their role.
		{"member", models.TierAdmin},
	}
	for _, tt := range tests {
		if got := p.TierOf(tt.userID); got != tt.want {
			t.Errorf("TierOf(%s) = %q, want %q", tt.userID, got, tt.want)
		}
	}
}

func TestDerive_MissingTeamFallsBackToCreatorOnly(t *testing.T) {
	teams := &fakeTeams{teams: map[string]*models.Team{}}

	p := Derive(context.Background(), teams, "ghost", "creator", zap.NewNop())

	if !p.CanManage("creator") {
		t.Error("creator should have admin access on fallback")
	}
	if p.CanView("anyone-else") {
		t.Error("nobody else should have access on fallback")
	}
}

func TestDerive_NonMemberCreatorGetsCreatorOnly(t *testing.T) {
	teams := &fakeTeams{teams: map[string]*models.Team{
		"t1": testTeam("t1", map[string]string{"owner": models.RoleOwner}),
	}}

	p := Derive(context.Background(), teams, "t1", "outsider", zap.NewNop())

	if !p.CanManage("outsider") {
		t.Error("creator should have admin access")
	}
	if p.CanView("owner") {
		t.Error("team members should not be granted access when the creator is not a member")
	}
}
