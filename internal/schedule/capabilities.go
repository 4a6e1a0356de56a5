package schedule

import "strings"

type Role string

const (
	RoleManager     Role = "manager"
	RoleCoordinator Role = "coordinator"
	RoleTeamMember  Role = "team_member"
)

// ParseRole maps stored role strings onto the three known roles. Anything
// else, including the legacy "read_only", is a team member.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleManager:
		return RoleManager
	case RoleCoordinator:
		return RoleCoordinator
	default:
		return RoleTeamMember
	}
}

// Capabilities is computed once per session and handed to the placement
// engine and the off-day tracker.
type Capabilities struct {
	CanEditSchedule bool
	CanDeleteTicket bool
	CanManageRoster bool
}

func CapabilitiesFor(role Role) Capabilities {
	switch role {
	case RoleManager:
		return Capabilities{CanEditSchedule: true, CanDeleteTicket: true, CanManageRoster: true}
	case RoleCoordinator:
		return Capabilities{CanEditSchedule: true, CanManageRoster: true}
	default:
		return Capabilities{}
	}
}
