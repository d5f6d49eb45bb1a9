package ws

// Role is the authorization tier a connection holds against one game.
// (very) Basic RBAC: tiers are ordered, so a floor check covers "this role
// or better".
type Role int

const (
	RoleForbidden Role = 0
	RoleSpectator Role = 1
	RolePlayer    Role = 2
	RoleHost      Role = 3
	RoleAdmin     Role = 4
)

func (r Role) String() string {
	switch r {
	case RoleForbidden:
		return "FORBIDDEN"
	case RoleSpectator:
		return "SPECTATOR"
	case RolePlayer:
		return "PLAYER"
	case RoleHost:
		return "HOST"
	case RoleAdmin:
		return "ADMIN"
	}
	return "UNKNOWN"
}
