package roster

import "time"

type Role string

const (
	RolePlayer     Role = "player"
	RoleGameMaster Role = "gamemaster"
)

// Member es un participante de la campaña: holder de grants o autoridad.
type Member struct {
	ID          string
	DisplayName string
	Role        Role
	CreatedAt   time.Time
}

func (m Member) IsAuthority() bool {
	return m.Role == RoleGameMaster
}
