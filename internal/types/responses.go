package types

import "github.com/znyiri100/snake-rivals-arena/internal/groups"

type UserResponse struct {
	ID       uint              `json:"id"`
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Groups   []groups.GroupRef `json:"groups"`
}
