package auth

import (
	"errors"
	"time"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

const (
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

type AccessClaims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}
