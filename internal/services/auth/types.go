package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("unauthorized")

type AccessClaims struct {
	AccountID uuid.UUID
	Role      string
	ExpiresAt time.Time
}
