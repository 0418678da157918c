package auth

import (
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OfficerID uuid.UUID
	Role      enums.OfficerRole
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	OfficerID uuid.UUID         `json:"officer_id"`
	Role      enums.OfficerRole `json:"role"`
	jwt.RegisteredClaims
}
