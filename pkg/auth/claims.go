package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/phoolcraft/phool-backend/pkg/enums"
)

// AdminTokenPayload captures the data available when minting a dashboard JWT.
type AdminTokenPayload struct {
	Subject string
	Role    enums.AdminRole
	JTI     string
}

// AdminTokenClaims represents the typed JWT issued to the dashboard.
type AdminTokenClaims struct {
	Role enums.AdminRole `json:"role"`
	jwt.RegisteredClaims
}
