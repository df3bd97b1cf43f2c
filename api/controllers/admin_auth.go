package controllers

import (
	"net/http"
	"time"

	"github.com/phoolcraft/phool-backend/api/responses"
	"github.com/phoolcraft/phool-backend/api/validators"
	pkgAuth "github.com/phoolcraft/phool-backend/pkg/auth"
	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/logger"
	"github.com/phoolcraft/phool-backend/pkg/security"
)

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=256"`
}

type adminLoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminLogin exchanges the dashboard credentials for a bearer token.
func AdminLogin(admin config.AdminConfig, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !admin.Enabled() || jwtCfg.Secret == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "admin login not configured"))
			return
		}

		var payload adminLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ok, err := security.VerifyAdmin(admin, payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify credentials"))
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"))
			return
		}

		now := time.Now().UTC()
		token, err := pkgAuth.MintAdminToken(jwtCfg, now, pkgAuth.AdminTokenPayload{
			Subject: admin.Email,
			Role:    enums.AdminRoleAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token"))
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "admin", admin.Email), "admin.login")
		}
		responses.WriteSuccess(w, adminLoginResponse{
			Token:     token,
			Role:      enums.AdminRoleAdmin.String(),
			ExpiresAt: now.Add(jwtCfg.TTL()),
		})
	}
}
