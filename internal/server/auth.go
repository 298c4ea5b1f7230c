package server

import (
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/localseo/internal/runtime"
)

const adminSubject = "admin"

// AdminHandler issues admin tokens for prompt administration.
type AdminHandler struct {
	Secret       []byte
	PasswordHash string
	TokenTTL     time.Duration
}

func (a *AdminHandler) Register(g *echo.Group) {
	g.POST("/token", a.token)
}

// Admin token
//
//	@Summary		Admin login
//	@Description	Returns a JWT with the prompts:write scope in cookie and body
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		AdminTokenRequest	true	"Admin password"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	HTTPError
//	@Failure		401		{object}	HTTPError
//	@Failure		403		{object}	HTTPError
//	@Router			/api/admin/token [post]
func (a *AdminHandler) token(c echo.Context) error {
	if len(a.Secret) == 0 || a.PasswordHash == "" {
		return echo.NewHTTPError(http.StatusForbidden, "prompt administration disabled")
	}
	var req AdminTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password required")
	}
	if runtime.CheckPassword(a.PasswordHash, req.Password) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	ttl := a.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	signed, err := runtime.SignJWT(adminSubject, a.Secret, ttl, runtime.ScopePromptsWrite)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	cookie := new(http.Cookie)
	cookie.Name = "auth"
	cookie.Value = signed
	cookie.Path = "/api"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteLaxMode
	cookie.MaxAge = int(ttl / time.Second)
	if os.Getenv("LOCALSEO_ENV") == "prod" {
		cookie.Secure = true
	}
	c.SetCookie(cookie)
	c.Response().Header().Set("Authorization", "Bearer "+signed)
	return c.JSON(http.StatusOK, TokenResponse{Token: signed})
}
