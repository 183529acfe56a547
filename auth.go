package buildsite

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const adminSubject = "admin"

type loginRequest struct {
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.JSON(http.StatusTooManyRequests, envelope{Message: "Too many login attempts. Try again later."})
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest(c, "Invalid request body", nil)
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(ip)
		return Unauthorized(c, "Invalid password")
	}
	token, exp, err := a.issueToken()
	if err != nil {
		return InternalError(c, err)
	}
	if err := setAdminSession(c); err != nil {
		return InternalError(c, err)
	}
	return OK(c, loginResponse{Token: token, ExpiresAt: exp})
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return InternalError(c, err)
	}
	return Done(c, "Logged out")
}

func (a *App) issueToken() (string, time.Time, error) {
	exp := time.Now().Add(a.Config.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": adminSubject,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte(a.Config.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (a *App) validToken(raw string) bool {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.Config.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return false
	}
	sub, err := token.Claims.GetSubject()
	return err == nil && sub == adminSubject
}

func bearerToken(c echo.Context) string {
	h := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// isAdmin reports whether the request carries admin credentials. The cookie
// session only counts for safe methods; mutations need the bearer token.
func (a *App) isAdmin(c echo.Context) bool {
	if raw := bearerToken(c); raw != "" {
		return a.validToken(raw)
	}
	m := c.Request().Method
	return (m == http.MethodGet || m == http.MethodHead) && IsAdmin(c)
}

func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !a.isAdmin(c) {
			return Unauthorized(c, "Authentication required")
		}
		return next(c)
	}
}
