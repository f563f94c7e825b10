package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-world/internal/repository"
	"github.com/iliyamo/cinema-world/internal/utils"
)

// StaffAuthHandler implements login for operator accounts.  Visitors
// never authenticate here; their identity comes from the external
// session layer.  Staff tokens are short-lived access tokens only,
// there is no refresh flow for this surface.
type StaffAuthHandler struct {
	Users        *repository.StaffUserRepo
	JWTSecret    string
	AccessTTLMin int
}

// NewStaffAuthHandler constructs the handler and panics on a nil
// repository, mirroring the wiring checks elsewhere.
func NewStaffAuthHandler(users *repository.StaffUserRepo, secret string, ttlMin int) *StaffAuthHandler {
	if users == nil {
		panic("nil repository passed to NewStaffAuthHandler")
	}
	return &StaffAuthHandler{Users: users, JWTSecret: secret, AccessTTLMin: ttlMin}
}

type staffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies the staff credentials and returns a signed access
// token.  Unknown accounts and wrong passwords produce the same 401 so
// the endpoint does not leak which emails exist.
func (h *StaffAuthHandler) Login(c echo.Context) error {
	var req staffLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}

	u, err := h.Users.GetByEmail(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrStaffUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tok, err := utils.NewAccessToken(h.JWTSecret, u.ID, u.Role, h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token issue failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp,
		"role":         u.Role,
	})
}

// Me returns the authenticated staff account.
func (h *StaffAuthHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrStaffUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    u.ID,
		"email": u.Email,
		"role":  u.Role,
	})
}
