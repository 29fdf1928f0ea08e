package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const adminCookieName = "admin_token"

var errInvalidToken = errors.New("invalid admin token")

type loginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin godoc
// @Summary Admin login
// @Description Exchange admin credentials for a session cookie
// @Tags admin
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Admin credentials"
// @Success 200 {object} map[string]string
// @Failure 401 {object} controller.APIError
// @Router /api/admin/login [post]
func (c *Controller) AdminLogin(ctx *gin.Context) {
	if len(c.jwtSecret) == 0 {
		serviceUnavailable(ctx, "admin auth not configured")
		return
	}

	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "invalid input", err.Error())
		return
	}

	if req.Email != c.adminEmail ||
		bcrypt.CompareHashAndPassword([]byte(c.adminPassHash), []byte(req.Password)) != nil {
		unauthorized(ctx, "invalid credentials")
		return
	}

	claims := jwt.RegisteredClaims{
		Subject:   req.Email,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.jwtSecret)
	if err != nil {
		c.logger.Error("failed to sign admin token", "error", err)
		internalError(ctx, "failed to create session")
		return
	}

	ctx.SetCookie(adminCookieName, token, int(24*time.Hour/time.Second), "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{"message": "logged in"})
}

// AdminLogout godoc
// @Summary Admin logout
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/admin/logout [post]
func (c *Controller) AdminLogout(ctx *gin.Context) {
	ctx.SetCookie(adminCookieName, "", -1, "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// RequireAdmin gates the admin group on a valid session cookie.
func (c *Controller) RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cookie, err := ctx.Cookie(adminCookieName)
		if err != nil {
			unauthorized(ctx, "admin session required")
			ctx.Abort()
			return
		}

		if err := c.verifyAdminToken(cookie); err != nil {
			unauthorized(ctx, "invalid or expired session")
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

func (c *Controller) verifyAdminToken(raw string) error {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Wrapf(errInvalidToken, "unexpected signing method %v", t.Header["alg"])
		}
		return c.jwtSecret, nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != c.adminEmail {
		return errInvalidToken
	}
	return nil
}
