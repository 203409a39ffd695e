package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-landing-pages/pkg/helpers"
)

const CtxUserIDKey = "userID"

var (
	errMissingToken = errors.New("missing access token")
	errInvalidToken = errors.New("invalid access token")
)

// accessToken reads the access token from the cookie the admin UI uses, or
// from an Authorization bearer header for API clients.
func accessToken(c *gin.Context) string {
	if token, err := c.Cookie(helpers.AccessCookie); err == nil && token != "" {
		return token
	}
	if scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func accessClaims(c *gin.Context, jwt *helpers.JWTManager) (*helpers.Claims, error) {
	token := accessToken(c)
	if token == "" {
		return nil, errMissingToken
	}
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}
