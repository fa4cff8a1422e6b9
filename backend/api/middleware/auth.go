package middleware

import (
	"net/http"
	"strings"

	"insightlink/backend/common"
	"insightlink/backend/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func abortUnauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": msg,
	})
	c.Abort()
}

func abortForbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{
		"success": false,
		"message": msg,
	})
	c.Abort()
}

// bearerClaims validates the Authorization header and returns its claims.
// Aborts the request when the token is missing, malformed, invalid or
// revoked.
func bearerClaims(c *gin.Context) *service.Claims {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		abortUnauthorized(c, "Authorization header is required")
		return nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		abortUnauthorized(c, "Authorization header format must be Bearer {token}")
		return nil
	}

	tokenString := parts[1]
	claims, err := service.ValidateToken(tokenString)
	if err != nil {
		abortUnauthorized(c, err.Error())
		return nil
	}

	// Tokens revoked at logout sit on the redis blacklist.
	if common.RedisEnabled {
		if _, err := common.RedisGet("jwt:blacklist:" + tokenString); err == nil {
			abortUnauthorized(c, "token has been revoked")
			return nil
		}
	}
	return claims
}

// sessionAuth authenticates from the cookie session, falling back to the
// bearer token when the browser carries no session, and enforces a minimum
// role. Session values use soft type assertions: a stale session from an
// older build reads as zero values and fails the role check instead of
// panicking.
func sessionAuth(c *gin.Context, minRole int) {
	session := sessions.Default(c)
	username, _ := session.Get("username").(string)
	role, _ := session.Get("role").(int)
	id, _ := session.Get("id").(int64)
	status, _ := session.Get("status").(int)
	if username == "" {
		claims := bearerClaims(c)
		if claims == nil {
			return
		}
		username = claims.Username
		role = claims.Role
		id = claims.UserID
		status = common.UserStatusEnabled
	}
	if status == common.UserStatusBlocked {
		abortForbidden(c, "account is blocked")
		return
	}
	if role < minRole {
		abortForbidden(c, "insufficient permissions")
		return
	}
	c.Set("username", username)
	c.Set("role", role)
	c.Set("user_id", id)
	c.Next()
}

// UserAuth accepts either a logged-in browser session or a bearer token.
func UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionAuth(c, common.RoleCommonUser)
	}
}

// JWTAuth validates a Bearer token and loads its claims into the context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := bearerClaims(c)
		if claims == nil {
			return
		}
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func minRoleAuth(minRole int) gin.HandlerFunc {
	jwtAuth := JWTAuth()
	return func(c *gin.Context) {
		jwtAuth(c)
		if c.IsAborted() {
			return
		}
		if c.GetInt("role") < minRole {
			abortForbidden(c, "insufficient permissions")
		}
	}
}

func AdminAuth() gin.HandlerFunc {
	return minRoleAuth(common.RoleAdminUser)
}

func RootAuth() gin.HandlerFunc {
	return minRoleAuth(common.RoleRootUser)
}
