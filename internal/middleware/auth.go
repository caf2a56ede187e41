package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/carelink/clinic-scheduler/internal/config"
	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/models"
)

const (
	ContextUserID     = "userID"
	ContextFacilityID = "facilityID"
	ContextUserRole   = "userRole"
)

func abortUnauthorized(c *gin.Context, code, message string) {
	httperr.Unauthorized(c, code, message)
	c.Abort()
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing_authorization_header", "Authorization header is required.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid_authorization_header", "Expected a Bearer token.")
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {

			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid_token", "Token is invalid or expired.")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid_token_claims", "Token carries no claims.")
			return
		}

		userID, ok1 := claims["sub"].(float64)
		facilityID, ok2 := claims["facilityId"].(float64)
		role, ok3 := claims["role"].(string)
		if !ok1 || !ok2 || !ok3 {
			abortUnauthorized(c, "invalid_token_payload", "Token payload is incomplete.")
			return
		}

		c.Set(ContextUserID, uint(userID))
		c.Set(ContextFacilityID, uint(facilityID))
		c.Set(ContextUserRole, role)

		c.Next()
	}
}

// RequireStaff gates a route group to clinic staff (doctor, nurse,
// facility_admin). It assumes AuthMiddleware already ran.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.IsStaffRole(c.GetString(ContextUserRole)) {
			httperr.Forbidden(c, "insufficient_role", "Staff access required.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles gates a route group to the listed roles. It assumes
// AuthMiddleware already ran.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if _, ok := allowed[role]; !ok {
			httperr.Forbidden(c, "insufficient_role", "Role not allowed on this resource.")
			c.Abort()
			return
		}
		c.Next()
	}
}
