package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

const (
	authorizationHeaderKey  = "Authorization"
	authorizationTypeBearer = "bearer"
	authorizationPayloadKey = "authorization_payload"
)

// AuthMiddleware verifies the bearer token and stores its payload in the context.
// EventSource clients cannot set headers, so a token query parameter is accepted too.
func AuthMiddleware(tokenService ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if header := c.GetHeader(authorizationHeaderKey); header != "" {
			fields := strings.Fields(header)
			if len(fields) != 2 || strings.ToLower(fields[0]) != authorizationTypeBearer {
				abortWithError(c, http.StatusUnauthorized, "Invalid authorization header")
				return
			}
			token = fields[1]
		}
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		payload, err := tokenService.VerifyToken(token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(authorizationPayloadKey, payload)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := getAuthPayload(c, authorizationPayloadKey)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		for _, r := range roles {
			if payload.Role == r {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, "Access denied")
	}
}

func getAuthPayload(c *gin.Context, key string) (*domain.TokenPayload, bool) {
	value, exists := c.Get(key)
	if !exists {
		return nil, false
	}
	payload, ok := value.(*domain.TokenPayload)
	return payload, ok
}

// requirePayload fetches the token payload for op, replying 401 when it is missing.
func requirePayload(c *gin.Context, logger ports.LoggerPort, op string) (*domain.TokenPayload, bool) {
	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		logger.Warn("Unauthorized access attempt to "+op, map[string]interface{}{
			"ip": c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return payload, true
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Success: false, Message: message})
}
