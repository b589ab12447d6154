package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-social-graph/pkg/helpers"
	"github.com/oksasatya/go-social-graph/pkg/response"
)

const CtxUserIDKey = "userID"

// Auth validates the access token from the Authorization header or the
// access_token cookie and requires a matching session in Redis. It sets
// userID, userName and userEmail in the Gin context on success. A nil rdb
// skips the session check.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := helpers.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(helpers.AccessCookie)
		}
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		if rdb != nil {
			data, err := helpers.LoadSession(c.Request.Context(), rdb, claims.UserID)
			if err != nil || len(data) == 0 {
				response.Abort(c, http.StatusUnauthorized, "session not found", nil)
				return
			}
			if sid := data["sid"]; sid != "" && sid != claims.SessionID {
				response.Abort(c, http.StatusUnauthorized, "session expired", nil)
				return
			}
			c.Set("userName", data["username"])
			c.Set("userEmail", data["email"])
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
