package middleware

import (
	"net/http"
	"strings"

	"github.com/WadsonGarbes/formaplus-api/internal/apierror"
	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"github.com/WadsonGarbes/formaplus-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userKey = "current_user"

// RequestID tags every request with an X-Request-ID for log correlation,
// keeping a client-provided one when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// BearerAuth authenticates requests via the access token in the
// Authorization header. The authenticated user is stored in the context.
func BearerAuth(auth *services.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := ExtractBearerToken(c.GetHeader("Authorization"))
		if accessToken == "" {
			apierror.Abort(c, http.StatusUnauthorized, "missing access token")
			return
		}

		user, err := auth.VerifyAccess(c.Request.Context(), accessToken)
		if err != nil {
			apierror.Abort(c, http.StatusUnauthorized, "invalid or expired access token")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// BasicAuth authenticates with username and password. Only the token
// issuance endpoint uses it.
func BasicAuth(auth *services.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="formaplus"`)
			apierror.Abort(c, http.StatusUnauthorized, "missing credentials")
			return
		}

		user, err := auth.Login(c.Request.Context(), username, password)
		if err != nil {
			apierror.Abort(c, http.StatusUnauthorized, "invalid username or password")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by BearerAuth or BasicAuth.
func CurrentUser(c *gin.Context) (entity.User, bool) {
	value, exists := c.Get(userKey)
	if !exists {
		return entity.User{}, false
	}
	user, ok := value.(entity.User)
	return user, ok
}

// ExtractBearerToken pulls the token out of an Authorization header value,
// returning "" when the header is missing or not a Bearer scheme.
func ExtractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
