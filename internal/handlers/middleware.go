package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie = "lotto_session"
	sessionHeader = "X-Session-Id"
	requestHeader = "X-Request-Id"

	tenantKey  = "tenantID"
	requestKey = "requestID"
)

// TenantMiddleware identifies the session behind a request from the
// X-Session-Id header or the session cookie, minting a new id when neither
// is present.
func (h *HTTPHandler) TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(sessionHeader)
		if id == "" {
			id, _ = c.Cookie(sessionCookie)
		}
		if id == "" {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		c.Header(sessionHeader, id)
		c.Set(tenantKey, id)
		c.Next()
	}
}

// RequestID tags every request and response with an X-Request-Id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestKey, id)
		c.Header(requestHeader, id)
		c.Next()
	}
}

func tenantID(c *gin.Context) string {
	return c.GetString(tenantKey)
}

func requestID(c *gin.Context) string {
	return c.GetString(requestKey)
}
