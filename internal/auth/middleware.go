package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/riverlabs/rivergauge/internal/models"
)

// ContextUserKey is the gin context key the resolved user is attached under.
const ContextUserKey = "user"

// sessionIDKey is the cookie-session key holding the opaque session identifier.
const sessionIDKey = "sid"

// RequireAuth is a middleware that ensures the request carries a session that
// resolves to a user. The user is attached to the context for downstream
// handlers; unauthenticated requests are redirected to the login page with a
// flash message.
func RequireAuth(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := currentSessionID(c)

		user, err := svc.ResolveSession(c.Request.Context(), sessionID)
		if err != nil {
			if !errors.Is(err, ErrUnauthenticated) {
				// Storage failure: abort, don't misreport as logged-out.
				log.Printf("Session resolve error: %v", err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}

			Flash(c, FlashError, "Please log in to view this page")
			if c.GetHeader("HX-Request") == "true" {
				// HTMX request: send HX-Redirect header
				c.Header("HX-Redirect", "/login")
				c.AbortWithStatus(http.StatusUnauthorized)
			} else {
				c.Redirect(http.StatusFound, "/login")
				c.Abort()
			}
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// GuestOnly denies entry points like /login and /signup to clients that are
// already authenticated, redirecting them to the dashboard instead.
func GuestOnly(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := currentSessionID(c)

		if _, err := svc.ResolveSession(c.Request.Context(), sessionID); err == nil {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the user attached by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// currentSessionID reads the opaque session identifier from the cookie session.
func currentSessionID(c *gin.Context) string {
	session := sessions.Default(c)
	sessionID, _ := session.Get(sessionIDKey).(string)
	return sessionID
}

// setSessionID stores the session identifier in the cookie session.
func setSessionID(c *gin.Context, sessionID string) error {
	session := sessions.Default(c)
	session.Set(sessionIDKey, sessionID)
	return session.Save()
}

// clearSessionID removes the session identifier from the cookie session.
func clearSessionID(c *gin.Context) error {
	session := sessions.Default(c)
	session.Delete(sessionIDKey)
	return session.Save()
}
