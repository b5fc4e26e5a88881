package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

// storageTimeout bounds every store call made from a request handler so a
// stuck backend surfaces as a failure instead of hanging the request.
const storageTimeout = 5 * time.Second

// ShowLogin renders the login page with any queued flash messages.
func ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title":   "Login - River Monitoring",
		"flashes": ConsumeFlashes(c),
	})
}

// ShowSignup renders the signup page with any queued flash messages.
func ShowSignup(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{
		"title":   "Sign Up - River Monitoring",
		"flashes": ConsumeFlashes(c),
	})
}

// HandleSignup processes the local signup form.
func HandleSignup(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
		defer cancel()

		_, err := svc.SignupLocal(ctx,
			c.PostForm("firstName"),
			c.PostForm("lastName"),
			c.PostForm("email"),
			c.PostForm("password"),
			c.PostForm("confirmPassword"),
		)

		if err != nil {
			var verr *ValidationError
			switch {
			case errors.As(err, &verr):
				for _, violation := range verr.Violations {
					Flash(c, FlashError, violation)
				}
			case errors.Is(err, ErrDuplicateEmail):
				Flash(c, FlashError, "User with that email already exists")
			default:
				log.Printf("Signup error: %v", err)
				Flash(c, FlashError, "Something went wrong. Please try again.")
			}
			c.Redirect(http.StatusFound, "/signup")
			return
		}

		Flash(c, FlashSuccess, "Registration successful! Please log in.")
		c.Redirect(http.StatusFound, "/login")
	}
}

// HandleLogin processes the local login form: credential verification first,
// then session creation, then the redirect. Missing accounts and wrong
// passwords surface as the same message on purpose.
func HandleLogin(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
		defer cancel()

		user, err := svc.AuthenticateLocal(ctx, c.PostForm("email"), c.PostForm("password"))
		if err != nil {
			if errors.Is(err, ErrNoSuchUser) || errors.Is(err, ErrBadCredentials) {
				Flash(c, FlashError, "Invalid email or password")
			} else {
				log.Printf("Login error: %v", err)
				Flash(c, FlashError, "Something went wrong. Please try again.")
			}
			c.Redirect(http.StatusFound, "/login")
			return
		}

		sessionID, err := svc.CreateSession(ctx, user)
		if err != nil {
			log.Printf("Session create error: %v", err)
			Flash(c, FlashError, "Something went wrong. Please try again.")
			c.Redirect(http.StatusFound, "/login")
			return
		}

		if err := setSessionID(c, sessionID); err != nil {
			log.Printf("Session save error: %v", err)
			c.Redirect(http.StatusFound, "/login?error=session_failed")
			return
		}

		log.Printf("User authenticated: %s %s (%s)", user.FirstName, user.LastName, user.Email)
		c.Redirect(http.StatusFound, "/dashboard")
	}
}

// HandleGoogleLogin initiates the Google OAuth flow
func HandleGoogleLogin(c *gin.Context) {
	// Gothic requires the "provider" query parameter
	q := c.Request.URL.Query()
	q.Add("provider", "google")
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// HandleGoogleCallback completes the OAuth flow, resolves or links the user,
// and issues a session.
func HandleGoogleCallback(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gothic requires the "provider" query parameter
		q := c.Request.URL.Query()
		q.Add("provider", "google")
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			log.Printf("Auth error: %v", err)
			c.Redirect(http.StatusFound, "/login?error=auth_failed")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
		defer cancel()

		user, err := svc.AuthenticateExternal(ctx, ProviderAssertion{
			ExternalID:   gothUser.UserID,
			Email:        gothUser.Email,
			FirstName:    gothUser.FirstName,
			LastName:     gothUser.LastName,
			AccessToken:  gothUser.AccessToken,
			RefreshToken: gothUser.RefreshToken,
		})
		if err != nil {
			log.Printf("External auth error: %v", err)
			c.Redirect(http.StatusFound, "/login?error=auth_failed")
			return
		}

		sessionID, err := svc.CreateSession(ctx, user)
		if err != nil {
			log.Printf("Session create error: %v", err)
			c.Redirect(http.StatusFound, "/login?error=session_failed")
			return
		}

		if err := setSessionID(c, sessionID); err != nil {
			log.Printf("Session save error: %v", err)
			c.Redirect(http.StatusFound, "/login?error=session_failed")
			return
		}

		log.Printf("User authenticated via Google: %s %s (%s)", user.FirstName, user.LastName, user.Email)
		Flash(c, FlashSuccess, "Welcome back, "+user.FirstName+"!")
		c.Redirect(http.StatusFound, "/dashboard")
	}
}

// HandleLogout destroys the server-side session, clears the cookie, and
// redirects home.
func HandleLogout(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), storageTimeout)
		defer cancel()

		if err := svc.DestroySession(ctx, currentSessionID(c)); err != nil {
			log.Printf("Session destroy error: %v", err)
		}

		if err := clearSessionID(c); err != nil {
			log.Printf("Session clear error: %v", err)
		}

		Flash(c, FlashSuccess, "You have been logged out successfully")
		c.Redirect(http.StatusFound, "/")
	}
}

// HandleUserDetail returns the current user as JSON for client-side scripts.
// Credential material never leaves the server.
func HandleUserDetail(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
		"provider":  user.Provider,
	})
}
