package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func TestFlashConsumedOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("rivergauge_session", cookie.NewStore([]byte("test-secret"))))

	router.GET("/queue", func(c *gin.Context) {
		Flash(c, FlashError, "Please log in to view this page")
		Flash(c, FlashSuccess, "Saved")
		c.Status(http.StatusNoContent)
	})
	router.GET("/read", func(c *gin.Context) {
		c.JSON(http.StatusOK, ConsumeFlashes(c))
	})

	// Queue two messages.
	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	cookies := w.Result().Cookies()

	// First read sees both.
	req = httptest.NewRequest(http.MethodGet, "/read", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var first Flashes
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("failed to decode flashes: %v", err)
	}
	if len(first.Errors) != 1 || first.Errors[0] != "Please log in to view this page" {
		t.Errorf("unexpected errors: %v", first.Errors)
	}
	if len(first.Successes) != 1 || first.Successes[0] != "Saved" {
		t.Errorf("unexpected successes: %v", first.Successes)
	}

	// The read cleared the queue; carry the updated cookie forward.
	cookies = w.Result().Cookies()
	req = httptest.NewRequest(http.MethodGet, "/read", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var second Flashes
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatalf("failed to decode flashes: %v", err)
	}
	if len(second.Errors) != 0 || len(second.Successes) != 0 {
		t.Errorf("expected empty flashes on second read, got %+v", second)
	}
}
