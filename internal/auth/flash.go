package auth

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Flash kinds. Pages render errors and successes differently.
const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// Flash queues a one-time message of the given kind for the next rendered page.
func Flash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, kind)

	if err := session.Save(); err != nil {
		log.Printf("Flash save error: %v", err)
	}
}

// Flashes holds the one-time messages consumed for a page render.
type Flashes struct {
	Errors    []string
	Successes []string
}

// ConsumeFlashes reads and clears all queued flash messages. Messages are
// gone after the first read; a reload shows a clean page.
func ConsumeFlashes(c *gin.Context) Flashes {
	session := sessions.Default(c)

	var flashes Flashes
	for _, v := range session.Flashes(FlashError) {
		if msg, ok := v.(string); ok {
			flashes.Errors = append(flashes.Errors, msg)
		}
	}
	for _, v := range session.Flashes(FlashSuccess) {
		if msg, ok := v.(string); ok {
			flashes.Successes = append(flashes.Successes, msg)
		}
	}

	// Flashes() clears in memory; Save persists the cleared state.
	if err := session.Save(); err != nil {
		log.Printf("Flash consume error: %v", err)
	}

	return flashes
}
