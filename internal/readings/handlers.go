package readings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/riverlabs/rivergauge/internal/auth"
	"github.com/riverlabs/rivergauge/internal/store"
)

const (
	defaultWindow = 24 * time.Hour
	maxWindow     = 7 * 24 * time.Hour
	defaultPoints = 96
	maxPoints     = 1000
)

// GetSeriesHandler serves the windowed, downsampled series for one machine's
// dashboard charts. Only the machine's owner can read its data.
func GetSeriesHandler(machines store.MachineStore, readings store.ReadingStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.Status(http.StatusUnauthorized)
			return
		}

		code := c.Param("code")
		machine, err := machines.FindByCode(c.Request.Context(), code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up machine"})
			return
		}
		if machine.UserID != user.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
			return
		}

		window := defaultWindow
		if raw := c.Query("window"); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid window"})
				return
			}
			window = parsed
		}
		if window > maxWindow {
			window = maxWindow
		}

		points := defaultPoints
		if raw := c.Query("points"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 2 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid points"})
				return
			}
			points = parsed
		}
		if points > maxPoints {
			points = maxPoints
		}

		to := time.Now()
		from := to.Add(-window)

		list, err := readings.ListByMachine(c.Request.Context(), code, from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load readings"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"machine_code": code,
			"from":         from,
			"to":           to,
			"points":       Downsample(list, points),
		})
	}
}
