package machines

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/riverlabs/rivergauge/internal/auth"
	"github.com/riverlabs/rivergauge/internal/models"
	"github.com/riverlabs/rivergauge/internal/store"
)

// CreateMachineRequest is the JSON body accepted by CreateMachineHandler.
type CreateMachineRequest struct {
	MachineName string `json:"machine_name" binding:"required"`
	MachineCode string `json:"machine_code" binding:"required"`
	RiverName   string `json:"river_name"`
	Location    string `json:"location"`
}

// machineResponse shapes a profile for JSON output.
func machineResponse(m models.MachineProfile) gin.H {
	return gin.H{
		"id":           m.ID,
		"machine_name": m.MachineName,
		"machine_code": m.MachineCode,
		"river_name":   m.RiverName,
		"location":     m.Location,
		"created_at":   m.CreatedAt,
	}
}

// CreateMachineHandler registers a new machine profile owned by the caller.
// A machine code already registered by anyone is a conflict.
func CreateMachineHandler(machines store.MachineStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.Status(http.StatusUnauthorized)
			return
		}

		var req CreateMachineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "machine_name and machine_code are required"})
			return
		}

		machine := models.MachineProfile{
			UserID:      user.ID,
			MachineName: req.MachineName,
			MachineCode: req.MachineCode,
			RiverName:   req.RiverName,
			Location:    req.Location,
		}

		if err := machines.Create(c.Request.Context(), &machine); err != nil {
			if errors.Is(err, store.ErrDuplicateCode) {
				c.JSON(http.StatusConflict, gin.H{"error": "A machine with that code already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create machine"})
			return
		}

		c.JSON(http.StatusCreated, machineResponse(machine))
	}
}

// ListMachinesHandler returns the caller's machine profiles.
func ListMachinesHandler(machines store.MachineStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.Status(http.StatusUnauthorized)
			return
		}

		list, err := machines.ListByUser(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list machines"})
			return
		}

		out := make([]gin.H, 0, len(list))
		for _, m := range list {
			out = append(out, machineResponse(m))
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetMachineHandler returns a single machine by code. Machines owned by other
// users look like missing ones so codes cannot be probed.
func GetMachineHandler(machines store.MachineStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.Status(http.StatusUnauthorized)
			return
		}

		machine, err := machines.FindByCode(c.Request.Context(), c.Param("code"))
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

		c.JSON(http.StatusOK, machineResponse(*machine))
	}
}

// DeleteMachineHandler removes the caller's machine by code. Idempotent:
// deleting a machine that is already gone succeeds.
func DeleteMachineHandler(machines store.MachineStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.Status(http.StatusUnauthorized)
			return
		}

		machine, err := machines.FindByCode(c.Request.Context(), c.Param("code"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.Status(http.StatusNoContent)
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up machine"})
			return
		}

		if machine.UserID != user.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
			return
		}

		if err := machines.Delete(c.Request.Context(), machine.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete machine"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
