package machines

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/riverlabs/rivergauge/internal/auth"
	"github.com/riverlabs/rivergauge/internal/models"
	"github.com/riverlabs/rivergauge/internal/store"
)

// newMachineRouter wires the handlers behind a stub middleware that installs
// the given user, standing in for the session gate.
func newMachineRouter(machines store.MachineStore, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(auth.ContextUserKey, user)
		}
		c.Next()
	})
	router.POST("/api/machines", CreateMachineHandler(machines))
	router.GET("/api/machines", ListMachinesHandler(machines))
	router.GET("/api/machines/:code", GetMachineHandler(machines))
	router.DELETE("/api/machines/:code", DeleteMachineHandler(machines))
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateMachine(t *testing.T) {
	machines := store.NewMemoryMachineStore()
	router := newMachineRouter(machines, &models.User{Email: "ann@x.com"})

	w := doJSON(router, http.MethodPost, "/api/machines",
		`{"machine_name":"Willow Creek Gauge","machine_code":"RG-001","river_name":"Willow Creek","location":"Bridge St"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["machine_code"] != "RG-001" {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestCreateMachineDuplicateCode(t *testing.T) {
	machines := store.NewMemoryMachineStore()
	router := newMachineRouter(machines, &models.User{Email: "ann@x.com"})

	body := `{"machine_name":"Gauge","machine_code":"RG-001"}`
	if w := doJSON(router, http.MethodPost, "/api/machines", body); w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", w.Code)
	}
	if w := doJSON(router, http.MethodPost, "/api/machines", body); w.Code != http.StatusConflict {
		t.Errorf("second create: expected 409, got %d", w.Code)
	}
}

func TestCreateMachineMissingFields(t *testing.T) {
	machines := store.NewMemoryMachineStore()
	router := newMachineRouter(machines, &models.User{Email: "ann@x.com"})

	w := doJSON(router, http.MethodPost, "/api/machines", `{"machine_name":"Gauge"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestListMachinesOnlyOwn(t *testing.T) {
	machines := store.NewMemoryMachineStore()
	ann := &models.User{Email: "ann@x.com"}
	ann.ID = 1
	bob := &models.User{Email: "bob@x.com"}
	bob.ID = 2

	annRouter := newMachineRouter(machines, ann)
	bobRouter := newMachineRouter(machines, bob)

	if w := doJSON(annRouter, http.MethodPost, "/api/machines", `{"machine_name":"A","machine_code":"RG-001"}`); w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}
	if w := doJSON(bobRouter, http.MethodPost, "/api/machines", `{"machine_name":"B","machine_code":"RG-002"}`); w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}

	w := doJSON(annRouter, http.MethodGet, "/api/machines", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var list []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 1 || list[0]["machine_code"] != "RG-001" {
		t.Errorf("expected only RG-001, got %v", list)
	}
}

func TestGetMachineHidesOtherOwners(t *testing.T) {
	machines := store.NewMemoryMachineStore()
	ann := &models.User{Email: "ann@x.com"}
	ann.ID = 1
	bob := &models.User{Email: "bob@x.com"}
	bob.ID = 2

	annRouter := newMachineRouter(machines, ann)
	bobRouter := newMachineRouter(machines, bob)

	if w := doJSON(annRouter, http.MethodPost, "/api/machines", `{"machine_name":"A","machine_code":"RG-001"}`); w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}

	if w := doJSON(annRouter, http.MethodGet, "/api/machines/RG-001", ""); w.Code != http.StatusOK {
		t.Errorf("owner lookup: expected 200, got %d", w.Code)
	}
	// Someone else's machine is indistinguishable from a missing one.
	if w := doJSON(bobRouter, http.MethodGet, "/api/machines/RG-001", ""); w.Code != http.StatusNotFound {
		t.Errorf("foreign lookup: expected 404, got %d", w.Code)
	}
	if w := doJSON(bobRouter, http.MethodGet, "/api/machines/RG-999", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing lookup: expected 404, got %d", w.Code)
	}
}

func TestDeleteMachine(t *testing.T) {
	machines := store.NewMemoryMachineStore()
	ann := &models.User{Email: "ann@x.com"}
	ann.ID = 1
	bob := &models.User{Email: "bob@x.com"}
	bob.ID = 2

	annRouter := newMachineRouter(machines, ann)
	bobRouter := newMachineRouter(machines, bob)

	if w := doJSON(annRouter, http.MethodPost, "/api/machines", `{"machine_name":"A","machine_code":"RG-001"}`); w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}

	// Other owners cannot delete, and the machine survives.
	if w := doJSON(bobRouter, http.MethodDelete, "/api/machines/RG-001", ""); w.Code != http.StatusNotFound {
		t.Errorf("foreign delete: expected 404, got %d", w.Code)
	}
	if w := doJSON(annRouter, http.MethodGet, "/api/machines/RG-001", ""); w.Code != http.StatusOK {
		t.Errorf("machine gone after foreign delete attempt: %d", w.Code)
	}

	if w := doJSON(annRouter, http.MethodDelete, "/api/machines/RG-001", ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", w.Code)
	}
	// Deleting again is idempotent.
	if w := doJSON(annRouter, http.MethodDelete, "/api/machines/RG-001", ""); w.Code != http.StatusNoContent {
		t.Errorf("second delete: expected 204, got %d", w.Code)
	}
}

func TestMachineHandlersRequireUser(t *testing.T) {
	machines := store.NewMemoryMachineStore()
	router := newMachineRouter(machines, nil)

	if w := doJSON(router, http.MethodGet, "/api/machines", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without user, got %d", w.Code)
	}
}
