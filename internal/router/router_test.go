package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/horizon/internal/db"
	"github.com/horizon/internal/handler"
	"github.com/horizon/internal/service"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano()), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	api := handler.NewAPI(gdb, service.Settings{DefaultFocusMinutes: 25, HeatmapWeeks: 52}, nil)
	return SetupRouter("test-secret", api)
}

func request(r http.Handler, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestSetupRouterPublicEndpoints(t *testing.T) {
	r := setupRouter(t)

	if rr := request(r, http.MethodGet, "/ping", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("expected /ping to return 200, got %d", rr.Code)
	}
	if rr := request(r, http.MethodGet, "/healthz", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSetupRouterRequiresSessionForAPI(t *testing.T) {
	r := setupRouter(t)

	for _, path := range []string{"/api/me", "/api/tasks", "/api/dashboard", "/api/analytics/heatmap"} {
		rr := request(r, http.MethodGet, path, nil, nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected %s to return 401, got %d", path, rr.Code)
		}
		var payload map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil || payload["error"] == "" {
			t.Fatalf("expected JSON error body for %s, got %q", path, rr.Body.String())
		}
	}
}

func TestSetupRouterSessionFlow(t *testing.T) {
	r := setupRouter(t)

	rr := request(r, http.MethodPost, "/api/auth/register", map[string]string{"username": "demo", "password": "horizon-demo"}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected register to return 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = request(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "demo", "password": "wrong-password"}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected wrong password to return 401, got %d", rr.Code)
	}

	rr = request(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "demo", "password": "horizon-demo"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected login to return 200, got %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	rr = request(r, http.MethodGet, "/api/me", nil, cookies)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /api/me to return 200, got %d", rr.Code)
	}
	var me struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &me); err != nil || me.User.Username != "demo" {
		t.Fatalf("unexpected /api/me body %q", rr.Body.String())
	}

	rr = request(r, http.MethodPost, "/api/tasks", map[string]string{"title": "Routed task"}, cookies)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected task creation to return 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = request(r, http.MethodGet, "/api/dashboard", nil, cookies)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected dashboard to return 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = request(r, http.MethodPost, "/api/auth/logout", nil, cookies)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected logout to return 204, got %d", rr.Code)
	}
	cleared := rr.Result().Cookies()
	if rr := request(r, http.MethodGet, "/api/me", nil, cleared); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected cleared session to be rejected, got %d", rr.Code)
	}
}
