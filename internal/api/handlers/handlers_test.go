package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/peterkyalo/stock-inventory-sub002/pkg/auth"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/middleware"
)

var setupOnce sync.Once

func newTestRouter(register func(router *gin.RouterGroup)) *gin.Engine {
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		middleware.InitValidator()
	})
	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(asAdmin())
	register(group)
	return router
}

func newTestRouterWithClaims(claims *auth.AccessTokenClaims, register func(router *gin.RouterGroup)) *gin.Engine {
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		middleware.InitValidator()
	})
	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyOperatorID, claims.OperatorID)
		c.Set(middleware.ContextKeyOperatorRole, string(claims.Role))
		c.Set(middleware.ContextKeyCapabilities, claims)
		c.Next()
	})
	register(group)
	return router
}

func asAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyOperatorID, "op-test")
		c.Set(middleware.ContextKeyOperatorRole, string(auth.RoleAdmin))
		c.Set(middleware.ContextKeyCapabilities, &auth.AccessTokenClaims{
			OperatorID: "op-test",
			Username:   "tester",
			Role:       auth.RoleAdmin,
		})
		c.Next()
	}
}

func testLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("test"))
}

func performRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
