package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRegistrar struct{ path string }

func (p pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(p.path, func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "/", r.basePath)
	assert.Empty(t, r.registrars)
}

func TestRouterSetup_MountsAtRoot(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(pingRegistrar{"/ping"}, pingRegistrar{"/health"}).Setup()

	assert.Equal(t, "pong", serve(engine, "/ping").Body.String())
	assert.Equal(t, http.StatusOK, serve(engine, "/health").Code)
}

func TestRouterSetup_BasePath(t *testing.T) {
	engine := gin.New()
	NewRouter(engine, WithBasePath("/api")).Register(pingRegistrar{"/ping"}).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, "/api/ping").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, "/ping").Code)
}

func TestRouterSetup_UnknownRoute(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Setup()

	w := serve(engine, "/invoices")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Not found"}`, w.Body.String())
}
