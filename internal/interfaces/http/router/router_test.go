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

type pingRegistrar struct{}

func (pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(pingRegistrar{})

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	r.Register(pingRegistrar{})
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}
