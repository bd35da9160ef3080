package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-dealership-api-server/config"
	"car-dealership-api-server/internal/api/middleware"
	"car-dealership-api-server/internal/auth"
	"car-dealership-api-server/internal/models"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, auth.Init(config.JWTConfig{Secret: "test-secret"}))

	gin.SetMode(gin.TestMode)
	router := gin.New()

	editors := router.Group("/", middleware.Authenticate(), middleware.Authorize(models.RoleEditor, models.RoleAdmin))
	editors.POST("/protected", func(c *gin.Context) {
		role, _ := c.Get("user_role")
		c.JSON(http.StatusOK, gin.H{"role": role})
	})
	return router
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateJWT("user@dealership.test", "Test User", role)
	require.NoError(t, err)
	return token
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_MalformedToken(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorize_ViewerCannotWrite(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleViewer))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthorize_EditorAllowed(t *testing.T) {
	router := newTestRouter(t)

	for _, role := range []string{models.RoleEditor, models.RoleAdmin} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, role))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "role %s", role)
	}
}
