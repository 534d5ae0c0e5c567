package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrackBD/trackbd_api/internal/sse"
	"github.com/TrackBD/trackbd_api/internal/utils"
)

type fakeSessionChecker struct {
	active bool
}

func (f fakeSessionChecker) Active(_ context.Context, _ string) (bool, error) {
	return f.active, nil
}

func newStreamRouter(t *testing.T, active bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	router := gin.New()
	router.GET("/v1/dashboard/events", NewSSEHandler(sse.NewHub(), fakeSessionChecker{active: active}).Stream)
	return router
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := utils.GenerateJWT("admin", "admin", utils.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return token
}

func TestStreamRejectsMissingToken(t *testing.T) {
	router := newStreamRouter(t, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/dashboard/events", nil))

	assert.Equal(t, 401, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestStreamRejectsRevokedSession(t *testing.T) {
	// A valid, unexpired token whose session was revoked by logout must not
	// open the stream.
	router := newStreamRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/events?token="+adminToken(t), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_REVOKED")
}

func TestStreamRejectsTechnicianRole(t *testing.T) {
	router := newStreamRouter(t, true)
	token, _, err := utils.GenerateJWT("tech_1", "Karim", utils.RoleTechnician, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/events?token="+token, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 403, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

// closeNotifyRecorder adds the http.CloseNotifier method gin's Stream
// requires, which httptest.ResponseRecorder does not implement.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func TestStreamOpensForActiveAdminSession(t *testing.T) {
	router := newStreamRouter(t, true)

	// Cancel the request context up front so the stream loop exits after
	// the initial connected event.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/events?token="+adminToken(t), nil).WithContext(ctx)

	w := newCloseNotifyRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "connected")
}
