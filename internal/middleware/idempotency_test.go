package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIdempotencyRouter(t *testing.T, status int) (*gin.Engine, *miniredis.Miniredis, *int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	var calls int32
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(string(userIDKey), "7")
		c.Next()
	})
	r.Use(Idempotency(cache, time.Minute))
	r.POST("/deposit", func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(status, gin.H{"call": n})
	})
	return r, mr, &calls
}

func doPost(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/deposit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	r, _, calls := setupIdempotencyRouter(t, http.StatusCreated)

	first := doPost(r, "abc123", `{"amount":"10.00"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := doPost(r, "abc123", `{"amount":"10.00"}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestIdempotency_WithoutHeaderPassesThrough(t *testing.T) {
	r, _, calls := setupIdempotencyRouter(t, http.StatusCreated)

	doPost(r, "", `{}`)
	doPost(r, "", `{}`)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_RejectsDifferentPayloadForSameKey(t *testing.T) {
	r, _, calls := setupIdempotencyRouter(t, http.StatusCreated)

	doPost(r, "k1", `{"amount":"10.00"}`)
	w := doPost(r, "k1", `{"amount":"99.00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestIdempotency_InProgressConflict(t *testing.T) {
	r, mr, calls := setupIdempotencyRouter(t, http.StatusCreated)

	require.NoError(t, mr.Set(idempotencyPrefix+"7:busy", inProgressMarker))
	w := doPost(r, "busy", `{}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	r, mr, calls := setupIdempotencyRouter(t, http.StatusInternalServerError)

	doPost(r, "retry-me", `{}`)
	assert.False(t, mr.Exists(idempotencyPrefix+"7:retry-me"))

	doPost(r, "retry-me", `{}`)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_NilCacheDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Idempotency(nil, time.Minute))
	r.POST("/deposit", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := doPost(r, "abc", `{}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	var (
		calls     int32
		markerTTL time.Duration
	)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Set(string(userIDKey), "7")
		c.Next()
	})
	r.Use(Idempotency(cache, 24*time.Hour))
	r.POST("/deposit", func(c *gin.Context) {
		markerTTL = mr.TTL(idempotencyPrefix + "7:crash")
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("handler blew up")
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := doPost(r, "crash", `{"amount":"10.00"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, idempotencyLockTTL, markerTTL)
	assert.False(t, mr.Exists(idempotencyPrefix+"7:crash"))

	w = doPost(r, "crash", `{"amount":"10.00"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 24*time.Hour, mr.TTL(idempotencyPrefix+"7:crash"))
}
