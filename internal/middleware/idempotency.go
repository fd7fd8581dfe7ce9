package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:v1:"
	inProgressMarker     = "__in_progress__"
	idempotencyOpTimeout = 2 * time.Second
	// idempotencyLockTTL bounds how long a crashed request can hold its key.
	idempotencyLockTTL   = 30 * time.Second
	maxIdempotencyKeyLen = 128
)

type storedResponse struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"contentType"`
	RequestHash string `json:"requestHash"`
}

// bodyRecorder tees the response body so it can be stored after the handler runs.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Requests without the header pass through. A nil cache disables the middleware.
// Keys are scoped to the authenticated user so must run after AuthMiddleware.
func Idempotency(cache *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if cache == nil || key == "" {
			c.Next()
			return
		}
		logger := GetLoggerFromCtx(c.Request.Context()).With(slog.String("idempotency_key", key))

		if len(key) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key is too long"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		requestHash := fingerprint(c.Request.Method, c.Request.URL.Path, body)

		userID, _ := c.Get(string(userIDKey))
		cacheKey := idempotencyPrefix + toString(userID) + ":" + key

		ctx, cancel := context.WithTimeout(context.Background(), idempotencyOpTimeout)
		defer cancel()

		cached, err := cache.Get(ctx, cacheKey).Result()
		if err == nil {
			if cached == inProgressMarker {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "A request with this Idempotency-Key is still being processed"})
				return
			}
			var stored storedResponse
			if err := json.Unmarshal([]byte(cached), &stored); err != nil {
				logger.Warn("Failed to decode stored idempotent response", slog.String("error", err.Error()))
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Duplicate request"})
				return
			}
			if stored.RequestHash != requestHash {
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Idempotency-Key was already used with a different request"})
				return
			}
			c.Header("Idempotent-Replayed", "true")
			c.Data(stored.Status, stored.ContentType, []byte(stored.Body))
			c.Abort()
			return
		}
		if !errors.Is(err, redis.Nil) {
			logger.Error("Idempotency lookup failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Idempotency store failure"})
			return
		}

		reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, idempotencyLockTTL).Result()
		if err != nil {
			logger.Error("Idempotency reservation failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Idempotency store failure"})
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "A request with this Idempotency-Key is still being processed"})
			return
		}

		// The marker is released unless a response was stored, including when the handler panics.
		persisted := false
		defer func() {
			if persisted {
				return
			}
			releaseCtx, releaseCancel := context.WithTimeout(context.Background(), idempotencyOpTimeout)
			defer releaseCancel()
			if err := cache.Del(releaseCtx, cacheKey).Err(); err != nil {
				logger.Error("Failed to release idempotency key", slog.String("error", err.Error()))
			}
		}()

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		// Server errors are not replayed so the client may retry with the same key.
		if recorder.Status() >= http.StatusInternalServerError {
			return
		}

		persistCtx, persistCancel := context.WithTimeout(context.Background(), idempotencyOpTimeout)
		defer persistCancel()

		payload, err := json.Marshal(storedResponse{
			Status:      recorder.Status(),
			Body:        recorder.buf.String(),
			ContentType: recorder.Header().Get("Content-Type"),
			RequestHash: requestHash,
		})
		if err == nil {
			err = cache.Set(persistCtx, cacheKey, payload, ttl).Err()
		}
		if err != nil {
			logger.Error("Failed to persist idempotent response", slog.String("error", err.Error()))
			return
		}
		persisted = true
	}
}

func fingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "anonymous"
}
