package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/infrastructure/cache"
	"github.com/erp/stockledger/internal/interfaces/http/dto"
)

const (
	// IdempotencyKeyHeader names the client supplied key for a mutating request
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader is set on responses served from the cache
	IdempotentReplayHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
	idempotencyLockTTL      = 30 * time.Second
)

// Idempotency replays the stored response for a repeated Idempotency-Key.
// The key is bound to the request method, path and body; reusing it for a different
// request is rejected. 5xx responses are not stored so the client can retry.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWith(c, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			if IsBodyTooLarge(err) {
				AbortBodyTooLarge(c)
				return
			}
			abortWith(c, dto.ErrCodeBadRequest, "Request body could not be read")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		storeKey := "http:" + key
		fingerprint := requestFingerprint(c.Request.Method, c.Request.URL.Path, body)

		cached, err := store.Lookup(ctx, storeKey)
		switch {
		case err == nil:
			if cached.Fingerprint != fingerprint {
				abortWith(c, dto.ErrCodeIdempotencyConflict, "Idempotency-Key was already used for a different request")
				return
			}
			c.Header(IdempotentReplayHeader, "true")
			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		case !errors.Is(err, cache.ErrNotCached):
			logger.Error("idempotency lookup failed", zap.String("key", key), zap.Error(err))
			abortWith(c, dto.ErrCodeInternal, "Idempotency store unavailable")
			return
		}

		locked, err := store.Lock(ctx, storeKey, idempotencyLockTTL)
		if err != nil {
			logger.Error("idempotency lock failed", zap.String("key", key), zap.Error(err))
			abortWith(c, dto.ErrCodeInternal, "Idempotency store unavailable")
			return
		}
		if !locked {
			abortWith(c, dto.ErrCodeRequestInProgress, "A request with this Idempotency-Key is still in progress")
			return
		}

		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Unlock(ctx, storeKey); err != nil {
				logger.Warn("idempotency unlock failed", zap.String("key", key), zap.Error(err))
			}
			return
		}
		resp := &cache.CachedResponse{
			StatusCode:  status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
			Fingerprint: fingerprint,
		}
		if err := store.Store(ctx, storeKey, resp, ttl); err != nil {
			logger.Warn("idempotency store failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func requestFingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func abortWith(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// recordingWriter tees the response body so it can be cached
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
