package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"

	idempotencyPrefix = "idempotency:v1:"
	inProgressMarker  = "__in_progress__"
	redisOpTimeout    = 2 * time.Second
)

type storedResponse struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"contentType"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Keys are scoped to the authenticated user. Requests without the header pass
// through, as does everything when cache is nil. Only 2xx responses are kept;
// failures release the key so the client can retry.
func Idempotency(cache *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if cache == nil || key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		scope := "anon"
		if user, ok := CurrentUser(c); ok {
			scope = strconv.Itoa(user.ID)
		}
		cacheKey := idempotencyPrefix + scope + ":" + key

		ctx, cancel := context.WithTimeout(c.Request.Context(), redisOpTimeout)
		defer cancel()

		cached, err := cache.Get(ctx, cacheKey).Result()
		if err == nil {
			if cached == inProgressMarker {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "A request with this Idempotency-Key is already being processed."})
				return
			}

			var stored storedResponse
			if err := json.Unmarshal([]byte(cached), &stored); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to decode stored idempotent response")
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Duplicate request."})
				return
			}
			c.Header("Idempotent-Replayed", "true")
			c.Data(stored.Status, stored.ContentType, []byte(stored.Body))
			c.Abort()
			return
		}
		if !errors.Is(err, redis.Nil) {
			log.Error().Err(err).Str("key", key).Msg("idempotency lookup failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Idempotency store unavailable."})
			return
		}

		reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("idempotency reservation failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Idempotency store unavailable."})
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "A request with this Idempotency-Key is already being processed."})
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		persistCtx, persistCancel := context.WithTimeout(context.Background(), redisOpTimeout)
		defer persistCancel()

		status := recorder.Status()
		if status < 200 || status >= 300 {
			cache.Del(persistCtx, cacheKey)
			return
		}

		payload, err := json.Marshal(storedResponse{
			Status:      status,
			Body:        recorder.body.String(),
			ContentType: recorder.Header().Get("Content-Type"),
		})
		if err == nil {
			err = cache.Set(persistCtx, cacheKey, payload, ttl).Err()
		}
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to persist idempotent response")
			cache.Del(persistCtx, cacheKey)
		}
	}
}
