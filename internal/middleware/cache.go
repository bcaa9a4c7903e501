package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// bodyCapture tees the response body so a successful render can be cached.
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

var cacheClient = initCacheClient()

func initCacheClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
}

// CacheResponse serves GET responses from Redis for a short TTL. Only used on
// listings that are not filtered per caller; everything degrades to a no-op
// when REDIS_ADDR is unset or Redis is unreachable.
func CacheResponse(prefix string, ttl time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if cacheClient == nil || ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}

		sum := sha1.Sum([]byte(ctx.Request.URL.Path + "?" + ctx.Request.URL.RawQuery))
		key := fmt.Sprintf("crm:cache:%s:%x", prefix, sum)

		rctx := ctx.Request.Context()

		if body, err := cacheClient.Get(rctx, key).Bytes(); err == nil {
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
			ctx.Abort()
			return
		}

		capture := &bodyCapture{ResponseWriter: ctx.Writer}
		ctx.Writer = capture
		ctx.Header("X-Cache", "MISS")

		ctx.Next()

		if capture.Status() == http.StatusOK {
			_ = cacheClient.SetEx(context.Background(), key, capture.buf.Bytes(), ttl).Err()
		}
	}
}
