package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/stock-hold-reservation/internal/config"
)

// bodyCapture tees the response body so a 200 can be stored in Redis
// after it has been sent to the client.
type bodyCapture struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
}

func (b *bodyCapture) WriteHeader(code int) {
    b.status = code
    b.ResponseWriter.WriteHeader(code)
}

func (b *bodyCapture) Write(p []byte) (int, error) {
    b.buf.Write(p)
    return b.ResponseWriter.Write(p)
}

// CatalogCache caches successful GET responses for a short TTL.  It is
// applied to the item listing only: availability shown there is
// advisory, the engine re-reads it under the row lock on every hold.
// Disabled (pass-through) when the config says so or Redis is absent.
func CatalogCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 5 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
            key := fmt.Sprintf("%s:%x", cfg.Prefix, sum)

            ctx := c.Request().Context()
            if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
                c.Response().Header().Set("X-Cache", "HIT")
                return c.JSONBlob(http.StatusOK, body)
            }

            cw := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status == http.StatusOK {
                // Request context may be done once the response is written.
                _ = rdb.SetEx(context.Background(), key, cw.buf.Bytes(), ttl).Err()
            }
            return nil
        }
    }
}
