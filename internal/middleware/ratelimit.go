package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/inlineeditor/internal/config"
)

// RateLimit allows limit.Requests per client IP in each fixed window of the
// named bucket. Counters are kept in Redis under
// ratelimit:<bucket>:<ip>:<window number>, so every server instance shares
// them. A nil client disables the limit, and a failing Redis lets requests
// through.
func RateLimit(rdb *redis.Client, bucket string, limit config.Limit) echo.MiddlewareFunc {
	retryAfter := strconv.Itoa(int(limit.Window.Seconds()))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rdb == nil || limit.Requests <= 0 || limit.Window <= 0 {
			return next
		}
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			window := time.Now().UnixNano() / int64(limit.Window)
			key := "ratelimit:" + bucket + ":" + c.RealIP() + ":" + strconv.FormatInt(window, 10)

			var hits *redis.IntCmd
			_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
				hits = p.Incr(ctx, key)
				p.Expire(ctx, key, limit.Window)
				return nil
			})
			if err != nil {
				slog.WarnContext(ctx, "rate limit check failed",
					slog.String("bucket", bucket),
					slog.Any("error", err),
				)
				return next(c)
			}

			if hits.Val() > int64(limit.Requests) {
				c.Response().Header().Set("Retry-After", retryAfter)
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again.")
			}
			return next(c)
		}
	}
}
