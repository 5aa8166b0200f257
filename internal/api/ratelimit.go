package api

import (
	"math"
	"net"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
)

// rateLimitAuth throttles register and login attempts per client IP.
// Returns 429 with a Retry-After header when the limit is exceeded.
func (s *Server) rateLimitAuth(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx.RemoteAddr())

	if !s.authRateLimiter.Allow(key) {
		retry := s.authRateLimiter.RetryAfter(key)
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		ctx.SetHeader("Retry-After", strconv.Itoa(max(1, int(math.Ceil(retry.Seconds())))))
		s.writeErr(ctx, domainerrors.ErrRateLimited)
		return
	}

	next(ctx)
}

// clientIP strips the port from a RemoteAddr. The RealIP middleware has
// already applied X-Forwarded-For / X-Real-IP.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
