package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/listenupapp/bookshelf-server/internal/http/response"
)

// slogFormatter plugs chi's RequestLogger into slog.
type slogFormatter struct {
	logger *slog.Logger
}

func (f *slogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &slogEntry{
		logger: f.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		),
	}
}

type slogEntry struct {
	logger *slog.Logger
}

func (e *slogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	if status == 0 {
		status = http.StatusOK
	}

	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	e.logger.Log(context.Background(), level, "HTTP request",
		"status", status,
		"bytes", bytes,
		"duration", elapsed,
	)
}

func (e *slogEntry) Panic(v any, stack []byte) {
	e.logger.Error("Panic recovered",
		"panic", v,
		"stack", string(stack),
	)
}

// recoverer turns panics into a 500 envelope. chi's Recoverer writes a bare
// status line, which clients can't decode.
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				if entry := middleware.GetLogEntry(r); entry != nil {
					entry.Panic(rec, debug.Stack())
				} else {
					log.Error("Panic recovered", "panic", rec, "path", r.URL.Path)
				}
				response.InternalError(w, "internal server error", nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type escapedPathKey struct{}

// markEscapedPath flags requests that chi routes on RawPath. Their path
// parameters are still percent-encoded; every other request arrives decoded.
func markEscapedPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawPath != "" {
			r = r.WithContext(context.WithValue(r.Context(), escapedPathKey{}, true))
		}
		next.ServeHTTP(w, r)
	})
}

// pathValue returns a path parameter in decoded form.
func pathValue(ctx context.Context, v string) string {
	if escaped, _ := ctx.Value(escapedPathKey{}).(bool); !escaped {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
