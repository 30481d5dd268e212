package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/warehouse-management/pkg/logger"
)

// maxLoggedBody caps how much of a request body ends up in the log line.
const maxLoggedBody = 4 << 10

var sensitiveKeys = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"cookie",
	"credential",
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range sensitiveKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// LoggingMiddleware logs one line per request with its redacted JSON body and one
// line per response, levelled by status class. Fields bound to the request
// context by RequestID are carried along.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := logger.FromOr(r.Context(), base)

			lg.Info("incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"headers", redactHeaders(r.Header),
				"body", readBody(r),
			)

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			status := sw.status()
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			lg.Log(r.Context(), level, "response",
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = "[FILTERED]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// readBody returns the redacted body and restores it for the next handler.
func readBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	if len(raw) > maxLoggedBody {
		return "[TRUNCATED]"
	}
	return RedactJSON(raw)
}

// RedactJSON masks sensitive keys at any depth. Non-JSON bodies are dropped
// entirely when they mention a sensitive key.
func RedactJSON(body []byte) string {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if isSensitive(string(body)) {
			return "[FILTERED]"
		}
		return string(body)
	}
	out, err := json.Marshal(redact(data))
	if err != nil {
		return "[UNLOGGABLE]"
	}
	return string(out)
}

func redact(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, inner := range t {
			if isSensitive(k) {
				t[k] = "[FILTERED]"
			} else {
				t[k] = redact(inner)
			}
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = redact(t[i])
		}
		return t
	default:
		return v
	}
}
