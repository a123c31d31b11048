package api

import (
	"context"
	"net/http"
	"time"

	"github.com/klauern/block-manager/internal/auth"
	"github.com/klauern/block-manager/internal/constants"
	"go.uber.org/zap"
)

type contextKey string

const ctxClaims contextKey = "claims"

// NonceHeader carries the anti-forgery nonce on settings writes.
const NonceHeader = "X-BM-Nonce"

// ClaimsFromContext returns the claims from context.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(ctxClaims).(*auth.Claims); ok {
		return c
	}
	return nil
}

// WithAuth is middleware that authenticates requests.
func (h *Handler) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.ExtractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization", nil)
			return
		}

		claims, err := h.tokens.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token", err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability is middleware that checks for a required capability.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "authentication required", nil)
				return
			}

			if !claims.Can(capability) {
				writeError(w, http.StatusForbidden, "missing required capability: "+capability, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireNonce is middleware that checks the anti-forgery nonce of the
// authenticated user. The nonce is read from the X-BM-Nonce header, then from
// the nonce query parameter.
func (h *Handler) RequireNonce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "authentication required", nil)
			return
		}

		nonce := r.Header.Get(NonceHeader)
		if nonce == "" {
			nonce = r.URL.Query().Get("nonce")
		}
		if err := h.nonces.Verify(nonce, constants.NonceActionAutoSave, claims.UserID); err != nil {
			writeError(w, http.StatusForbidden, "security check failed", err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// WithDefaults adds default middleware to a handler.
func WithDefaults(h http.Handler, logger *zap.Logger) http.Handler {
	return withLogging(withRecovery(h, logger), logger)
}

func withLogging(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		level := zap.DebugLevel
		if wrapped.status >= 400 {
			level = zap.WarnLevel
		}
		if ce := logger.Check(level, "http request"); ce != nil {
			ce.Write(
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.status),
				zap.Duration("duration", time.Since(start)),
			)
		}
	})
}

func withRecovery(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic serving request", zap.Any("panic", err), zap.String("path", r.URL.Path))
				writeError(w, http.StatusInternalServerError, "internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Chain combines multiple middleware. The first middleware runs outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
