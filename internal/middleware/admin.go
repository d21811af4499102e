package middleware

import (
	"log/slog"
	"net/http"

	"universe-sim/internal/shared/errors"
	"universe-sim/internal/shared/response"
)

// OperatorMiddleware lets through callers whose role may start runs.
func OperatorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "operator",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		claims := GetClaimsFromContext(r)
		if claims == nil {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		if !claims.CanRunSimulations() {
			logger.Warn("Caller without operator role attempted to start a run",
				"subject", claims.Subject,
				"role", claims.Role)
			response.Error(w, r, logger, errors.Forbidden("operator access required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) RequireOperator(next http.Handler) http.Handler {
	return a.JWT(OperatorMiddleware(next))
}
