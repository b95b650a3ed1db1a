package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
)

// NewRouter builds the HTTP surface. metrics may be nil when Prometheus is disabled.
func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	internalJobToken string,
	metrics http.Handler,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, metrics)
	registerPredictionRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	return RequestTracing(RequestLogging(logger, recoverPanic(logger, mux)))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "http_path", r.URL.Path)
				writeError(ctx, w, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
