package http

import (
	"mime"
	"net/http"

	"github.com/medigo/backend/pkg/httputil"
	"github.com/medigo/backend/pkg/logger"
)

// ContentTypeJSON rejects POST and PUT requests that declare a body type other
// than application/json. A missing Content-Type is tolerated.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			if ct := r.Header.Get("Content-Type"); ct != "" {
				mediaType, _, err := mime.ParseMediaType(ct)
				if err != nil || mediaType != "application/json" {
					httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorEnvelope{
						Error: &httputil.ErrorResponse{
							Code:      "UNSUPPORTED_MEDIA_TYPE",
							Message:   "Content-Type must be application/json",
							RequestID: logger.CorrelationIDFromContext(r.Context()),
						},
					})
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
