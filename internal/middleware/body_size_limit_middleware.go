package hytech_middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type BodySizeLimitMiddleware struct {
	MaxBodyBytes int64
}

// BodySizeLimit rejects requests whose declared Content-Length is over the limit and caps the
// body of every other request, so chunked uploads can't get around it either.
func (b *BodySizeLimitMiddleware) BodySizeLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > b.MaxBodyBytes {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": make([]interface{}, 0),
				"message": fmt.Sprintf(
					"Request body too large. Size: %d bytes, Max: %d bytes",
					r.ContentLength,
					b.MaxBodyBytes,
				),
			})
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, b.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
