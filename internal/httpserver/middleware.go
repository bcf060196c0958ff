package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/andrebq/toolshelf/internal/logutil"
)

type (
	statusRecorder struct {
		http.ResponseWriter
		status int
		size   int
	}
)

const RequestIDHeader = "X-Request-Id"

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(buf []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(buf)
	s.size += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// AccessLog tags every request with an id, puts a request scoped logger
// in the request context and logs the outcome once the handler returns.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)
		log := logutil.GetOrDefault(r.Context()).With().Str("request.id", reqID).Logger()
		r = r.WithContext(logutil.WithLogger(r.Context(), log))

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int("size", rec.size).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}
