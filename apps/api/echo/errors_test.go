package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"sekolahku/core"
)

type recordingLogger struct {
	errorCalls []string
}

func (l *recordingLogger) Enable(enabled bool)                {}
func (l *recordingLogger) Debug(msg string, _ ...interface{}) {}
func (l *recordingLogger) Info(msg string, _ ...interface{})  {}
func (l *recordingLogger) Warn(msg string, _ ...interface{})  {}
func (l *recordingLogger) Fatal(msg string, _ ...interface{}) {}
func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.errorCalls = append(l.errorCalls, msg)
}

// A failing store must surface to the caller as 503 with the stable body and
// reach the logger; it must never be folded into a generic 500 or swallowed.
func TestHTTPErrorHandler_storeUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "bare store error", err: core.NewStoreError("grade.midfinal.query", errors.New("connection refused"))},
		{name: "wrapped store error", err: errors.Wrap(core.NewStoreError("attendance.upsert", errors.New("connection refused")), "saving tally")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := new(recordingLogger)
			app := echo.New()
			app.Debug = false
			app.HTTPErrorHandler = newAppHTTPErrorHandler(logger, func() {})
			app.GET("/boom", func(ctx echo.Context) error { return tt.err })

			req := httptest.NewRequest(http.MethodGet, "/boom", nil)
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)

			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("code = %d, want %d", rec.Code, http.StatusServiceUnavailable)
			}
			wantBody := `{"error":"service temporarily unavailable"}`
			if body := rec.Body.String(); body != wantBody+"\n" && body != wantBody {
				t.Errorf("body = %s, want %s", body, wantBody)
			}
			if len(logger.errorCalls) != 1 || logger.errorCalls[0] != "store unavailable" {
				t.Errorf("logged errors = %v, want exactly one store-unavailable report", logger.errorCalls)
			}
		})
	}
}
