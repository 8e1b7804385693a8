package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestResetPageWiresEndpoints(t *testing.T) {
	e := echo.New()
	RegisterPages(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/password-reset", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMETextHTML) {
		t.Fatalf("expected html, got %q", ct)
	}
	body := rec.Body.String()
	for _, path := range []string{"/api/v1/auth/password-reset/request", "/api/v1/auth/password-reset/confirm"} {
		if !strings.Contains(body, path) {
			t.Fatalf("page does not call %s", path)
		}
	}
}
