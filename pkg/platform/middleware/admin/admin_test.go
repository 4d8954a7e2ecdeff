package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := []struct {
		name     string
		expected string
		given    string
		status   int
	}{
		{"matching token", "s3cret", "s3cret", http.StatusNoContent},
		{"wrong token", "s3cret", "nope", http.StatusUnauthorized},
		{"unconfigured token rejects all", "", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/drain", nil)
			req.Header.Set("X-Admin-Token", tc.given)
			rr := httptest.NewRecorder()
			RequireAdminToken(tc.expected, logger)(ok).ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}
