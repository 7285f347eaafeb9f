package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codecamp/internal/common/security"
	"codecamp/internal/domain/model"
	"codecamp/internal/platform/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

func newSubmissionRouter(t *testing.T) http.Handler {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-key"), JWTExp: time.Hour}
	security.InitJWT()

	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(security.TokenAuth))
	// Requests in these tests never reach the service.
	NewSubmissionHandler(nil).RegisterRoutes(r)
	return r
}

func TestListLanguages(t *testing.T) {
	h := newSubmissionRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/languages", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var langs []model.Language
	if err := json.Unmarshal(rec.Body.Bytes(), &langs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, l := range langs {
		if l.Name == "python" && l.Judge0ID == 71 {
			found = true
		}
	}
	if !found {
		t.Errorf("python missing from %+v", langs)
	}
}

func TestSubmitRequiresAuth(t *testing.T) {
	h := newSubmissionRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
}

func TestSubmitRejectsMalformedBody(t *testing.T) {
	h := newSubmissionRouter(t)
	token, err := security.GenerateToken("u1", model.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	for _, body := range []string{"", "{not json"} {
		req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: got %d, want 400", body, rec.Code)
		}
	}
}
