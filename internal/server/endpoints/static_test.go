package endpoints

import (
	"net/http"
	"strings"
	"testing"
)

func TestStaticEndpoint(t *testing.T) {
	t.Run("serves index", func(t *testing.T) {
		rec := serve(&StaticEndpoint{}, http.MethodGet, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "<html") {
			t.Errorf("expected html, got %q", rec.Body.String()[:min(80, rec.Body.Len())])
		}
	})

	t.Run("unknown path falls back to index", func(t *testing.T) {
		rec := serve(&StaticEndpoint{}, http.MethodGet, "/history")
		if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
			t.Errorf("status = %d, content type %q", rec.Code, rec.Header().Get("Content-Type"))
		}
	})

	t.Run("unknown api path is 404", func(t *testing.T) {
		if rec := serve(&StaticEndpoint{}, http.MethodGet, "/api/nope"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("writes are rejected", func(t *testing.T) {
		if rec := serve(&StaticEndpoint{}, http.MethodPost, "/"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestSwaggerEndpoint(t *testing.T) {
	rec := serve(&SwaggerEndpoint{}, http.MethodGet, "/swagger.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, path := range []string{`"/api/generate"`, `"/api/prompt/roll"`, `"/api/reset"`} {
		if !strings.Contains(body, path) {
			t.Errorf("swagger document missing %s", path)
		}
	}
}
