package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
)

type fakeEndpoint struct {
	method, path string
	init         bool
	group        string
	use          string
}

func (e *fakeEndpoint) Route() (string, string, http.HandlerFunc) {
	return e.method, e.path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}
}

func (e *fakeEndpoint) RequiresInit() bool { return e.init }

func (e *fakeEndpoint) Command(func() string) *cobra.Command {
	if e.use == "" {
		return nil
	}
	cmd := &cobra.Command{Use: e.use}
	if e.group != "" {
		cmd.Annotations = map[string]string{GroupAnnotation: e.group}
	}
	return cmd
}

func TestRegistry_RegisterRoutes(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeEndpoint{method: "GET", path: "/open", use: "open"})
	r.Register(&fakeEndpoint{method: "POST", path: "/guarded", init: true})
	r.Register(&fakeEndpoint{path: "/any"})

	mux := http.NewServeMux()
	blocked := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}
	r.RegisterRoutes(mux, blocked)

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/open", http.StatusTeapot},
		{"POST", "/guarded", http.StatusServiceUnavailable},
		{"PATCH", "/any", http.StatusTeapot},
		{"GET", "/any", http.StatusTeapot},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestRegistry_BuildCommands(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeEndpoint{method: "GET", path: "/health", use: "health"})
	r.Register(&fakeEndpoint{method: "GET", path: "/a", use: "list", group: "dice"})
	r.Register(&fakeEndpoint{method: "POST", path: "/b", use: "add", group: "dice"})
	r.Register(&fakeEndpoint{method: "GET", path: "/static"})

	root := r.BuildCommands(func() string { return "http://localhost:8080" })

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	if len(names) != 2 || names[0] != "dice" || names[1] != "health" {
		t.Fatalf("top-level commands = %v, want [dice health]", names)
	}

	dice, _, err := root.Find([]string{"dice"})
	if err != nil {
		t.Fatalf("dice group not found: %v", err)
	}
	if n := len(dice.Commands()); n != 2 {
		t.Errorf("dice group has %d commands, want 2", n)
	}
}
