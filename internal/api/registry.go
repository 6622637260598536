package api

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

// Registry holds all registered endpoints.
type Registry struct {
	endpoints []Endpoint
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an endpoint to the registry.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// RegisterRoutes registers all endpoint HTTP routes with the given mux.
// initMiddleware wraps handlers that require full server initialization.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, initMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresInit() {
			handler = initMiddleware(handler)
		}
		pattern := path
		if method != "" {
			pattern = method + " " + path
		}
		mux.HandleFunc(pattern, handler)
	}
}

// BuildCommands returns a cobra.Command tree for all registered endpoints.
// Commands sharing a parent name (e.g. "dice add", "dice update") are
// grouped under one parent command.
// getServerURL is called at runtime to get the server URL.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running promptdice server via HTTP.

These commands require a running server (promptdice serve).
Use --server to specify a custom server URL.

Examples:
  promptdice api health              # Check server health
  promptdice api prompt roll         # Roll every slot
  promptdice api dice add subject "a lighthouse"`,
	}

	groups := make(map[string]*cobra.Command)
	for _, ep := range r.endpoints {
		cmd := ep.Command(getServerURL)
		if cmd == nil {
			continue
		}
		parent, ok := cmd.Annotations[GroupAnnotation]
		if !ok {
			apiCmd.AddCommand(cmd)
			continue
		}
		group, ok := groups[parent]
		if !ok {
			group = &cobra.Command{
				Use:   parent,
				Short: strings.ToUpper(parent[:1]) + parent[1:] + " commands",
			}
			groups[parent] = group
			apiCmd.AddCommand(group)
		}
		group.AddCommand(cmd)
	}

	return apiCmd
}

// GroupAnnotation names the parent command a CLI command is nested under.
const GroupAnnotation = "promptdice/group"

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
