package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/internal/dice"
	"github.com/jackzampolin/promptdice/internal/session"
	"github.com/jackzampolin/promptdice/internal/svcctx"
	"github.com/jackzampolin/promptdice/version"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
	Version string `json:"version,omitempty"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Health check
//	@Description	Reports that the HTTP server is responding
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: version.GitRelease})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// readyPollDelay is the pause between /ready polls.
const readyPollDelay = time.Second

// ReadyEndpoint handles GET /ready.
type ReadyEndpoint struct{}

func (e *ReadyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/ready", e.handler
}

func (e *ReadyEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Readiness check
//	@Description	Reports whether storage is open and the session is loaded
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/ready [get]
func (e *ReadyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if svcctx.SessionFrom(r.Context()) == nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Session: "not_initialized"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Session: "ok"})
}

func (e *ReadyEndpoint) Command(getServerURL func() string) *cobra.Command {
	var attempts uint
	cmd := &cobra.Command{
		Use:   "ready",
		Short: "Wait until the server is ready",
		Long: `Poll /ready until the server reports ok.

Useful in scripts right after starting the server in the background:
  promptdice serve &
  promptdice api ready --attempts 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if attempts == 0 {
				return fmt.Errorf("--attempts must be at least 1")
			}
			client := api.NewClient(getServerURL())
			if err := client.WaitReady(cmd.Context(), attempts, readyPollDelay); err != nil {
				return fmt.Errorf("server not ready: %w", err)
			}
			return api.Output(HealthResponse{Status: "ok", Session: "ok"})
		},
	}
	cmd.Flags().UintVar(&attempts, "attempts", 1, "Number of polls before giving up")
	return cmd
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeSessionError maps session and dice errors to a status code.
func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dice.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dice.ErrNotDynamic):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotConfirmed):
		writeError(w, http.StatusConflict, err.Error())
	default:
		svcctx.LoggerFrom(r.Context()).Error("request failed",
			"path", r.URL.Path, "request_id", svcctx.RequestIDFrom(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
