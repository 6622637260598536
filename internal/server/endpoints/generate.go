package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/internal/dice"
)

// GenerateResponse is the body of a successful GET /api/generate.
type GenerateResponse struct {
	Prompt string `json:"prompt"`
}

func (g GenerateResponse) String() string { return g.Prompt }

// GenerateEndpoint handles /api/generate: a stateless fill of the default
// template from the built-in dataset. User customizations are never read.
type GenerateEndpoint struct {
	// Roller defaults to dice.DefaultRoller.
	Roller dice.Roller
}

func (e *GenerateEndpoint) Route() (string, string, http.HandlerFunc) {
	// Registered for every method so non-GET requests get a plain 405
	// with an exact Allow header instead of the mux default.
	return "", "/api/generate", e.handler
}

func (e *GenerateEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Generate a prompt
//	@Description	Fills the default template from the built-in dataset. Missing categories render as [category].
//	@Tags			generate
//	@Produce		json
//	@Success		200	{object}	GenerateResponse
//	@Failure		405	{string}	string	"Method not allowed"
//	@Router			/api/generate [get]
func (e *GenerateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte("Method " + r.Method + " Not Allowed"))
		return
	}

	roller := e.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}
	prompt := dice.Fill(dice.DefaultTemplate, dice.DefaultDataset(), roller)

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, http.StatusOK, GenerateResponse{Prompt: prompt})
}

func (e *GenerateEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Fetch a prompt from the stateless generate endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp GenerateResponse
			if err := client.Get(cmd.Context(), "/api/generate", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
