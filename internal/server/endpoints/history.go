package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/internal/session"
)

// HistoryResponse lists rendered prompts, most recent first.
type HistoryResponse struct {
	History []string `json:"history"`
}

// ListHistoryEndpoint handles GET /api/history.
type ListHistoryEndpoint struct{}

func (e *ListHistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/history", e.handler
}

func (e *ListHistoryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List history
//	@Description	Returns up to 10 previously rolled prompts, most recent first
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	HistoryResponse
//	@Router			/api/history [get]
func (e *ListHistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{History: sess.History()})
}

func (e *ListHistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return grouped("history", &cobra.Command{
		Use:   "list",
		Short: "List recent prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HistoryResponse
			if err := client.Get(cmd.Context(), "/api/history", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	})
}

// CopyHistoryEndpoint handles POST /api/history/{index}/copy.
type CopyHistoryEndpoint struct{}

func (e *CopyHistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/history/{index}/copy", e.handler
}

func (e *CopyHistoryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Copy a history entry
//	@Tags			history
//	@Produce		json
//	@Param			index	path		int	true	"History index, 0 is the most recent"
//	@Success		200		{object}	session.CopyResult
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/history/{index}/copy [post]
func (e *CopyHistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}
	result, err := sess.CopyHistory(r.Context(), index)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (e *CopyHistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	var local bool
	cmd := grouped("history", &cobra.Command{
		Use:   "copy <index>",
		Short: "Copy a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}
			client := api.NewClient(getServerURL())
			var resp session.CopyResult
			if err := client.Post(cmd.Context(), fmt.Sprintf("/api/history/%d/copy", index), nil, &resp); err != nil {
				return err
			}
			if local && resp.Copied {
				copyLocal(cmd, resp.Text)
			}
			return api.Output(resp)
		},
	})
	cmd.Flags().BoolVar(&local, "local", false, "Also copy to this machine's clipboard")
	return cmd
}
