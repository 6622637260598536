package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/internal/clipboard"
	"github.com/jackzampolin/promptdice/internal/session"
	"github.com/jackzampolin/promptdice/internal/svcctx"
)

// EditSlotRequest is the request body for PUT /api/prompt/slots/{index}.
type EditSlotRequest struct {
	Value string `json:"value"`
}

// sessionFrom returns the request's session or writes a 503.
func sessionFrom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := svcctx.SessionFrom(r.Context())
	if sess == nil {
		writeError(w, http.StatusServiceUnavailable, "session not available")
		return nil, false
	}
	return sess, true
}

// pathIndex parses a non-negative integer path value or writes a 400.
func pathIndex(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	index, err := strconv.Atoi(r.PathValue(name))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, r.PathValue(name)))
		return 0, false
	}
	return index, true
}

// grouped nests a CLI command under the named parent in `promptdice api`.
func grouped(group string, cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[api.GroupAnnotation] = group
	return cmd
}

// GetPromptEndpoint handles GET /api/prompt.
type GetPromptEndpoint struct{}

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompt", e.handler
}

func (e *GetPromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get the current prompt
//	@Description	Returns the displayed segments, the rendered prompt and the copied flag
//	@Tags			prompt
//	@Produce		json
//	@Success		200	{object}	session.State
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/prompt [get]
func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (e *GetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return grouped("prompt", &cobra.Command{
		Use:   "show",
		Short: "Show the current prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp session.State
			if err := client.Get(cmd.Context(), "/api/prompt", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	})
}

// RollEndpoint handles POST /api/prompt/roll.
type RollEndpoint struct{}

func (e *RollEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompt/roll", e.handler
}

func (e *RollEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Roll the dice
//	@Description	Resolves every slot against the current dataset and records the result in history
//	@Tags			prompt
//	@Produce		json
//	@Success		200	{object}	session.State
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/prompt/roll [post]
func (e *RollEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	state, err := sess.Roll(r.Context())
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (e *RollEndpoint) Command(getServerURL func() string) *cobra.Command {
	return grouped("prompt", &cobra.Command{
		Use:   "roll",
		Short: "Roll every slot and print the new prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp session.State
			if err := client.Post(cmd.Context(), "/api/prompt/roll", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	})
}

// EditSlotEndpoint handles PUT /api/prompt/slots/{index}.
type EditSlotEndpoint struct{}

func (e *EditSlotEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/prompt/slots/{index}", e.handler
}

func (e *EditSlotEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Edit a slot
//	@Description	Replaces the value of one dynamic segment and clears its error flag. History is not touched.
//	@Tags			prompt
//	@Accept			json
//	@Produce		json
//	@Param			index	path		int				true	"Segment index"
//	@Param			body	body		EditSlotRequest	true	"New value"
//	@Success		200		{object}	session.State
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/prompt/slots/{index} [put]
func (e *EditSlotEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}
	var req EditSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	state, err := sess.EditSlot(index, req.Value)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (e *EditSlotEndpoint) Command(getServerURL func() string) *cobra.Command {
	return grouped("prompt", &cobra.Command{
		Use:   "edit <index> <value>",
		Short: "Set the value of one slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}
			client := api.NewClient(getServerURL())
			var resp session.State
			path := fmt.Sprintf("/api/prompt/slots/%d", index)
			if err := client.Put(cmd.Context(), path, EditSlotRequest{Value: args[1]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	})
}

// CopyPromptEndpoint handles POST /api/prompt/copy.
type CopyPromptEndpoint struct{}

func (e *CopyPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompt/copy", e.handler
}

func (e *CopyPromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Copy the current prompt
//	@Description	Copies the rendered prompt when it is non-empty and fully resolved. copied is false when the copy was ignored.
//	@Tags			prompt
//	@Produce		json
//	@Success		200	{object}	session.CopyResult
//	@Router			/api/prompt/copy [post]
func (e *CopyPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Copy(r.Context()))
}

func (e *CopyPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var local bool
	cmd := grouped("prompt", &cobra.Command{
		Use:   "copy",
		Short: "Copy the current prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp session.CopyResult
			if err := client.Post(cmd.Context(), "/api/prompt/copy", nil, &resp); err != nil {
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

// copyLocal writes text to the CLI host's clipboard. Failures are reported
// on stderr only.
func copyLocal(cmd *cobra.Command, text string) {
	if err := clipboard.New().WriteText(cmd.Context(), text); err != nil {
		cmd.PrintErrln("warning: failed to copy to local clipboard:", err)
	}
}
