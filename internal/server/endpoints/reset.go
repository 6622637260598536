package endpoints

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/internal/session"
)

// ResetRequest is the request body for POST /api/reset.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// ResetEndpoint handles POST /api/reset.
type ResetEndpoint struct{}

func (e *ResetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/reset", e.handler
}

func (e *ResetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Reset to defaults
//	@Description	Restores the default dataset, re-parses the template and clears history. Requires {"confirm": true}; anything else changes nothing.
//	@Tags			reset
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ResetRequest	true	"Confirmation"
//	@Success		200		{object}	session.State
//	@Failure		409		{object}	ErrorResponse
//	@Router			/api/reset [post]
func (e *ResetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := session.ConfirmAndReset(r.Context(), sess, session.Answer(req.Confirm)); err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (e *ResetEndpoint) Command(getServerURL func() string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all dice and history to the defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirmer session.Confirmer = session.Answer(true)
			if !yes {
				confirmer = promptConfirmer(cmd)
			}
			ok, err := confirmer.Confirm(cmd.Context(), session.ResetPrompt)
			if err != nil {
				return err
			}
			if !ok {
				cmd.PrintErrln("reset cancelled")
				return nil
			}

			client := api.NewClient(getServerURL())
			var resp session.State
			if err := client.Post(cmd.Context(), "/api/reset", ResetRequest{Confirm: true}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// promptConfirmer asks on the command's stderr and reads a y/N answer from
// its stdin.
func promptConfirmer(cmd *cobra.Command) session.Confirmer {
	return session.ConfirmFunc(func(ctx context.Context, question string) (bool, error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", question)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	})
}
