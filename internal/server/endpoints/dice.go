package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptdice/internal/api"
	"github.com/jackzampolin/promptdice/internal/dice"
)

// Category is one die: a category and its candidate values.
type Category struct {
	Name   string   `json:"name" yaml:"name"`
	Die    string   `json:"die" yaml:"die"` // d<N>, N = number of values
	Values []string `json:"values" yaml:"values"`
}

// DiceResponse lists every category in display order.
type DiceResponse struct {
	Categories []Category `json:"categories"`
}

// ValueRequest is the request body for adding or updating a value.
type ValueRequest struct {
	Value string `json:"value"`
}

// ValueResponse reports whether a mutation changed the dataset, and the
// category as it stands afterwards.
type ValueResponse struct {
	Changed  bool     `json:"changed"`
	Category Category `json:"category"`
}

func categoryView(ds dice.Dataset, name string) Category {
	values := ds[name]
	if values == nil {
		values = []string{}
	}
	return Category{Name: name, Die: fmt.Sprintf("d%d", len(values)), Values: values}
}

// ListDiceEndpoint handles GET /api/dice.
type ListDiceEndpoint struct{}

func (e *ListDiceEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/dice", e.handler
}

func (e *ListDiceEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List dice
//	@Description	Returns every category with its die size and values
//	@Tags			dice
//	@Produce		json
//	@Success		200	{object}	DiceResponse
//	@Router			/api/dice [get]
func (e *ListDiceEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	ds := sess.Dataset()
	resp := DiceResponse{Categories: make([]Category, 0, len(ds))}
	for _, name := range ds.Categories() {
		resp.Categories = append(resp.Categories, categoryView(ds, name))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListDiceEndpoint) Command(getServerURL func() string) *cobra.Command {
	return grouped("dice", &cobra.Command{
		Use:   "list",
		Short: "List categories and their values",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp DiceResponse
			if err := client.Get(cmd.Context(), "/api/dice", &resp); err != nil {
				return err
			}
			return api.Output(resp.Categories)
		},
	})
}

// AddValueEndpoint handles POST /api/dice/{category}.
type AddValueEndpoint struct{}

func (e *AddValueEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/dice/{category}", e.handler
}

func (e *AddValueEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Add a value
//	@Description	Appends the trimmed value to the category, creating it if absent. Whitespace-only values are ignored.
//	@Tags			dice
//	@Accept			json
//	@Produce		json
//	@Param			category	path		string			true	"Category name"
//	@Param			body		body		ValueRequest	true	"Value to add"
//	@Success		200			{object}	ValueResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/api/dice/{category} [post]
func (e *AddValueEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	category := r.PathValue("category")
	var req ValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	changed, err := sess.AddValue(r.Context(), category, req.Value)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueResponse{Changed: changed, Category: categoryView(sess.Dataset(), category)})
}

func (e *AddValueEndpoint) Command(getServerURL func() string) *cobra.Command {
	return grouped("dice", &cobra.Command{
		Use:   "add <category> <value>",
		Short: "Add a value to a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ValueResponse
			path := "/api/dice/" + url.PathEscape(args[0])
			if err := client.Post(cmd.Context(), path, ValueRequest{Value: args[1]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	})
}

// UpdateValueEndpoint handles PUT /api/dice/{category}/{index}.
type UpdateValueEndpoint struct{}

func (e *UpdateValueEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/dice/{category}/{index}", e.handler
}

func (e *UpdateValueEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Update a value
//	@Description	Replaces the value at index with the trimmed value. Whitespace-only values are ignored.
//	@Tags			dice
//	@Accept			json
//	@Produce		json
//	@Param			category	path		string			true	"Category name"
//	@Param			index		path		int				true	"Value index"
//	@Param			body		body		ValueRequest	true	"New value"
//	@Success		200			{object}	ValueResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/api/dice/{category}/{index} [put]
func (e *UpdateValueEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	category := r.PathValue("category")
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}
	var req ValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	changed, err := sess.UpdateValue(r.Context(), category, index, req.Value)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueResponse{Changed: changed, Category: categoryView(sess.Dataset(), category)})
}

func (e *UpdateValueEndpoint) Command(getServerURL func() string) *cobra.Command {
	return grouped("dice", &cobra.Command{
		Use:   "update <category> <index> <value>",
		Short: "Replace a value in a category",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			client := api.NewClient(getServerURL())
			var resp ValueResponse
			path := fmt.Sprintf("/api/dice/%s/%d", url.PathEscape(args[0]), index)
			if err := client.Put(cmd.Context(), path, ValueRequest{Value: args[2]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	})
}

// DeleteValueEndpoint handles DELETE /api/dice/{category}/{index}.
type DeleteValueEndpoint struct{}

func (e *DeleteValueEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/dice/{category}/{index}", e.handler
}

func (e *DeleteValueEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a value
//	@Tags			dice
//	@Produce		json
//	@Param			category	path		string	true	"Category name"
//	@Param			index		path		int		true	"Value index"
//	@Success		200			{object}	ValueResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/api/dice/{category}/{index} [delete]
func (e *DeleteValueEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	category := r.PathValue("category")
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}
	if err := sess.DeleteValue(r.Context(), category, index); err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueResponse{Changed: true, Category: categoryView(sess.Dataset(), category)})
}

func (e *DeleteValueEndpoint) Command(getServerURL func() string) *cobra.Command {
	return grouped("dice", &cobra.Command{
		Use:   "delete <category> <index>",
		Short: "Delete a value from a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			client := api.NewClient(getServerURL())
			var resp ValueResponse
			path := fmt.Sprintf("/api/dice/%s/%d", url.PathEscape(args[0]), index)
			if err := client.Delete(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	})
}
