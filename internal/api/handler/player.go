package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/galapa/internal/api/request"
	"github.com/mcoot/galapa/internal/api/response"
	"github.com/mcoot/galapa/internal/playerlist"
)

// PlayerHandler handles roster endpoints
type PlayerHandler struct {
	list *playerlist.List
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(list *playerlist.List) *PlayerHandler {
	return &PlayerHandler{
		list: list,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	selected, _ := h.list.Selected()

	resp := response.PlayerList{Players: []response.Player{}}
	for _, p := range h.list.Players() {
		resp.Players = append(resp.Players, response.PlayerFromModel(p, selected))
	}
	if trial, ok := h.list.Trial(); ok {
		resp.Trial = &response.Trial{ID: trial.ID, Token: trial.Token, Code: trial.Code}
	}

	response.JSON(w, http.StatusOK, resp)
}

// Add handles POST /api/v1/players
func (h *PlayerHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req request.AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Token == "" {
		WriteError(w, NewInvalidRequestError("token is required"))
		return
	}

	p, err := h.list.Add(req.Token)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.list.Save(r.Context()); err != nil {
		WriteError(w, err)
		return
	}

	selected, _ := h.list.Selected()
	response.JSON(w, http.StatusCreated, response.PlayerFromModel(p, selected))
}

// Remove handles DELETE /api/v1/players/{token}
func (h *PlayerHandler) Remove(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	if err := h.list.Remove(token); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.list.Save(r.Context()); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// SetSecrets handles PUT /api/v1/players/{token}/secrets
func (h *PlayerHandler) SetSecrets(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req request.SecretsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.list.SetSecrets(token, req.Password, req.TOTPSecret); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.list.Save(r.Context()); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Select handles POST /api/v1/players/{token}/select
func (h *PlayerHandler) Select(w http.ResponseWriter, r *http.Request) {
	p, err := h.list.Player(mux.Vars(r)["token"])
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.list.Select(p.Number); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.list.Save(r.Context()); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
