package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/galapa/internal/api/request"
	"github.com/mcoot/galapa/internal/api/response"
	"github.com/mcoot/galapa/internal/services/flows"
)

// LoginHandler handles login flow endpoints
type LoginHandler struct {
	flows *flows.Service
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(flowService *flows.Service) *LoginHandler {
	return &LoginHandler{
		flows: flowService,
	}
}

// Start handles POST /api/v1/login
func (h *LoginHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req request.StartLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	mode := flows.Mode(req.Mode)
	if mode != flows.ModeNew && req.Token == "" {
		WriteError(w, NewInvalidRequestError("token is required"))
		return
	}

	state, err := h.flows.Start(r.Context(), flows.StartRequest{Mode: mode, Token: req.Token, Remember: req.Remember})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.FlowFromState(state))
}

// Get handles GET /api/v1/login/{flow}
func (h *LoginHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.flows.Get(mux.Vars(r)["flow"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FlowFromState(state))
}

// Step handles POST /api/v1/login/{flow}/step
func (h *LoginHandler) Step(w http.ResponseWriter, r *http.Request) {
	var req request.StepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	action, err := req.Action()
	if err != nil {
		WriteError(w, err)
		return
	}

	state, err := h.flows.Step(r.Context(), mux.Vars(r)["flow"], action)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FlowFromState(state))
}

// Cancel handles DELETE /api/v1/login/{flow}
func (h *LoginHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.flows.Remove(mux.Vars(r)["flow"])
	response.NoContent(w)
}

// Launch handles POST /api/v1/login/{flow}/launch
func (h *LoginHandler) Launch(w http.ResponseWriter, r *http.Request) {
	proc, err := h.flows.Launch(mux.Vars(r)["flow"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Launch{Pid: proc.Pid()})
}
