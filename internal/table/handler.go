package handler

import (
	"errors"
	"net/http"
	"strings"

	"tablestore/internal/table/model"
	"tablestore/internal/table/service"
	"tablestore/pkg/logger"
	"tablestore/pkg/respond"
	"tablestore/socket"
)

type TableHandler struct {
	Service *service.TableService
	Hub     *socket.Hub
}

func NewTableHandler(service *service.TableService, hub *socket.Hub) *TableHandler {
	return &TableHandler{Service: service, Hub: hub}
}

func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	t, err := h.Service.GetTable(r.Context(), id)
	if err != nil {
		writeError(w, err, "get table "+id)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

func (h *TableHandler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req model.UpdateTableRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.DecodeError(w, err)
		return
	}
	// Postgres TEXT cannot hold NUL.
	if strings.ContainsRune(req.Title, 0) {
		respond.Error(w, http.StatusUnprocessableEntity, "Invalid request body: title contains a NUL character")
		return
	}
	credential := req.Owner
	if credential == "" {
		credential = respond.BearerToken(r)
	}

	t, err := h.Service.UpdateTable(r.Context(), id, credential, req.Patch())
	if err != nil {
		writeError(w, err, "update table "+id)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

func (h *TableHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req model.CredentialRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.DecodeError(w, err)
		return
	}
	credential := req.UserID
	if credential == "" {
		credential = respond.BearerToken(r)
	}

	t, err := h.Service.DeleteTable(r.Context(), id, credential)
	if err != nil {
		writeError(w, err, "delete table "+id)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

// Subscribe streams change events of one table over a websocket.
func (h *TableHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	socket.ServeWs(h.Hub, w, r, r.PathValue("id"))
}

func writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respond.NotFound(w)
	case errors.Is(err, service.ErrForbidden):
		respond.Forbidden(w)
	default:
		logger.Sugar.Errorf("Handler: Failed to %s: %v", op, err)
		respond.Internal(w)
	}
}
