package handler

import (
	"errors"
	"net/http"

	"tablestore/internal/table/model"
	tableservice "tablestore/internal/table/service"
	"tablestore/internal/user/service"
	"tablestore/pkg/logger"
	"tablestore/pkg/respond"
)

type UserHandler struct {
	Service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

func (h *UserHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	tables, err := h.Service.ListTables(r.Context(), userID)
	if err != nil {
		if errors.Is(err, tableservice.ErrNotFound) {
			respond.NotFound(w)
			return
		}
		logger.Sugar.Errorf("Handler: Failed to list tables of user %s: %v", userID, err)
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusOK, tables)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req model.CredentialRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.DecodeError(w, err)
		return
	}
	credential := req.UserID
	if credential == "" {
		credential = respond.BearerToken(r)
	}

	n, err := h.Service.DeleteUser(r.Context(), credential)
	if err != nil {
		if errors.Is(err, tableservice.ErrForbidden) {
			respond.Forbidden(w)
			return
		}
		logger.Sugar.Errorf("Handler: Failed to delete user data: %v", err)
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusOK, model.DeleteUserResponse{Deleted: n})
}

// CreateUser always answers 200; failures are reported in the body.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.DecodeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, h.Service.CreateUser(r.Context(), req))
}
