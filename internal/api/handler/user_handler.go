package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"problem_tracker/internal/app/service"
	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(us *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.createUser)
	r.Get("/users/{userID}", h.getUser)
	r.Patch("/users/{userID}", h.updateUser)
	r.Delete("/users/{userID}", h.deleteUser)
	r.Get("/users/{userID}/problems", h.listProblems)
	r.Get("/users/{userID}/resources", h.listResources)
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var patch model.UserPatch
	if err := decodePatch(r, &patch); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), id, patch)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.DeletedResponse{Deleted: true})
}

func (h *UserHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	problems, err := h.userService.ListProblems(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problems)
}

func (h *UserHandler) listResources(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	resources, err := h.userService.ListResources(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resources)
}
