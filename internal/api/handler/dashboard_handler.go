package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"problem_tracker/internal/app/service"
	"problem_tracker/internal/common"
)

type DashboardHandler struct {
	viewService *service.ViewService
	logger      *zap.Logger
}

func NewDashboardHandler(vs *service.ViewService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{viewService: vs, logger: logger}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/{userID}", h.getDashboard)
}

func (h *DashboardHandler) getDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	dash, err := h.viewService.Dashboard(r.Context(), userID)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, dash)
}
