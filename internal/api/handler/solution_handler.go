package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"problem_tracker/internal/app/service"
	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type SolutionHandler struct {
	solutionService *service.SolutionService
	logger          *zap.Logger
}

func NewSolutionHandler(ss *service.SolutionService, logger *zap.Logger) *SolutionHandler {
	return &SolutionHandler{solutionService: ss, logger: logger}
}

func (h *SolutionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/problems/{problemID}/solutions", h.createSolution)
	r.Get("/problems/{problemID}/solutions", h.listByProblem)
	r.Get("/solutions/{solutionID}", h.getSolution)
	r.Patch("/solutions/{solutionID}", h.updateSolution)
	r.Delete("/solutions/{solutionID}", h.deleteSolution)
	r.Get("/solutions/{solutionID}/children", h.listChildren)
}

func (h *SolutionHandler) createSolution(w http.ResponseWriter, r *http.Request) {
	problemID, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var req service.CreateSolutionRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	solution, err := h.solutionService.CreateSolution(r.Context(), problemID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, solution)
}

func (h *SolutionHandler) listByProblem(w http.ResponseWriter, r *http.Request) {
	problemID, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	solutions, err := h.solutionService.ListByProblem(r.Context(), problemID)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solutions)
}

func (h *SolutionHandler) getSolution(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "solutionID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	detail, err := h.solutionService.GetSolution(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *SolutionHandler) updateSolution(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "solutionID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var patch model.SolutionPatch
	if err := decodePatch(r, &patch); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	solution, err := h.solutionService.UpdateSolution(r.Context(), id, patch)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solution)
}

func (h *SolutionHandler) deleteSolution(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "solutionID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	if err := h.solutionService.DeleteSolution(r.Context(), id); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.DeletedResponse{Deleted: true})
}

func (h *SolutionHandler) listChildren(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "solutionID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	children, err := h.solutionService.ListChildren(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, children)
}
