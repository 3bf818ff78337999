package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"problem_tracker/internal/app/service"
	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type ProblemHandler struct {
	problemService *service.ProblemService
	viewService    *service.ViewService
	logger         *zap.Logger
}

func NewProblemHandler(ps *service.ProblemService, vs *service.ViewService, logger *zap.Logger) *ProblemHandler {
	return &ProblemHandler{problemService: ps, viewService: vs, logger: logger}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Post("/problems", h.createProblem)
	r.Get("/problems", h.searchProblems) // GET /problems?keyword=&type=&tag=
	r.Get("/problems/{problemID}", h.getProblem)
	r.Patch("/problems/{problemID}", h.updateProblem)
	r.Delete("/problems/{problemID}", h.deleteProblem)
	r.Post("/problems/{problemID}/resolve", h.resolveProblem)
	r.Get("/problems/{problemID}/full", h.getProblemFull)
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProblemRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	problem, err := h.problemService.CreateProblem(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) searchProblems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ProblemFilter{
		Keyword: q.Get("keyword"),
		Type:    q.Get("type"),
		Tag:     q.Get("tag"),
	}

	problems, err := h.problemService.SearchProblems(r.Context(), filter)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problems)
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	problem, err := h.viewService.ProblemWithAuthor(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) updateProblem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var patch model.ProblemPatch
	if err := decodePatch(r, &patch); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	problem, err := h.problemService.UpdateProblem(r.Context(), id, patch)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) deleteProblem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	if err := h.problemService.DeleteProblem(r.Context(), id); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.DeletedResponse{Deleted: true})
}

func (h *ProblemHandler) resolveProblem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	problem, err := h.problemService.ResolveProblem(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) getProblemFull(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	full, err := h.viewService.ProblemFull(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, full)
}
