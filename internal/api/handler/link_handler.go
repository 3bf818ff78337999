package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"problem_tracker/internal/app/service"
	"problem_tracker/internal/common"
)

// LinkHandler exposes attach/detach for every association and the problem
// relation endpoints.
type LinkHandler struct {
	linkService *service.LinkService
	logger      *zap.Logger
}

func NewLinkHandler(ls *service.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{linkService: ls, logger: logger}
}

func (h *LinkHandler) RegisterRoutes(r chi.Router) {
	r.Post("/problems/{problemID}/tags", h.attachProblemTag)
	r.Delete("/problems/{problemID}/tags/{tagID}", h.detachProblemTag)

	r.Post("/resources/{resourceID}/tags", h.attachResourceTag)
	r.Delete("/resources/{resourceID}/tags/{tagID}", h.detachResourceTag)

	r.Post("/problems/{problemID}/resources", h.attachProblemResource)
	r.Delete("/problems/{problemID}/resources/{resourceID}", h.detachProblemResource)

	r.Post("/solutions/{solutionID}/resources", h.attachSolutionResource)
	r.Delete("/solutions/{solutionID}/resources/{resourceID}", h.detachSolutionResource)

	r.Post("/problems/{problemID}/relations", h.createRelation)
	r.Delete("/problems/{problemID}/relations/{toProblemID}", h.deleteRelation)
	r.Get("/problems/{problemID}/relations/out", h.relationsOut)
	r.Get("/problems/{problemID}/relations/in", h.relationsIn)
}

// pathIDs parses the named path parameters in order.
func pathIDs(r *http.Request, names ...string) ([]int64, error) {
	ids := make([]int64, len(names))
	for i, name := range names {
		id, err := idParam(r, name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func (h *LinkHandler) attachProblemTag(w http.ResponseWriter, r *http.Request) {
	problemID, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var req service.AttachTagRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	problem, err := h.linkService.AttachTagToProblem(r.Context(), problemID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *LinkHandler) detachProblemTag(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "problemID", "tagID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	problem, err := h.linkService.DetachTagFromProblem(r.Context(), ids[0], ids[1])
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *LinkHandler) attachResourceTag(w http.ResponseWriter, r *http.Request) {
	resourceID, err := idParam(r, "resourceID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var req service.AttachResourceTagRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	detail, err := h.linkService.AttachTagToResource(r.Context(), resourceID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *LinkHandler) detachResourceTag(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "resourceID", "tagID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	detail, err := h.linkService.DetachTagFromResource(r.Context(), ids[0], ids[1])
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *LinkHandler) attachProblemResource(w http.ResponseWriter, r *http.Request) {
	problemID, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var req service.AttachProblemResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	full, err := h.linkService.AttachResourceToProblem(r.Context(), problemID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, full)
}

func (h *LinkHandler) detachProblemResource(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "problemID", "resourceID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	full, err := h.linkService.DetachResourceFromProblem(r.Context(), ids[0], ids[1])
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, full)
}

func (h *LinkHandler) attachSolutionResource(w http.ResponseWriter, r *http.Request) {
	solutionID, err := idParam(r, "solutionID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var req service.AttachSolutionResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	solution, err := h.linkService.AttachResourceToSolution(r.Context(), solutionID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solution)
}

func (h *LinkHandler) detachSolutionResource(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "solutionID", "resourceID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	solution, err := h.linkService.DetachResourceFromSolution(r.Context(), ids[0], ids[1])
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solution)
}

func (h *LinkHandler) createRelation(w http.ResponseWriter, r *http.Request) {
	problemID, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var req service.CreateRelationRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	rel, err := h.linkService.CreateRelation(r.Context(), problemID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, rel)
}

func (h *LinkHandler) deleteRelation(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "problemID", "toProblemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	if err := h.linkService.DeleteRelation(r.Context(), ids[0], ids[1]); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.DeletedResponse{Deleted: true})
}

func (h *LinkHandler) relationsOut(w http.ResponseWriter, r *http.Request) {
	problemID, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	rels, err := h.linkService.RelationsFrom(r.Context(), problemID)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rels)
}

func (h *LinkHandler) relationsIn(w http.ResponseWriter, r *http.Request) {
	problemID, err := idParam(r, "problemID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	rels, err := h.linkService.RelationsTo(r.Context(), problemID)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rels)
}
