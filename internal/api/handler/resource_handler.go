package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"problem_tracker/internal/app/service"
	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type ResourceHandler struct {
	resourceService *service.ResourceService
	viewService     *service.ViewService
	logger          *zap.Logger
}

func NewResourceHandler(rs *service.ResourceService, vs *service.ViewService, logger *zap.Logger) *ResourceHandler {
	return &ResourceHandler{resourceService: rs, viewService: vs, logger: logger}
}

func (h *ResourceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/resources", h.createResource)
	r.Get("/resources", h.searchResources) // GET /resources?keyword=&platform=&tag=&min_score=
	r.Get("/resources/{resourceID}", h.getResource)
	r.Patch("/resources/{resourceID}", h.updateResource)
	r.Delete("/resources/{resourceID}", h.deleteResource)
	r.Post("/resources/{resourceID}/visit", h.visitResource)
}

func (h *ResourceHandler) createResource(w http.ResponseWriter, r *http.Request) {
	var req service.CreateResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	resource, err := h.resourceService.CreateResource(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resource)
}

func (h *ResourceHandler) searchResources(w http.ResponseWriter, r *http.Request) {
	minScore, err := floatQuery(r, "min_score")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	q := r.URL.Query()
	filter := model.ResourceFilter{
		Keyword:  q.Get("keyword"),
		Platform: q.Get("platform"),
		Tag:      q.Get("tag"),
		MinScore: minScore,
	}

	resources, err := h.resourceService.SearchResources(r.Context(), filter)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resources)
}

func (h *ResourceHandler) getResource(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "resourceID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	detail, err := h.viewService.ResourceDetail(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *ResourceHandler) updateResource(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "resourceID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var patch model.ResourcePatch
	if err := decodePatch(r, &patch); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	resource, err := h.resourceService.UpdateResource(r.Context(), id, patch)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resource)
}

func (h *ResourceHandler) deleteResource(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "resourceID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	if err := h.resourceService.DeleteResource(r.Context(), id); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.DeletedResponse{Deleted: true})
}

func (h *ResourceHandler) visitResource(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "resourceID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	resource, err := h.resourceService.VisitResource(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resource)
}
