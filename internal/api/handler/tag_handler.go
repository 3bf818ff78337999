package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"problem_tracker/internal/app/service"
	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type TagHandler struct {
	tagService *service.TagService
	logger     *zap.Logger
}

func NewTagHandler(ts *service.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{tagService: ts, logger: logger}
}

func (h *TagHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tags", h.createTag)
	r.Get("/tags", h.listTags)
	r.Get("/tags/{tagID}", h.getTag)
	r.Patch("/tags/{tagID}", h.updateTag)
	r.Delete("/tags/{tagID}", h.deleteTag)
}

func (h *TagHandler) createTag(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTagRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	tag, err := h.tagService.CreateTag(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.ListTags(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) getTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tagID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	tag, err := h.tagService.GetTag(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tag)
}

func (h *TagHandler) updateTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tagID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	var patch model.TagPatch
	if err := decodePatch(r, &patch); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	tag, err := h.tagService.UpdateTag(r.Context(), id, patch)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tag)
}

func (h *TagHandler) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tagID")
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}

	if err := h.tagService.DeleteTag(r.Context(), id); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.DeletedResponse{Deleted: true})
}
