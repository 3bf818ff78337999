package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"problem_tracker/internal/domain/constraint"
	"problem_tracker/internal/domain/model"
	"problem_tracker/internal/domain/repository"
	"problem_tracker/internal/platform/database"
)

type TagService struct {
	tagRepo repository.TagRepository
	tx      database.TxRunner
	logger  *zap.Logger
}

func NewTagService(tagRepo repository.TagRepository, tx database.TxRunner, logger *zap.Logger) *TagService {
	return &TagService{tagRepo: tagRepo, tx: tx, logger: logger}
}

type CreateTagRequest struct {
	TagName     string  `json:"tag_name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

func (s *TagService) CreateTag(ctx context.Context, req CreateTagRequest) (*model.Tag, error) {
	tag := &model.Tag{
		TagName:     req.TagName,
		Category:    req.Category,
		Description: req.Description,
	}
	if err := constraint.Check(tag); err != nil {
		return nil, err
	}
	if err := s.tagRepo.Create(ctx, nil, tag); err != nil {
		return nil, err
	}
	s.logger.Info("Tag created", zap.Int64("tag_id", tag.ID), zap.String("tag_name", tag.TagName))
	return tag, nil
}

func (s *TagService) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	return s.tagRepo.FindByID(ctx, nil, id)
}

func (s *TagService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.tagRepo.List(ctx, nil)
}

func (s *TagService) UpdateTag(ctx context.Context, id int64, patch model.TagPatch) (*model.Tag, error) {
	var updated *model.Tag
	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		tag, err := s.tagRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = tag
			return nil
		}
		if err := patch.ApplyTo(tag); err != nil {
			return err
		}
		if err := constraint.Check(tag); err != nil {
			return err
		}
		if err := s.tagRepo.Update(ctx, tx, tag); err != nil {
			return err
		}
		updated = tag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TagService) DeleteTag(ctx context.Context, id int64) error {
	if err := s.tagRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("Tag deleted", zap.Int64("tag_id", id))
	return nil
}
