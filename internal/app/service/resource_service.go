package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"problem_tracker/internal/domain/constraint"
	"problem_tracker/internal/domain/model"
	"problem_tracker/internal/domain/repository"
	"problem_tracker/internal/platform/database"
)

type ResourceService struct {
	resourceRepo repository.ResourceRepository
	userRepo     repository.UserRepository
	tx           database.TxRunner
	logger       *zap.Logger
	now          func() time.Time
}

func NewResourceService(
	resourceRepo repository.ResourceRepository,
	userRepo repository.UserRepository,
	tx database.TxRunner,
	logger *zap.Logger,
) *ResourceService {
	return &ResourceService{
		resourceRepo: resourceRepo,
		userRepo:     userRepo,
		tx:           tx,
		logger:       logger,
		now:          time.Now,
	}
}

type CreateResourceRequest struct {
	UserID          int64    `json:"user_id"`
	URL             string   `json:"url"`
	Title           *string  `json:"title"`
	SourcePlatform  *string  `json:"source_platform"`
	ContentSummary  *string  `json:"content_summary"`
	UsefulnessScore *float64 `json:"usefulness_score"`
}

// CreateResource records a first visit: both visit timestamps are set to now.
func (s *ResourceService) CreateResource(ctx context.Context, req CreateResourceRequest) (*model.Resource, error) {
	now := s.now().UTC()
	resource := &model.Resource{
		UserID:          req.UserID,
		URL:             req.URL,
		Title:           req.Title,
		SourcePlatform:  req.SourcePlatform,
		ContentSummary:  req.ContentSummary,
		UsefulnessScore: req.UsefulnessScore,
		VisitCount:      1,
		FirstVisitedAt:  &now,
		LastVisitedAt:   &now,
	}
	if err := constraint.Check(resource); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := s.userRepo.FindByID(ctx, tx, req.UserID); err != nil {
			return err
		}
		return s.resourceRepo.Create(ctx, tx, resource)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Resource created", zap.Int64("resource_id", resource.ID), zap.String("url", resource.URL))
	return resource, nil
}

func (s *ResourceService) UpdateResource(ctx context.Context, id int64, patch model.ResourcePatch) (*model.Resource, error) {
	var updated *model.Resource
	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		resource, err := s.resourceRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = resource
			return nil
		}
		if err := patch.ApplyTo(resource); err != nil {
			return err
		}
		if err := constraint.Check(resource); err != nil {
			return err
		}
		if err := s.resourceRepo.Update(ctx, tx, resource); err != nil {
			return err
		}
		updated = resource
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ResourceService) DeleteResource(ctx context.Context, id int64) error {
	if err := s.resourceRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("Resource deleted", zap.Int64("resource_id", id))
	return nil
}

// VisitResource bumps the visit counter and stamps the visit time.
func (s *ResourceService) VisitResource(ctx context.Context, id int64) (*model.Resource, error) {
	return s.resourceRepo.RecordVisit(ctx, nil, id, s.now().UTC())
}

func (s *ResourceService) SearchResources(ctx context.Context, filter model.ResourceFilter) ([]model.Resource, error) {
	return s.resourceRepo.Search(ctx, nil, filter)
}
