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

type ProblemService struct {
	problemRepo repository.ProblemRepository
	userRepo    repository.UserRepository
	tagRepo     repository.TagRepository
	linkRepo    repository.LinkRepository
	tx          database.TxRunner
	logger      *zap.Logger
}

func NewProblemService(
	problemRepo repository.ProblemRepository,
	userRepo repository.UserRepository,
	tagRepo repository.TagRepository,
	linkRepo repository.LinkRepository,
	tx database.TxRunner,
	logger *zap.Logger,
) *ProblemService {
	return &ProblemService{
		problemRepo: problemRepo,
		userRepo:    userRepo,
		tagRepo:     tagRepo,
		linkRepo:    linkRepo,
		tx:          tx,
		logger:      logger,
	}
}

type CreateProblemRequest struct {
	UserID      int64   `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ProblemType *string `json:"problem_type"`
	Tags        []int64 `json:"tags"` // tag ids to attach
}

// CreateProblem inserts the problem and attaches its tags in one transaction.
// A missing owner or tag aborts the whole operation.
func (s *ProblemService) CreateProblem(ctx context.Context, req CreateProblemRequest) (*model.Problem, error) {
	problem := &model.Problem{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		ProblemType: req.ProblemType,
	}
	if err := constraint.Check(problem); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := s.userRepo.FindByID(ctx, tx, req.UserID); err != nil {
			return err
		}
		if err := s.problemRepo.Create(ctx, tx, problem); err != nil {
			return err
		}
		for _, tagID := range dedupe(req.Tags) {
			if _, err := s.tagRepo.FindByID(ctx, tx, tagID); err != nil {
				return err
			}
			link := model.ProblemTag{ProblemID: problem.ID, TagID: tagID}
			if err := s.linkRepo.AttachProblemTag(ctx, tx, link); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Problem created", zap.Int64("problem_id", problem.ID), zap.Int64("user_id", problem.UserID))
	return problem, nil
}

func (s *ProblemService) UpdateProblem(ctx context.Context, id int64, patch model.ProblemPatch) (*model.Problem, error) {
	var updated *model.Problem
	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		problem, err := s.problemRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = problem
			return nil
		}
		if err := patch.ApplyTo(problem); err != nil {
			return err
		}
		if err := constraint.Check(problem); err != nil {
			return err
		}
		if err := s.problemRepo.Update(ctx, tx, problem); err != nil {
			return err
		}
		updated = problem
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ResolveProblem marks the problem resolved.
func (s *ProblemService) ResolveProblem(ctx context.Context, id int64) (*model.Problem, error) {
	return s.UpdateProblem(ctx, id, model.ProblemPatch{Resolved: model.Some(true)})
}

func (s *ProblemService) DeleteProblem(ctx context.Context, id int64) error {
	if err := s.problemRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("Problem deleted", zap.Int64("problem_id", id))
	return nil
}

func (s *ProblemService) SearchProblems(ctx context.Context, filter model.ProblemFilter) ([]model.Problem, error) {
	return s.problemRepo.Search(ctx, nil, filter)
}

// dedupe drops repeated ids, keeping first occurrences in order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
