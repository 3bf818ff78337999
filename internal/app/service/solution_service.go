package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/constraint"
	"problem_tracker/internal/domain/model"
	"problem_tracker/internal/domain/repository"
	"problem_tracker/internal/platform/database"
)

type SolutionService struct {
	solutionRepo repository.SolutionRepository
	problemRepo  repository.ProblemRepository
	tx           database.TxRunner
	logger       *zap.Logger
}

func NewSolutionService(
	solutionRepo repository.SolutionRepository,
	problemRepo repository.ProblemRepository,
	tx database.TxRunner,
	logger *zap.Logger,
) *SolutionService {
	return &SolutionService{
		solutionRepo: solutionRepo,
		problemRepo:  problemRepo,
		tx:           tx,
		logger:       logger,
	}
}

type CreateSolutionRequest struct {
	// ProblemID is optional in the body; the path decides. A different value is rejected.
	ProblemID              *int64   `json:"problem_id"`
	ParentSolutionID       *int64   `json:"parent_solution_id"`
	CodeSnippet            string   `json:"code_snippet"`
	Explanation            *string  `json:"explanation"`
	ApproachType           *string  `json:"approach_type"`
	ImprovementDescription *string  `json:"improvement_description"`
	SuccessRate            *float64 `json:"success_rate"`
	BranchType             *string  `json:"branch_type"`
	VersionNumber          *int     `json:"version_number"`
}

func (s *SolutionService) CreateSolution(ctx context.Context, problemID int64, req CreateSolutionRequest) (*model.Solution, error) {
	if req.ProblemID != nil && *req.ProblemID != problemID {
		return nil, common.Invalid("problem_id %d does not match problem %d", *req.ProblemID, problemID)
	}

	solution := &model.Solution{
		ProblemID:              problemID,
		ParentSolutionID:       req.ParentSolutionID,
		CodeSnippet:            req.CodeSnippet,
		Explanation:            req.Explanation,
		ApproachType:           req.ApproachType,
		ImprovementDescription: req.ImprovementDescription,
		SuccessRate:            req.SuccessRate,
		BranchType:             req.BranchType,
		VersionNumber:          model.DefaultVersionNumber,
	}
	if req.VersionNumber != nil {
		solution.VersionNumber = *req.VersionNumber
	}
	if err := constraint.Check(solution); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := s.problemRepo.FindByID(ctx, tx, problemID); err != nil {
			return err
		}
		if err := s.requireParent(ctx, tx, solution.ParentSolutionID); err != nil {
			return err
		}
		return s.solutionRepo.Create(ctx, tx, solution)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Solution created",
		zap.Int64("solution_id", solution.ID),
		zap.Int64("problem_id", solution.ProblemID),
	)
	return solution, nil
}

// GetSolution returns the solution with its direct child count and parent row.
func (s *SolutionService) GetSolution(ctx context.Context, id int64) (*model.SolutionDetail, error) {
	var detail *model.SolutionDetail
	err := s.tx.InTx(ctx, database.ReadSnapshot, func(tx *sql.Tx) error {
		solution, err := s.solutionRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		children, err := s.solutionRepo.CountChildren(ctx, tx, id)
		if err != nil {
			return err
		}

		detail = &model.SolutionDetail{Solution: *solution, ChildrenCount: children}
		if solution.ParentSolutionID != nil {
			parent, err := s.solutionRepo.FindByID(ctx, tx, *solution.ParentSolutionID)
			if err != nil {
				return err
			}
			detail.ParentSolution = parent
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *SolutionService) UpdateSolution(ctx context.Context, id int64, patch model.SolutionPatch) (*model.Solution, error) {
	var updated *model.Solution
	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		solution, err := s.solutionRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = solution
			return nil
		}
		if err := patch.ApplyTo(solution); err != nil {
			return err
		}
		if err := constraint.Check(solution); err != nil {
			return err
		}
		if err := constraint.NoSelfLoop(solution.ID, solution.ParentSolutionID); err != nil {
			return err
		}

		if patch.ProblemID.Set {
			if _, err := s.problemRepo.FindByID(ctx, tx, solution.ProblemID); err != nil {
				return err
			}
		}
		if patch.ParentSolutionID.Set {
			if err := s.requireParent(ctx, tx, solution.ParentSolutionID); err != nil {
				return err
			}
		}

		if err := s.solutionRepo.Update(ctx, tx, solution); err != nil {
			return err
		}
		updated = solution
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSolution removes the solution. Its children stay, detached from it.
func (s *SolutionService) DeleteSolution(ctx context.Context, id int64) error {
	if err := s.solutionRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("Solution deleted", zap.Int64("solution_id", id))
	return nil
}

func (s *SolutionService) ListByProblem(ctx context.Context, problemID int64) ([]model.Solution, error) {
	var solutions []model.Solution
	err := s.tx.InTx(ctx, database.ReadSnapshot, func(tx *sql.Tx) error {
		if _, err := s.problemRepo.FindByID(ctx, tx, problemID); err != nil {
			return err
		}
		var err error
		solutions, err = s.solutionRepo.ListByProblem(ctx, tx, problemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return solutions, nil
}

func (s *SolutionService) ListChildren(ctx context.Context, id int64) ([]model.Solution, error) {
	var children []model.Solution
	err := s.tx.InTx(ctx, database.ReadSnapshot, func(tx *sql.Tx) error {
		if _, err := s.solutionRepo.FindByID(ctx, tx, id); err != nil {
			return err
		}
		var err error
		children, err = s.solutionRepo.ListChildren(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

func (s *SolutionService) requireParent(ctx context.Context, tx *sql.Tx, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if _, err := s.solutionRepo.FindByID(ctx, tx, *parentID); err != nil {
		return fmt.Errorf("parent %w", err)
	}
	return nil
}
