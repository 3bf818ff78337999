package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"problem_tracker/internal/domain/model"
	"problem_tracker/internal/domain/repository"
	"problem_tracker/internal/platform/database"
)

const (
	dashboardRecentLimit = 10
	dashboardTopLimit    = 5
)

// ViewService composes read-only views spanning several tables. Every
// multi-read view runs inside one read-only snapshot transaction.
type ViewService struct {
	userRepo     repository.UserRepository
	problemRepo  repository.ProblemRepository
	solutionRepo repository.SolutionRepository
	resourceRepo repository.ResourceRepository
	tagRepo      repository.TagRepository
	linkRepo     repository.LinkRepository
	usage        repository.UsageRanker
	tx           database.TxRunner
	logger       *zap.Logger
}

func NewViewService(
	userRepo repository.UserRepository,
	problemRepo repository.ProblemRepository,
	solutionRepo repository.SolutionRepository,
	resourceRepo repository.ResourceRepository,
	tagRepo repository.TagRepository,
	linkRepo repository.LinkRepository,
	usage repository.UsageRanker,
	tx database.TxRunner,
	logger *zap.Logger,
) *ViewService {
	return &ViewService{
		userRepo:     userRepo,
		problemRepo:  problemRepo,
		solutionRepo: solutionRepo,
		resourceRepo: resourceRepo,
		tagRepo:      tagRepo,
		linkRepo:     linkRepo,
		usage:        usage,
		tx:           tx,
		logger:       logger,
	}
}

func (s *ViewService) ProblemWithAuthor(ctx context.Context, problemID int64) (*model.ProblemWithAuthor, error) {
	return s.problemRepo.FindWithAuthor(ctx, nil, problemID)
}

// ProblemFull reads the problem, its solutions, tags, linked resources and
// relations in both directions from a single snapshot.
func (s *ViewService) ProblemFull(ctx context.Context, problemID int64) (*model.ProblemFull, error) {
	var full *model.ProblemFull
	err := s.tx.InTx(ctx, database.ReadSnapshot, func(tx *sql.Tx) error {
		var err error
		full, err = s.problemFull(ctx, tx, problemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return full, nil
}

func (s *ViewService) problemFull(ctx context.Context, tx *sql.Tx, problemID int64) (*model.ProblemFull, error) {
	problem, err := s.problemRepo.FindWithAuthor(ctx, tx, problemID)
	if err != nil {
		return nil, err
	}

	solutions, err := s.solutionRepo.ListByProblem(ctx, tx, problemID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(solutions))
	for i, sol := range solutions {
		ids[i] = sol.ID
	}
	resourcesBySolution, err := s.resourceRepo.ListBySolutions(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	withResources := make([]model.SolutionWithResources, len(solutions))
	for i, sol := range solutions {
		res := resourcesBySolution[sol.ID]
		if res == nil {
			res = []model.Resource{}
		}
		withResources[i] = model.SolutionWithResources{Solution: sol, Resources: res}
	}

	tags, err := s.tagRepo.ListByProblem(ctx, tx, problemID)
	if err != nil {
		return nil, err
	}
	linked, err := s.resourceRepo.ListLinkedToProblem(ctx, tx, problemID)
	if err != nil {
		return nil, err
	}
	out, err := s.linkRepo.ListRelationsFrom(ctx, tx, problemID)
	if err != nil {
		return nil, err
	}
	in, err := s.linkRepo.ListRelationsTo(ctx, tx, problemID)
	if err != nil {
		return nil, err
	}

	return &model.ProblemFull{
		Problem:         *problem,
		Solutions:       withResources,
		Tags:            tags,
		LinkedResources: linked,
		RelationsOut:    out,
		RelationsIn:     in,
	}, nil
}

func (s *ViewService) ResourceDetail(ctx context.Context, resourceID int64) (*model.ResourceDetail, error) {
	var detail *model.ResourceDetail
	err := s.tx.InTx(ctx, database.ReadSnapshot, func(tx *sql.Tx) error {
		resource, err := s.resourceRepo.FindByID(ctx, tx, resourceID)
		if err != nil {
			return err
		}
		problems, err := s.problemRepo.ListByResource(ctx, tx, resourceID)
		if err != nil {
			return err
		}
		solutions, err := s.solutionRepo.ListByResource(ctx, tx, resourceID)
		if err != nil {
			return err
		}
		tags, err := s.tagRepo.ListByResource(ctx, tx, resourceID)
		if err != nil {
			return err
		}

		detail = &model.ResourceDetail{
			Resource:        *resource,
			LinkedProblems:  problems,
			LinkedSolutions: solutions,
			Tags:            tags,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Dashboard shows the user's latest work next to the system-wide most used
// tags and resources.
func (s *ViewService) Dashboard(ctx context.Context, userID int64) (*model.Dashboard, error) {
	var dash *model.Dashboard
	err := s.tx.InTx(ctx, database.ReadSnapshot, func(tx *sql.Tx) error {
		if _, err := s.userRepo.FindByID(ctx, tx, userID); err != nil {
			return err
		}

		problems, err := s.problemRepo.ListByUser(ctx, tx, userID, dashboardRecentLimit)
		if err != nil {
			return err
		}
		recent := make([]model.ProblemSummary, len(problems))
		for i := range problems {
			recent[i] = problems[i].Summary()
		}

		solutions, err := s.solutionRepo.ListRecentByOwner(ctx, tx, userID, dashboardRecentLimit)
		if err != nil {
			return err
		}
		topTags, err := s.usage.TopTags(ctx, tx, dashboardTopLimit)
		if err != nil {
			return err
		}
		topResources, err := s.usage.TopResources(ctx, tx, dashboardTopLimit)
		if err != nil {
			return err
		}

		dash = &model.Dashboard{
			RecentProblems:  recent,
			RecentSolutions: solutions,
			TopTags:         topTags,
			TopResources:    topResources,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dash, nil
}
