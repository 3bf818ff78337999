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

// LinkService attaches and detaches association rows. Both endpoints are
// looked up before the write; the write itself is a single upsert inside a
// transaction, and the host's refreshed view is returned.
type LinkService struct {
	linkRepo     repository.LinkRepository
	problemRepo  repository.ProblemRepository
	solutionRepo repository.SolutionRepository
	resourceRepo repository.ResourceRepository
	tagRepo      repository.TagRepository
	views        *ViewService
	tx           database.TxRunner
	logger       *zap.Logger
}

func NewLinkService(
	linkRepo repository.LinkRepository,
	problemRepo repository.ProblemRepository,
	solutionRepo repository.SolutionRepository,
	resourceRepo repository.ResourceRepository,
	tagRepo repository.TagRepository,
	views *ViewService,
	tx database.TxRunner,
	logger *zap.Logger,
) *LinkService {
	return &LinkService{
		linkRepo:     linkRepo,
		problemRepo:  problemRepo,
		solutionRepo: solutionRepo,
		resourceRepo: resourceRepo,
		tagRepo:      tagRepo,
		views:        views,
		tx:           tx,
		logger:       logger,
	}
}

type AttachTagRequest struct {
	TagID int64 `json:"tag_id" validate:"required,gt=0"`
}

type AttachResourceTagRequest struct {
	TagID      int64    `json:"tag_id" validate:"required,gt=0"`
	Confidence *float64 `json:"confidence"`
}

type AttachProblemResourceRequest struct {
	ResourceID       int64    `json:"resource_id" validate:"required,gt=0"`
	RelevanceScore   *float64 `json:"relevance_score"`
	ContributionType *string  `json:"contribution_type"`
}

type AttachSolutionResourceRequest struct {
	ResourceID int64 `json:"resource_id" validate:"required,gt=0"`
}

type CreateRelationRequest struct {
	ToProblemID  int64    `json:"to_problem_id" validate:"required,gt=0"`
	RelationType *string  `json:"relation_type"`
	Strength     *float64 `json:"strength"`
}

func (s *LinkService) AttachTagToProblem(ctx context.Context, problemID int64, req AttachTagRequest) (*model.ProblemWithAuthor, error) {
	if err := constraint.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.problemRepo.FindByID(ctx, nil, problemID); err != nil {
		return nil, err
	}
	if _, err := s.tagRepo.FindByID(ctx, nil, req.TagID); err != nil {
		return nil, err
	}

	link := model.ProblemTag{ProblemID: problemID, TagID: req.TagID}
	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		return s.linkRepo.AttachProblemTag(ctx, tx, link)
	})
	if err != nil {
		return nil, err
	}
	return s.views.ProblemWithAuthor(ctx, problemID)
}

func (s *LinkService) DetachTagFromProblem(ctx context.Context, problemID, tagID int64) (*model.ProblemWithAuthor, error) {
	if err := s.linkRepo.DetachProblemTag(ctx, nil, problemID, tagID); err != nil {
		return nil, err
	}
	return s.views.ProblemWithAuthor(ctx, problemID)
}

// AttachTagToResource inserts the link or overwrites its confidence.
func (s *LinkService) AttachTagToResource(ctx context.Context, resourceID int64, req AttachResourceTagRequest) (*model.ResourceDetail, error) {
	if err := constraint.Check(req); err != nil {
		return nil, err
	}
	link := model.ResourceTag{ResourceID: resourceID, TagID: req.TagID, Confidence: req.Confidence}
	if err := constraint.Check(link); err != nil {
		return nil, err
	}
	if _, err := s.resourceRepo.FindByID(ctx, nil, resourceID); err != nil {
		return nil, err
	}
	if _, err := s.tagRepo.FindByID(ctx, nil, req.TagID); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		return s.linkRepo.UpsertResourceTag(ctx, tx, link)
	})
	if err != nil {
		return nil, err
	}
	return s.views.ResourceDetail(ctx, resourceID)
}

func (s *LinkService) DetachTagFromResource(ctx context.Context, resourceID, tagID int64) (*model.ResourceDetail, error) {
	if err := s.linkRepo.DetachResourceTag(ctx, nil, resourceID, tagID); err != nil {
		return nil, err
	}
	return s.views.ResourceDetail(ctx, resourceID)
}

// AttachResourceToProblem inserts the link or overwrites its relevance and
// contribution type, keeping the original added_at.
func (s *LinkService) AttachResourceToProblem(ctx context.Context, problemID int64, req AttachProblemResourceRequest) (*model.ProblemFull, error) {
	if err := constraint.Check(req); err != nil {
		return nil, err
	}
	link := model.ProblemResource{
		ProblemID:        problemID,
		ResourceID:       req.ResourceID,
		RelevanceScore:   req.RelevanceScore,
		ContributionType: req.ContributionType,
	}
	if err := constraint.Check(link); err != nil {
		return nil, err
	}
	if _, err := s.problemRepo.FindByID(ctx, nil, problemID); err != nil {
		return nil, err
	}
	if _, err := s.resourceRepo.FindByID(ctx, nil, req.ResourceID); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		return s.linkRepo.UpsertProblemResource(ctx, tx, link)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Resource attached to problem",
		zap.Int64("problem_id", problemID),
		zap.Int64("resource_id", req.ResourceID),
	)
	return s.views.ProblemFull(ctx, problemID)
}

func (s *LinkService) DetachResourceFromProblem(ctx context.Context, problemID, resourceID int64) (*model.ProblemFull, error) {
	if err := s.linkRepo.DetachProblemResource(ctx, nil, problemID, resourceID); err != nil {
		return nil, err
	}
	return s.views.ProblemFull(ctx, problemID)
}

func (s *LinkService) AttachResourceToSolution(ctx context.Context, solutionID int64, req AttachSolutionResourceRequest) (*model.Solution, error) {
	if err := constraint.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.solutionRepo.FindByID(ctx, nil, solutionID); err != nil {
		return nil, err
	}
	if _, err := s.resourceRepo.FindByID(ctx, nil, req.ResourceID); err != nil {
		return nil, err
	}

	link := model.SolutionResource{SolutionID: solutionID, ResourceID: req.ResourceID}
	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		return s.linkRepo.AttachSolutionResource(ctx, tx, link)
	})
	if err != nil {
		return nil, err
	}
	return s.solutionRepo.FindByID(ctx, nil, solutionID)
}

func (s *LinkService) DetachResourceFromSolution(ctx context.Context, solutionID, resourceID int64) (*model.Solution, error) {
	if err := s.linkRepo.DetachSolutionResource(ctx, nil, solutionID, resourceID); err != nil {
		return nil, err
	}
	return s.solutionRepo.FindByID(ctx, nil, solutionID)
}

// CreateRelation adds the directed edge from -> to. An existing edge for the
// same ordered pair is a conflict, not an update.
func (s *LinkService) CreateRelation(ctx context.Context, fromProblemID int64, req CreateRelationRequest) (*model.ProblemRelation, error) {
	if err := constraint.Check(req); err != nil {
		return nil, err
	}
	if err := constraint.NoSelfRelation(fromProblemID, req.ToProblemID); err != nil {
		return nil, err
	}
	rel := model.ProblemRelation{
		FromProblemID: fromProblemID,
		ToProblemID:   req.ToProblemID,
		RelationType:  req.RelationType,
		Strength:      req.Strength,
	}
	if err := constraint.Check(rel); err != nil {
		return nil, err
	}
	if _, err := s.problemRepo.FindByID(ctx, nil, fromProblemID); err != nil {
		return nil, err
	}
	if _, err := s.problemRepo.FindByID(ctx, nil, req.ToProblemID); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		return s.linkRepo.CreateRelation(ctx, tx, rel)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Relation created",
		zap.Int64("from_problem_id", fromProblemID),
		zap.Int64("to_problem_id", req.ToProblemID),
	)
	return &rel, nil
}

func (s *LinkService) DeleteRelation(ctx context.Context, fromProblemID, toProblemID int64) error {
	return s.linkRepo.DeleteRelation(ctx, nil, fromProblemID, toProblemID)
}

func (s *LinkService) RelationsFrom(ctx context.Context, problemID int64) ([]model.ProblemRelation, error) {
	if _, err := s.problemRepo.FindByID(ctx, nil, problemID); err != nil {
		return nil, err
	}
	return s.linkRepo.ListRelationsFrom(ctx, nil, problemID)
}

func (s *LinkService) RelationsTo(ctx context.Context, problemID int64) ([]model.ProblemRelation, error) {
	if _, err := s.problemRepo.FindByID(ctx, nil, problemID); err != nil {
		return nil, err
	}
	return s.linkRepo.ListRelationsTo(ctx, nil, problemID)
}
