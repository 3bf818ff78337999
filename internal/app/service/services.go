package service

import (
	"go.uber.org/zap"

	"problem_tracker/internal/domain/repository"
	"problem_tracker/internal/platform/database"
)

type Repositories struct {
	Users     repository.UserRepository
	Problems  repository.ProblemRepository
	Solutions repository.SolutionRepository
	Resources repository.ResourceRepository
	Tags      repository.TagRepository
	Links     repository.LinkRepository
	Usage     repository.UsageRanker
}

type Services struct {
	Users     *UserService
	Problems  *ProblemService
	Solutions *SolutionService
	Resources *ResourceService
	Tags      *TagService
	Links     *LinkService
	Views     *ViewService
}

// NewServices wires every service over one set of repositories and one
// transaction runner.
func NewServices(repos Repositories, tx database.TxRunner, logger *zap.Logger) Services {
	views := NewViewService(repos.Users, repos.Problems, repos.Solutions, repos.Resources,
		repos.Tags, repos.Links, repos.Usage, tx, logger.Named("views"))

	return Services{
		Users:     NewUserService(repos.Users, repos.Problems, repos.Resources, tx, logger.Named("users")),
		Problems:  NewProblemService(repos.Problems, repos.Users, repos.Tags, repos.Links, tx, logger.Named("problems")),
		Solutions: NewSolutionService(repos.Solutions, repos.Problems, tx, logger.Named("solutions")),
		Resources: NewResourceService(repos.Resources, repos.Users, tx, logger.Named("resources")),
		Tags:      NewTagService(repos.Tags, tx, logger.Named("tags")),
		Links: NewLinkService(repos.Links, repos.Problems, repos.Solutions, repos.Resources, repos.Tags,
			views, tx, logger.Named("links")),
		Views: views,
	}
}
