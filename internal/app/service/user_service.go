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

type UserService struct {
	userRepo     repository.UserRepository
	problemRepo  repository.ProblemRepository
	resourceRepo repository.ResourceRepository
	tx           database.TxRunner
	logger       *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	problemRepo repository.ProblemRepository,
	resourceRepo repository.ResourceRepository,
	tx database.TxRunner,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		problemRepo:  problemRepo,
		resourceRepo: resourceRepo,
		tx:           tx,
		logger:       logger,
	}
}

type CreateUserRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	user := &model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := constraint.Check(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created", zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.FindByID(ctx, nil, id)
}

// UpdateUser applies the fields present in patch. An empty patch returns the
// user unchanged.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	var updated *model.User
	err := s.tx.InTx(ctx, nil, func(tx *sql.Tx) error {
		user, err := s.userRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = user
			return nil
		}
		if err := patch.ApplyTo(user); err != nil {
			return err
		}
		if err := constraint.Check(user); err != nil {
			return err
		}
		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes the user together with everything they own.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.Int64("user_id", id))
	return nil
}

func (s *UserService) ListProblems(ctx context.Context, userID int64) ([]model.Problem, error) {
	var problems []model.Problem
	err := s.tx.InTx(ctx, database.ReadSnapshot, func(tx *sql.Tx) error {
		if _, err := s.userRepo.FindByID(ctx, tx, userID); err != nil {
			return err
		}
		var err error
		problems, err = s.problemRepo.ListByUser(ctx, tx, userID, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return problems, nil
}

func (s *UserService) ListResources(ctx context.Context, userID int64) ([]model.Resource, error) {
	var resources []model.Resource
	err := s.tx.InTx(ctx, database.ReadSnapshot, func(tx *sql.Tx) error {
		if _, err := s.userRepo.FindByID(ctx, tx, userID); err != nil {
			return err
		}
		var err error
		resources, err = s.resourceRepo.ListByUser(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resources, nil
}
