package service

import (
	"context"

	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
	"github.com/AlibekovAA/user-service/internal/common/logger"
	"github.com/AlibekovAA/user-service/internal/user/domain"
	userrepo "github.com/AlibekovAA/user-service/internal/user/repository"
)

type UserService struct {
	repo userrepo.Repository
	log  *logger.Logger
}

func NewUserService(repo userrepo.Repository, log *logger.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id domain.ID) (domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create rejects a taken email before inserting. The unique constraint
// still catches two creates racing past the check.
func (s *UserService) Create(ctx context.Context, input domain.NewUser) (domain.User, error) {
	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "user_create_conflict",
		}).Warn("user already exists")
		return domain.User{}, commonerrors.ErrUserAlreadyExists
	}

	user, err := s.repo.Create(ctx, input)
	if err != nil {
		return domain.User{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": int64(user.ID),
		"action":  "user_created",
	}).Info("user created")
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id domain.ID, changes domain.Changes) (domain.User, error) {
	user, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return domain.User{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": int64(user.ID),
		"action":  "user_updated",
	}).Info("user updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id domain.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": int64(id),
		"action":  "user_deleted",
	}).Info("user deleted")
	return nil
}
