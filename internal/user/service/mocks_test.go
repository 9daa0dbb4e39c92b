package service

import (
	"context"

	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
	"github.com/AlibekovAA/user-service/internal/user/domain"
)

type mockUserRepo struct {
	listFunc          func(ctx context.Context) ([]domain.User, error)
	findByIDFunc      func(ctx context.Context, id domain.ID) (domain.User, error)
	existsByEmailFunc func(ctx context.Context, email string) (bool, error)
	createFunc        func(ctx context.Context, user domain.NewUser) (domain.User, error)
	updateFunc        func(ctx context.Context, id domain.ID, changes domain.Changes) (domain.User, error)
	deleteFunc        func(ctx context.Context, id domain.ID) error
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []domain.User{}, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.User{}, commonerrors.ErrUserNotFound
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFunc != nil {
		return m.existsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.NewUser) (domain.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return domain.User{ID: 1, Name: user.Name, Email: user.Email, Password: user.Password}, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id domain.ID, changes domain.Changes) (domain.User, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, changes)
	}
	return domain.User{ID: id, Name: changes.Name, Email: changes.Email}, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id domain.ID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}
