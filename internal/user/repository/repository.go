package repository

import (
	"context"

	pgx "github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/user-service/internal/common/db"
	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
	"github.com/AlibekovAA/user-service/internal/user/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user domain.NewUser) (domain.User, error)
	Update(ctx context.Context, id domain.ID, changes domain.Changes) (domain.User, error)
	Delete(ctx context.Context, id domain.ID) error
}

type PgRepository struct {
	q db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{q: q}
}

const userColumns = `id, name, email, created_at`

func (r *PgRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list users")
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, db.HandleQueryError(err, nil, "scan user")
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "iterate users")
	}

	return users, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	row := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, int64(id))

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, db.HandleQueryError(err, commonerrors.ErrUserNotFound, "find user by id")
	}
	return u, nil
}

func (r *PgRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, db.HandleQueryError(err, nil, "check user email")
	}
	return exists, nil
}

func (r *PgRepository) Create(ctx context.Context, user domain.NewUser) (domain.User, error) {
	row := r.q.QueryRow(
		ctx,
		`INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING `+userColumns,
		user.Name,
		user.Email,
		user.Password,
	)

	u, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.User{}, commonerrors.ErrUserAlreadyExists.WithCause(err)
		}
		return domain.User{}, db.HandleQueryError(err, nil, "create user")
	}
	u.Password = user.Password
	return u, nil
}

func (r *PgRepository) Update(ctx context.Context, id domain.ID, changes domain.Changes) (domain.User, error) {
	row := r.q.QueryRow(
		ctx,
		`UPDATE users SET name = $1, email = $2 WHERE id = $3 RETURNING `+userColumns,
		changes.Name,
		changes.Email,
		int64(id),
	)

	u, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.User{}, commonerrors.ErrUserAlreadyExists.WithCause(err)
		}
		return domain.User{}, db.HandleQueryError(err, commonerrors.ErrUserNotFound, "update user")
	}
	return u, nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	var deleted int64
	err := r.q.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING id`, int64(id)).Scan(&deleted)
	if err != nil {
		return db.HandleQueryError(err, commonerrors.ErrUserNotFound, "delete user")
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		id int64
		u  domain.User
	)
	if err := row.Scan(&id, &u.Name, &u.Email, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	u.ID = domain.ID(id)
	return u, nil
}
