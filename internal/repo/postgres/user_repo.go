package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unicrossed/backend/internal/domain/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (model.User, bool, error) {
	if r.pool == nil {
		return model.User{}, false, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.User{}, false, fmt.Errorf("invalid user id")
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
SELECT id, username, COALESCE(city, ''), COALESCE(state, ''), COALESCE(bio, ''), is_staff
FROM users
WHERE id = $1
`, userID).Scan(&user.ID, &user.Username, &user.City, &user.State, &user.Bio, &user.Excluded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, false, nil
		}
		return model.User{}, false, fmt.Errorf("get user by id: %w", err)
	}

	return user, true, nil
}
