package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unicrossed/backend/internal/domain/model"
)

type DiscoveryRepo struct {
	pool *pgxpool.Pool
}

func NewDiscoveryRepo(pool *pgxpool.Pool) *DiscoveryRepo {
	return &DiscoveryRepo{pool: pool}
}

func (r *DiscoveryRepo) NextCandidate(ctx context.Context, userID int64) (model.Candidate, bool, error) {
	if r.pool == nil {
		return model.Candidate{}, false, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.Candidate{}, false, fmt.Errorf("invalid user id")
	}

	var candidate model.Candidate
	err := r.pool.QueryRow(ctx, `
SELECT
	u.id,
	u.username,
	COALESCE(u.city, ''),
	COALESCE(u.state, ''),
	COALESCE(u.bio, ''),
	COALESCE(
		ARRAY(
			SELECT s.name
			FROM user_skills us
			JOIN skills s ON s.id = us.skill_id
			WHERE us.user_id = u.id
			ORDER BY s.name
		),
		ARRAY[]::text[]
	)
FROM users u
WHERE
	u.id <> $1
	AND u.is_staff = FALSE
	AND NOT EXISTS (
		SELECT 1
		FROM interactions i
		WHERE i.from_user_id = $1 AND i.to_user_id = u.id
	)
ORDER BY u.id ASC
LIMIT 1
`, userID).Scan(
		&candidate.ID,
		&candidate.Username,
		&candidate.City,
		&candidate.State,
		&candidate.Bio,
		&candidate.Skills,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Candidate{}, false, nil
		}
		return model.Candidate{}, false, fmt.Errorf("select next candidate: %w", err)
	}
	if candidate.Skills == nil {
		candidate.Skills = []string{}
	}

	return candidate, true, nil
}
