package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unicrossed/backend/internal/domain/model"
	"github.com/unicrossed/backend/internal/domain/rules"
)

type LinkRepo struct {
	pool *pgxpool.Pool
}

func NewLinkRepo(pool *pgxpool.Pool) *LinkRepo {
	return &LinkRepo{pool: pool}
}

// CreateIfAbsent stores the link for the canonical pair. When another writer
// got there first the existing row is returned with created=false.
func (r *LinkRepo) CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (model.Link, bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return model.Link{}, false, fmt.Errorf("invalid link payload")
	}
	if tx == nil {
		return model.Link{}, false, fmt.Errorf("transaction is required")
	}

	userA, userB := rules.CanonicalPair(userID, targetID)
	link := model.Link{UserAID: userA, UserBID: userB}
	err := tx.QueryRow(ctx, `
INSERT INTO links (
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, $3)
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, created_at
`, userA, userB, now.UTC()).Scan(&link.ID, &link.CreatedAt)
	if err == nil {
		return link, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Link{}, false, fmt.Errorf("create link: %w", err)
	}

	err = tx.QueryRow(ctx, `
SELECT id, created_at
FROM links
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		return model.Link{}, false, fmt.Errorf("load existing link: %w", err)
	}

	return link, false, nil
}

func (r *LinkRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]model.LinkedUser, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	l.id,
	u.id,
	u.username,
	COALESCE(u.city, ''),
	COALESCE(u.state, ''),
	COALESCE(u.bio, ''),
	l.created_at
FROM links l
JOIN users u ON u.id = CASE WHEN l.user_a_id = $1 THEN l.user_b_id ELSE l.user_a_id END
WHERE l.user_a_id = $1 OR l.user_b_id = $1
ORDER BY l.created_at DESC, l.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	items := make([]model.LinkedUser, 0, limit)
	for rows.Next() {
		var item model.LinkedUser
		if err := rows.Scan(
			&item.LinkID,
			&item.User.ID,
			&item.User.Username,
			&item.User.City,
			&item.User.State,
			&item.User.Bio,
			&item.LinkedAt,
		); err != nil {
			return nil, fmt.Errorf("scan link row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link rows: %w", err)
	}

	return items, nil
}
