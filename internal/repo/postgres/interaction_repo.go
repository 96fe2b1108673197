package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/unicrossed/backend/internal/domain/enums"
	"github.com/unicrossed/backend/internal/domain/model"
	"github.com/unicrossed/backend/internal/domain/rules"
)

var ErrUserNotFound = errors.New("user not found")

type InteractionRepo struct{}

func NewInteractionRepo() *InteractionRepo {
	return &InteractionRepo{}
}

// LockPair serializes writers of the unordered pair until the transaction ends.
func (r *InteractionRepo) LockPair(ctx context.Context, tx pgx.Tx, userA, userB int64) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, rules.PairLockKey(userA, userB)); err != nil {
		return fmt.Errorf("lock interaction pair: %w", err)
	}
	return nil
}

func (r *InteractionRepo) FindByPair(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (model.Interaction, bool, error) {
	if tx == nil {
		return model.Interaction{}, false, fmt.Errorf("transaction is required")
	}

	var (
		item    model.Interaction
		kind    string
		message *string
	)
	err := tx.QueryRow(ctx, `
SELECT id, from_user_id, to_user_id, kind, message, created_at
FROM interactions
WHERE from_user_id = $1 AND to_user_id = $2
`, fromUserID, toUserID).Scan(&item.ID, &item.FromUserID, &item.ToUserID, &kind, &message, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Interaction{}, false, nil
		}
		return model.Interaction{}, false, fmt.Errorf("find interaction by pair: %w", err)
	}

	item.Kind = enums.InteractionKind(kind)
	if message != nil {
		item.Message = *message
	}
	return item, true, nil
}

// Insert returns created=false when the ordered pair already has a row.
func (r *InteractionRepo) Insert(ctx context.Context, tx pgx.Tx, item model.Interaction) (model.Interaction, bool, error) {
	if tx == nil {
		return model.Interaction{}, false, fmt.Errorf("transaction is required")
	}
	if item.FromUserID <= 0 || item.ToUserID <= 0 || !item.Kind.Valid() {
		return model.Interaction{}, false, fmt.Errorf("invalid interaction payload")
	}

	var message *string
	if item.Kind == enums.InteractionKindSuperlike && strings.TrimSpace(item.Message) != "" {
		msg := item.Message
		message = &msg
	}

	err := tx.QueryRow(ctx, `
INSERT INTO interactions (
	from_user_id,
	to_user_id,
	kind,
	message,
	created_at
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (from_user_id, to_user_id) DO NOTHING
RETURNING id, created_at
`, item.FromUserID, item.ToUserID, string(item.Kind), message, item.CreatedAt.UTC()).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Interaction{}, false, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.Interaction{}, false, ErrUserNotFound
		}
		return model.Interaction{}, false, fmt.Errorf("insert interaction: %w", err)
	}

	return item, true, nil
}

func (r *InteractionRepo) HasPositive(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM interactions
WHERE from_user_id = $1 AND to_user_id = $2 AND kind IN ('like', 'superlike')
LIMIT 1
`, fromUserID, toUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup positive interaction: %w", err)
	}

	return true, nil
}
