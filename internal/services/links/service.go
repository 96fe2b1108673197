package links

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/unicrossed/backend/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

type InteractionReader interface {
	HasPositive(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error)
}

type LinkStore interface {
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (model.Link, bool, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.LinkedUser, error)
}

type Config struct {
	DefaultListLimit int
	MaxListLimit     int
}

type Dependencies struct {
	Interactions InteractionReader
	Links        LinkStore
}

// Formation describes what TryFormLink observed for the pair.
// Linked is true whenever the pair ends up linked; Created only for the
// caller whose insert produced the row.
type Formation struct {
	Link    model.Link
	Linked  bool
	Created bool
}

type Service struct {
	interactions InteractionReader
	links        LinkStore
	cfg          Config
	now          func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.DefaultListLimit <= 0 {
		cfg.DefaultListLimit = 50
	}
	if cfg.MaxListLimit <= 0 {
		cfg.MaxListLimit = 200
	}
	if cfg.DefaultListLimit > cfg.MaxListLimit {
		cfg.DefaultListLimit = cfg.MaxListLimit
	}

	return &Service{
		interactions: deps.Interactions,
		links:        deps.Links,
		cfg:          cfg,
		now:          time.Now,
	}
}

// TryFormLink runs after a positive reaction from userID to targetID was
// written in tx and links the pair if targetID already reacted positively.
func (s *Service) TryFormLink(ctx context.Context, tx pgx.Tx, userID, targetID int64) (Formation, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return Formation{}, ErrValidation
	}

	reciprocal, err := s.interactions.HasPositive(ctx, tx, targetID, userID)
	if err != nil {
		return Formation{}, fmt.Errorf("check reciprocal reaction: %w", err)
	}
	if !reciprocal {
		return Formation{}, nil
	}

	link, created, err := s.links.CreateIfAbsent(ctx, tx, userID, targetID, s.now().UTC())
	if err != nil {
		return Formation{}, fmt.Errorf("create link: %w", err)
	}

	return Formation{Link: link, Linked: true, Created: created}, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit int) ([]model.LinkedUser, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if limit <= 0 {
		limit = s.cfg.DefaultListLimit
	}
	if limit > s.cfg.MaxListLimit {
		limit = s.cfg.MaxListLimit
	}

	items, err := s.links.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return items, nil
}
