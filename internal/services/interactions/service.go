package interactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/unicrossed/backend/internal/domain/enums"
	"github.com/unicrossed/backend/internal/domain/model"
	"github.com/unicrossed/backend/internal/domain/rules"
	pgrepo "github.com/unicrossed/backend/internal/repo/postgres"
	linkssvc "github.com/unicrossed/backend/internal/services/links"
)

type Outcome string

const (
	OutcomeRecorded          Outcome = "recorded"
	OutcomeLinked            Outcome = "linked"
	OutcomeAlreadyInteracted Outcome = "already_interacted"
)

type Transactor interface {
	WithinTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type IdentityStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, bool, error)
}

type InteractionStore interface {
	LockPair(ctx context.Context, tx pgx.Tx, userA, userB int64) error
	FindByPair(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (model.Interaction, bool, error)
	Insert(ctx context.Context, tx pgx.Tx, item model.Interaction) (model.Interaction, bool, error)
}

type LinkFormer interface {
	TryFormLink(ctx context.Context, tx pgx.Tx, userID, targetID int64) (linkssvc.Formation, error)
}

type EventPublisher interface {
	PublishLinkFormed(ctx context.Context, link model.Link) error
}

type Dependencies struct {
	Tx           Transactor
	Users        IdentityStore
	Interactions InteractionStore
	Links        LinkFormer
	Events       EventPublisher
	Logger       *zap.Logger
}

type Result struct {
	Outcome     Outcome
	Interaction model.Interaction
	Link        *model.Link
}

type Service struct {
	tx           Transactor
	users        IdentityStore
	interactions InteractionStore
	links        LinkFormer
	events       EventPublisher
	log          *zap.Logger
	now          func() time.Time
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		tx:           deps.Tx,
		users:        deps.Users,
		interactions: deps.Interactions,
		links:        deps.Links,
		events:       deps.Events,
		log:          log,
		now:          time.Now,
	}
}

func (s *Service) RecordLike(ctx context.Context, fromUserID, toUserID int64) (Result, error) {
	return s.Record(ctx, fromUserID, toUserID, enums.InteractionKindLike, "")
}

func (s *Service) RecordDislike(ctx context.Context, fromUserID, toUserID int64) (Result, error) {
	return s.Record(ctx, fromUserID, toUserID, enums.InteractionKindDislike, "")
}

func (s *Service) RecordSuperlike(ctx context.Context, fromUserID, toUserID int64, message string) (Result, error) {
	return s.Record(ctx, fromUserID, toUserID, enums.InteractionKindSuperlike, message)
}

func (s *Service) Record(ctx context.Context, fromUserID, toUserID int64, kind enums.InteractionKind, message string) (Result, error) {
	if fromUserID <= 0 || toUserID <= 0 || !kind.Valid() {
		return Result{}, ErrValidation
	}
	if fromUserID == toUserID {
		return Result{}, ErrSelfInteraction
	}

	target, found, err := s.users.GetByID(ctx, toUserID)
	if err != nil {
		return Result{}, fmt.Errorf("get target user: %w", err)
	}
	if !found || target.Excluded {
		return Result{}, ErrTargetNotFound
	}

	var (
		result  Result
		publish bool
	)
	err = s.tx.WithinTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.interactions.LockPair(txCtx, tx, fromUserID, toUserID); err != nil {
			return err
		}

		existing, exists, err := s.interactions.FindByPair(txCtx, tx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		if exists {
			result = Result{Outcome: OutcomeAlreadyInteracted, Interaction: existing}
			return nil
		}

		item := model.Interaction{
			FromUserID: fromUserID,
			ToUserID:   toUserID,
			Kind:       kind,
			CreatedAt:  s.now().UTC(),
		}
		if kind == enums.InteractionKindSuperlike {
			trimmed, n, bound := rules.CheckSuperlikeMessage(message)
			if bound != rules.MessageBoundNone {
				return InvalidMessageLengthError{
					Bound:  bound,
					Length: n,
					Min:    rules.SuperlikeMessageMin,
					Max:    rules.SuperlikeMessageMax,
				}
			}
			item.Message = trimmed
		}

		stored, created, err := s.interactions.Insert(txCtx, tx, item)
		if err != nil {
			return err
		}
		if !created {
			result = Result{Outcome: OutcomeAlreadyInteracted}
			return nil
		}
		result = Result{Outcome: OutcomeRecorded, Interaction: stored}

		if !kind.Positive() {
			return nil
		}

		formation, err := s.links.TryFormLink(txCtx, tx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		if formation.Linked {
			link := formation.Link
			result.Outcome = OutcomeLinked
			result.Link = &link
			publish = formation.Created
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Result{}, ErrTargetNotFound
		}
		if _, ok := IsInvalidMessageLength(err); ok {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("record %s: %w", kind, err)
	}

	if publish && result.Link != nil {
		s.log.Info("link formed",
			zap.Int64("link_id", result.Link.ID),
			zap.Int64("user_a_id", result.Link.UserAID),
			zap.Int64("user_b_id", result.Link.UserBID),
		)
		if s.events != nil {
			if err := s.events.PublishLinkFormed(ctx, *result.Link); err != nil {
				s.log.Warn("publish link formed event failed", zap.Int64("link_id", result.Link.ID), zap.Error(err))
			}
		}
	}

	return result, nil
}
