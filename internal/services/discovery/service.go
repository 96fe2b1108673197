package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/unicrossed/backend/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

type CandidateStore interface {
	NextCandidate(ctx context.Context, userID int64) (model.Candidate, bool, error)
}

type Service struct {
	store CandidateStore
}

func NewService(store CandidateStore) *Service {
	return &Service{store: store}
}

// NextCandidate returns the lowest-id user the caller has not reacted to.
// found is false once the queue is exhausted.
func (s *Service) NextCandidate(ctx context.Context, userID int64) (model.Candidate, bool, error) {
	if userID <= 0 {
		return model.Candidate{}, false, ErrValidation
	}

	candidate, found, err := s.store.NextCandidate(ctx, userID)
	if err != nil {
		return model.Candidate{}, false, fmt.Errorf("next candidate: %w", err)
	}
	if !found {
		return model.Candidate{}, false, nil
	}
	if candidate.Skills == nil {
		candidate.Skills = []string{}
	}

	return candidate, true, nil
}
