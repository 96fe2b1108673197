// Package memory is an in-process implementation of the repository
// interfaces used by service and handler tests. Nothing in cmd/ wires it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/unicrossed/backend/internal/domain/model"
	"github.com/unicrossed/backend/internal/domain/rules"
)

type pair struct {
	from int64
	to   int64
}

type txKey struct{}

type txState struct {
	unlocks []func()
	undo    []func()
}

// Store keeps identity, interactions and links in memory with the same
// uniqueness rules as the SQL schema. Pair locks are held until WithinTx returns.
type Store struct {
	mu           sync.Mutex
	users        map[int64]model.User
	skills       map[int64][]string
	interactions map[pair]model.Interaction
	links        map[pair]model.Link
	pairLocks    map[int64]*sync.Mutex
	lastID       int64
	now          func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:        make(map[int64]model.User),
		skills:       make(map[int64][]string),
		interactions: make(map[pair]model.Interaction),
		links:        make(map[pair]model.Link),
		pairLocks:    make(map[int64]*sync.Mutex),
		now:          time.Now,
	}
}

func (s *Store) AddUser(user model.User, skills ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = user
	sorted := append([]string(nil), skills...)
	sort.Strings(sorted)
	s.skills[user.ID] = sorted
}

func (s *Store) WithinTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	state := &txState{}
	err := fn(context.WithValue(ctx, txKey{}, state), nil)
	if err != nil {
		s.mu.Lock()
		for i := len(state.undo) - 1; i >= 0; i-- {
			state.undo[i]()
		}
		s.mu.Unlock()
	}
	for i := len(state.unlocks) - 1; i >= 0; i-- {
		state.unlocks[i]()
	}
	return err
}

func (s *Store) GetByID(_ context.Context, userID int64) (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	return user, ok, nil
}

func (s *Store) LockPair(ctx context.Context, _ pgx.Tx, userA, userB int64) error {
	state, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		return fmt.Errorf("transaction is required")
	}

	key := rules.PairLockKey(userA, userB)
	s.mu.Lock()
	lock, ok := s.pairLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.pairLocks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	state.unlocks = append(state.unlocks, lock.Unlock)
	return nil
}

func (s *Store) FindByPair(_ context.Context, _ pgx.Tx, fromUserID, toUserID int64) (model.Interaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.interactions[pair{from: fromUserID, to: toUserID}]
	return item, ok, nil
}

func (s *Store) Insert(ctx context.Context, _ pgx.Tx, item model.Interaction) (model.Interaction, bool, error) {
	if item.FromUserID == item.ToUserID {
		return model.Interaction{}, false, fmt.Errorf("interaction with self violates check constraint")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{from: item.FromUserID, to: item.ToUserID}
	if _, exists := s.interactions[key]; exists {
		return model.Interaction{}, false, nil
	}

	s.lastID++
	item.ID = s.lastID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now().UTC()
	}
	s.interactions[key] = item
	s.onRollback(ctx, func() { delete(s.interactions, key) })
	return item, true, nil
}

func (s *Store) HasPositive(_ context.Context, _ pgx.Tx, fromUserID, toUserID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.interactions[pair{from: fromUserID, to: toUserID}]
	return ok && item.Kind.Positive(), nil
}

func (s *Store) CreateIfAbsent(ctx context.Context, _ pgx.Tx, userID, targetID int64, now time.Time) (model.Link, bool, error) {
	if userID == targetID {
		return model.Link{}, false, fmt.Errorf("invalid link payload")
	}
	userA, userB := rules.CanonicalPair(userID, targetID)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{from: userA, to: userB}
	if existing, ok := s.links[key]; ok {
		return existing, false, nil
	}

	s.lastID++
	link := model.Link{ID: s.lastID, UserAID: userA, UserBID: userB, CreatedAt: now.UTC()}
	s.links[key] = link
	s.onRollback(ctx, func() { delete(s.links, key) })
	return link, true, nil
}

func (s *Store) ListForUser(_ context.Context, userID int64, limit int) ([]model.LinkedUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.LinkedUser, 0)
	for _, link := range s.links {
		if link.UserAID != userID && link.UserBID != userID {
			continue
		}
		items = append(items, model.LinkedUser{
			LinkID:   link.ID,
			User:     s.users[link.Counterpart(userID)],
			LinkedAt: link.CreatedAt,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].LinkedAt.Equal(items[j].LinkedAt) {
			return items[i].LinkedAt.After(items[j].LinkedAt)
		}
		return items[i].LinkID > items[j].LinkID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) NextCandidate(_ context.Context, userID int64) (model.Candidate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		user := s.users[id]
		if id == userID || user.Excluded {
			continue
		}
		if _, reacted := s.interactions[pair{from: userID, to: id}]; reacted {
			continue
		}
		return model.Candidate{
			ID:       user.ID,
			Username: user.Username,
			City:     user.City,
			State:    user.State,
			Bio:      user.Bio,
			Skills:   append([]string{}, s.skills[id]...),
		}, true, nil
	}
	return model.Candidate{}, false, nil
}

func (s *Store) Links() []model.Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Link, 0, len(s.links))
	for _, link := range s.links {
		out = append(out, link)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) InteractionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.interactions)
}

// onRollback must be called with s.mu held.
func (s *Store) onRollback(ctx context.Context, fn func()) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.undo = append(state.undo, fn)
	}
}
