package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/command"
	"github.com/rs/zerolog"
)

type IStore interface {
	Get(ctx context.Context, sessionID string) (model.CartState, error)
	Dispatch(ctx context.Context, sessionID string, cmd command.Command) (model.CartState, error)
	Clear(ctx context.Context, sessionID string) (model.CartState, error)
}

var _ IStore = (*Store)(nil)

// Store 每個購物 session 一份購物車狀態
// 同一個 session 的命令依序執行，不同 session 互不阻塞
type Store struct {
	repo   Repository
	logger *zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock refs 為持有或等待中的呼叫數，歸零時從 locks 移除
type sessionLock struct {
	sync.Mutex
	refs int
}

func NewStore(repo Repository, logger *zerolog.Logger) *Store {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Store{
		repo:   repo,
		logger: logger,
		locks:  make(map[string]*sessionLock),
	}
}

func (s *Store) acquire(sessionID string) *sessionLock {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return l
}

func (s *Store) release(sessionID string, l *sessionLock) {
	l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, sessionID)
	}
}

func (s *Store) load(ctx context.Context, sessionID string) (model.CartState, error) {
	state, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, ErrCartNotFound) {
		return NewState(), nil
	}
	if err != nil {
		return model.CartState{}, err
	}
	return state, nil
}

// Get 尚未建立的購物車回傳空購物車
func (s *Store) Get(ctx context.Context, sessionID string) (model.CartState, error) {
	l := s.acquire(sessionID)
	defer s.release(sessionID, l)
	return s.load(ctx, sessionID)
}

// Dispatch 讀取 -> reduce -> 保存，回傳新狀態
func (s *Store) Dispatch(ctx context.Context, sessionID string, cmd command.Command) (model.CartState, error) {
	l := s.acquire(sessionID)
	defer s.release(sessionID, l)

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return model.CartState{}, err
	}

	next, err := Reduce(state, cmd)
	if err != nil {
		return state, err
	}

	if err := s.repo.Save(ctx, sessionID, next); err != nil {
		return state, fmt.Errorf("save cart %s: %w", sessionID, err)
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("command", string(cmd.Type())).
		Str("command_id", cmd.GetID()).
		Int("lines", len(next.Lines)).
		Str("total", next.Total.StringFixed(2)).
		Msg("cart updated")
	return next, nil
}

func (s *Store) Clear(ctx context.Context, sessionID string) (model.CartState, error) {
	return s.Dispatch(ctx, sessionID, command.NewClearCartCommand())
}
