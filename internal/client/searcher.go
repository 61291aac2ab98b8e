package client

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/types"
)

// ErrSearchNotStarted is returned by Search when the submission was rejected
// locally or another search is already running.
var ErrSearchNotStarted = errors.New("search not started")

// Backend is the part of the API a Session uses
type Backend interface {
	Search(ctx context.Context, ingredients string, cuisines []string) (*types.SearchResponse, error)
	GenerateImage(ctx context.Context, recipeName string) (string, error)
}

// Session runs one search at a time against the API and publishes every
// state change to its subscribers.
type Session struct {
	backend    Backend
	imageLimit int
	logger     *zap.Logger

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
	subs    map[int]chan State
	nextSub int
}

// NewSession creates a Session. imageLimit bounds concurrent image requests.
func NewSession(backend Backend, imageLimit int, logger *zap.Logger) *Session {
	return &Session{
		backend:    backend,
		imageLimit: imageLimit,
		logger:     logger,
		subs:       make(map[int]chan State),
	}
}

// State returns the current snapshot
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start submits a search and runs it in the background. It reports false
// when nothing was started: blank ingredients or a search already in flight.
func (s *Session) Start(ctx context.Context, ingredients string, cuisines []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.state.Generation
	s.dispatchLocked(Submit{Ingredients: ingredients, Cuisines: cuisines})
	if s.state.Status != Searching || s.state.Generation == before {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(ctx, cancel, done, s.state.Generation, s.state.Ingredients, s.state.Cuisines)
	return true
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, gen uint64, ingredients string, cuisines []string) {
	defer close(done)
	defer cancel()

	resp, err := s.backend.Search(ctx, ingredients, cuisines)
	if err != nil {
		s.logger.Debug("search failed", zap.Uint64("generation", gen), zap.Error(err))
		s.dispatch(Failed{Generation: gen, Err: err})
		return
	}

	recipes := AttachImages(ctx, resp.Recipes, s.backend.GenerateImage, s.imageLimit)
	s.dispatch(Succeeded{Generation: gen, Recipes: recipes, SearchCount: resp.SearchCount})
}

// Cancel aborts the search in flight. Its response, if any, is discarded.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.dispatchLocked(Cancel{})
}

// Wait blocks until the most recent search has finished or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Search runs a search and waits for it. Cancelling ctx cancels the search.
func (s *Session) Search(ctx context.Context, ingredients string, cuisines []string) (State, error) {
	if !s.Start(ctx, ingredients, cuisines) {
		return s.State(), ErrSearchNotStarted
	}
	if err := s.Wait(ctx); err != nil {
		s.Cancel()
		return s.State(), err
	}
	return s.State(), nil
}

// Subscribe returns a channel that receives the current state immediately
// and then every change. Slow subscribers only see the latest state. Call
// the returned function to unsubscribe.
func (s *Session) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 1)
	ch <- s.state
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Session) dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(a)
}

func (s *Session) dispatchLocked(a Action) {
	next := Reduce(s.state, a)
	if statesEqual(next, s.state) {
		return
	}
	s.state = next
	for _, ch := range s.subs {
		publish(ch, next)
	}
}

// publish replaces any unread state in ch with st.
func publish[T any](ch chan T, st T) {
	select {
	case ch <- st:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

func statesEqual(a, b State) bool {
	return a.Status == b.Status &&
		a.Outcome == b.Outcome &&
		a.Generation == b.Generation &&
		a.Error == b.Error &&
		a.SearchCount == b.SearchCount &&
		len(a.Recipes) == len(b.Recipes) &&
		a.Ingredients == b.Ingredients
}
