package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// StoredIdentity is the signed-in account
type StoredIdentity struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// IdentityEvent reports the identity after a change. Identity is nil when
// signed out.
type IdentityEvent struct {
	Identity *StoredIdentity
}

// IdentityStore persists the signed-in identity and notifies subscribers of
// sign-in and sign-out. It is a TokenSource.
type IdentityStore struct {
	path string

	mu      sync.Mutex
	current *StoredIdentity
	subs    map[int]chan IdentityEvent
	nextSub int
}

// LoadIdentityStore reads the identity file. A missing file means signed out.
func LoadIdentityStore(path string) (*IdentityStore, error) {
	s := &IdentityStore{path: path, subs: make(map[int]chan IdentityEvent)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var id StoredIdentity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if id.Token != "" {
		s.current = &id
	}
	return s, nil
}

// Current returns the signed-in identity
func (s *IdentityStore) Current() (StoredIdentity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return StoredIdentity{}, false
	}
	return *s.current, true
}

// Token returns the current bearer token, or "" when signed out
func (s *IdentityStore) Token() string {
	id, _ := s.Current()
	return id.Token
}

// SignIn stores a new identity
func (s *IdentityStore) SignIn(email, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := &StoredIdentity{Email: email, Token: token}
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o600); err != nil {
		return err
	}
	s.current = id
	s.notifyLocked()
	return nil
}

// SignOut forgets the identity
func (s *IdentityStore) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", s.path, err)
	}
	if s.current == nil {
		return nil
	}
	s.current = nil
	s.notifyLocked()
	return nil
}

// Subscribe returns a channel that receives the current identity immediately
// and then every change. Call the returned function to unsubscribe.
func (s *IdentityStore) Subscribe() (<-chan IdentityEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan IdentityEvent, 1)
	ch <- s.eventLocked()
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

func (s *IdentityStore) eventLocked() IdentityEvent {
	if s.current == nil {
		return IdentityEvent{}
	}
	id := *s.current
	return IdentityEvent{Identity: &id}
}

func (s *IdentityStore) notifyLocked() {
	ev := s.eventLocked()
	for _, ch := range s.subs {
		publish(ch, ev)
	}
}
