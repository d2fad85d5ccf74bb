package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultSessionTTL is how long an idle session keeps its board.
const DefaultSessionTTL = 30 * time.Minute

var ErrSessionsClosed = errors.New("session store closed")

// BoardFactory builds the board for a new session.
type BoardFactory func(ctx context.Context, sessionID string) (*CouponBoard, error)

type session struct {
	board    *CouponBoard
	lastSeen time.Time
}

// SessionStore gives every browser session its own CouponBoard, so the
// selected filter and the copied code belong to one page instance.
// Boards idle for longer than the TTL are closed and forgotten.
type SessionStore struct {
	newBoard BoardFactory
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

func NewSessionStore(newBoard BoardFactory, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		newBoard: newBoard,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Board returns the board owned by sessionID, creating it on first use.
func (s *SessionStore) Board(ctx context.Context, sessionID string) (*CouponBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionsClosed
	}

	now := s.now()
	s.sweepLocked(now)

	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastSeen = now
		return sess.board, nil
	}

	board, err := s.newBoard(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("new board for session: %w", err)
	}
	s.sessions[sessionID] = &session{board: board, lastSeen: now}
	return board, nil
}

// Lookup returns an existing session's board without creating or touching it.
func (s *SessionStore) Lookup(sessionID string) (*CouponBoard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return sess.board, true
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close closes every board. Board fails after Close.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, sess := range s.sessions {
		sess.board.Close()
		delete(s.sessions, id)
	}
}

func (s *SessionStore) sweepLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			sess.board.Close()
			delete(s.sessions, id)
		}
	}
}
