package session

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"gameshow/internal/events"
	"gameshow/internal/undo"
)

const (
	defaultTTL    = 1 * time.Hour
	sweepInterval = 5 * time.Minute

	// Join codes skip characters hosts misread on a projector: 0, O, 1, I, L.
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 4
	codeAttempts = 10
)

type Config struct {
	MaxUndoHistory int
	TTL            time.Duration
	// SoundEnabled gates the sound cues. Nil means always on.
	SoundEnabled func() bool
	// Observers are subscribed to every new session's bus.
	Observers []events.Observer
}

func DefaultConfig() Config {
	return Config{
		MaxUndoHistory: undo.DefaultMaxHistory,
		TTL:            defaultTTL,
	}
}

func (c Config) soundEnabled() func() bool {
	if c.SoundEnabled == nil {
		return func() bool { return true }
	}
	return c.SoundEnabled
}

type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	cfg       Config
	done      chan struct{}
	closeOnce sync.Once
}

func NewStore(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	s := &Store{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		done:     make(chan struct{}),
	}
	go s.sweepStale()
	return s
}

func (s *Store) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for range codeAttempts {
		code, err := newCode()
		if err != nil {
			return nil, fmt.Errorf("generating session code: %w", err)
		}
		if _, exists := s.sessions[code]; exists {
			continue
		}
		sess := newSession(code, s.cfg)
		s.sessions[code] = sess
		return sess, nil
	}
	return nil, fmt.Errorf("no free session code after %d attempts", codeAttempts)
}

func newCode() (string, error) {
	size := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(codeLength)
	for range codeLength {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func (s *Store) Get(code string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[code]
}

func (s *Store) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, code)
}

func (s *Store) List() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	return list
}

// Sweep removes sessions idle for longer than the TTL and returns how
// many were removed. Games still being played are never swept.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for code, sess := range s.sessions {
		if sess.Scene() == ScenePlaying {
			continue
		}
		if now.Sub(sess.LastActive()) > s.cfg.TTL {
			delete(s.sessions, code)
			removed++
		}
	}
	return removed
}

// Close stops the background sweeper. It is safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Store) sweepStale() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				slog.Info("swept stale sessions", "count", n)
			}
		}
	}
}
