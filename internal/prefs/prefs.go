package prefs

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"gameshow/internal/kv"
)

const (
	keySound    = "soundEnabled"
	keyDarkMode = "darkMode"
)

type Preferences struct {
	SoundEnabled bool `json:"soundEnabled"`
	DarkMode     bool `json:"darkMode"`
}

// Store reads and toggles the console preferences. Sound is on unless it
// was explicitly turned off; dark mode is off unless explicitly turned on.
type Store struct {
	mu sync.Mutex
	kv kv.Store
}

func New(store kv.Store) *Store {
	return &Store{kv: store}
}

func (s *Store) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Preferences, error) {
	sound, err := s.get(keySound)
	if err != nil {
		return Preferences{}, err
	}
	dark, err := s.get(keyDarkMode)
	if err != nil {
		return Preferences{}, err
	}
	return Preferences{SoundEnabled: sound != "false", DarkMode: dark == "true"}, nil
}

// SoundEnabled reports the sound preference, falling back to on when the
// store cannot be read.
func (s *Store) SoundEnabled() bool {
	p, err := s.Load()
	if err != nil {
		return true
	}
	return p.SoundEnabled
}

func (s *Store) ToggleSound() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load()
	if err != nil {
		return false, err
	}
	p.SoundEnabled = !p.SoundEnabled
	return p.SoundEnabled, s.set(keySound, p.SoundEnabled)
}

func (s *Store) ToggleDarkMode() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load()
	if err != nil {
		return false, err
	}
	p.DarkMode = !p.DarkMode
	return p.DarkMode, s.set(keyDarkMode, p.DarkMode)
}

func (s *Store) Save(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.set(keySound, p.SoundEnabled); err != nil {
		return err
	}
	return s.set(keyDarkMode, p.DarkMode)
}

func (s *Store) get(key string) (string, error) {
	v, err := s.kv.Get(key)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading preference %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) set(key string, v bool) error {
	if err := s.kv.Set(key, strconv.FormatBool(v)); err != nil {
		return fmt.Errorf("saving preference %s: %w", key, err)
	}
	return nil
}
