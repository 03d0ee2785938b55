// Package templates stores named competition setups so a host can reuse
// them across games.
package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gameshow/internal/kv"
	"gameshow/internal/setup"
)

const (
	storageKey     = "savedTemplates"
	currentVersion = "1.0"
	untitled       = "Untitled"
)

var (
	ErrEmptyName = errors.New("template name is required")
	ErrNotFound  = errors.New("template not found")
)

type Template struct {
	Version   string    `json:"version"`
	SavedDate time.Time `json:"savedDate"`
	setup.Setup
	ScoringRules []setup.ScoringRule `json:"scoringRules"`
}

type Summary struct {
	Name        string    `json:"name"`
	Contestants int       `json:"contestants"`
	Rounds      int       `json:"rounds"`
	SavedDate   time.Time `json:"savedDate"`
}

// Library keeps every template in one JSON document under a single key.
type Library struct {
	mu  sync.Mutex
	kv  kv.Store
	now func() time.Time
}

func New(store kv.Store) *Library {
	return &Library{kv: store, now: time.Now}
}

func (l *Library) Save(name string, s setup.Setup) (Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Template{}, ErrEmptyName
	}
	if s.CompetitionName == "" {
		s.CompetitionName = untitled
	}
	t := Template{
		Version:      currentVersion,
		SavedDate:    l.now().UTC(),
		Setup:        s,
		ScoringRules: s.ScoringRules(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	all, err := l.read()
	if err != nil {
		return Template{}, err
	}
	all[name] = t
	if err := l.write(all); err != nil {
		return Template{}, err
	}
	return t, nil
}

func (l *Library) Load(name string) (Template, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	all, err := l.read()
	if err != nil {
		return Template{}, err
	}
	t, ok := all[name]
	if !ok {
		return Template{}, fmt.Errorf("loading %q: %w", name, ErrNotFound)
	}
	return t, nil
}

func (l *Library) Delete(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	all, err := l.read()
	if err != nil {
		return err
	}
	if _, ok := all[name]; !ok {
		return fmt.Errorf("deleting %q: %w", name, ErrNotFound)
	}
	delete(all, name)
	return l.write(all)
}

// List returns a summary of every saved template ordered by name.
func (l *Library) List() ([]Summary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	all, err := l.read()
	if err != nil {
		return nil, err
	}
	list := make([]Summary, 0, len(all))
	for name, t := range all {
		list = append(list, Summary{
			Name:        name,
			Contestants: len(t.Contestants),
			Rounds:      len(t.Rounds),
			SavedDate:   t.SavedDate,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (l *Library) read() (map[string]Template, error) {
	raw, err := l.kv.Get(storageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return make(map[string]Template), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}
	all := make(map[string]Template)
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("decoding templates: %w", err)
	}
	return all, nil
}

func (l *Library) write(all map[string]Template) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encoding templates: %w", err)
	}
	if err := l.kv.Set(storageKey, string(data)); err != nil {
		return fmt.Errorf("writing templates: %w", err)
	}
	return nil
}
