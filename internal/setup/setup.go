// Package setup holds the pre-game configuration of a competition and the
// bulk editing operations the host uses on it.
package setup

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNoFirstRoundScoring = errors.New("round 1 has no correct points set")
	ErrUnknownRound        = errors.New("unknown round")
	ErrNothingCopied       = errors.New("no round copied yet")
)

var validate = validator.New()

type ContestantSetup struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Mobile     string `json:"mobile,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	AvatarType string `json:"avatarType,omitempty" validate:"omitempty,oneof=upload emoji initials"`
}

type RoundSetup struct {
	Number          int    `json:"number" validate:"min=1"`
	Name            string `json:"name"`
	Avatar          string `json:"avatar,omitempty"`
	TabletRequired  bool   `json:"tabletRequired"`
	CorrectPoints   int    `json:"correctPoints" validate:"min=0"`
	IncorrectPoints int    `json:"incorrectPoints"`
}

type Setup struct {
	CompetitionName string            `json:"competitionName"`
	Contestants     []ContestantSetup `json:"contestants" validate:"dive"`
	Rounds          []RoundSetup      `json:"rounds" validate:"dive"`
}

// ScoringRule is the effective scoring of one round. IncorrectPoints is
// never positive.
type ScoringRule struct {
	RoundNumber     int    `json:"roundNumber"`
	Name            string `json:"name"`
	CorrectPoints   int    `json:"correctPoints"`
	IncorrectPoints int    `json:"incorrectPoints"`
	Avatar          string `json:"avatar,omitempty"`
	TabletRequired  bool   `json:"tabletRequired"`
}

func (s *Setup) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("setup validation failed: %w", err)
	}
	return nil
}

func (s *Setup) Round(number int) (*RoundSetup, bool) {
	for i := range s.Rounds {
		if s.Rounds[i].Number == number {
			return &s.Rounds[i], true
		}
	}
	return nil, false
}

// ApplyScoringToAll copies round 1's correct and incorrect points to every
// other round and returns how many rounds were changed.
func (s *Setup) ApplyScoringToAll() (int, error) {
	first, ok := s.Round(1)
	if !ok || first.CorrectPoints == 0 {
		return 0, ErrNoFirstRoundScoring
	}
	n := 0
	for i := range s.Rounds {
		r := &s.Rounds[i]
		if r.Number == 1 {
			continue
		}
		r.CorrectPoints = first.CorrectPoints
		r.IncorrectPoints = first.IncorrectPoints
		n++
	}
	return n, nil
}

func (s *Setup) ScoringRules() []ScoringRule {
	rules := make([]ScoringRule, len(s.Rounds))
	for i, r := range s.Rounds {
		rules[i] = ScoringRule{
			RoundNumber:     r.Number,
			Name:            r.Name,
			CorrectPoints:   r.CorrectPoints,
			IncorrectPoints: -abs(r.IncorrectPoints),
			Avatar:          r.Avatar,
			TabletRequired:  r.TabletRequired,
		}
	}
	return rules
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Clipboard holds one copied round for pasting into another.
type Clipboard struct {
	mu     sync.Mutex
	copied *RoundSetup
}

func (c *Clipboard) Copy(s *Setup, number int) error {
	r, ok := s.Round(number)
	if !ok {
		return fmt.Errorf("copying round %d: %w", number, ErrUnknownRound)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *r
	c.copied = &cp
	return nil
}

// Paste overwrites the round's name, points, tablet flag and, when the
// copied round has one, its avatar. The round number is kept.
func (c *Clipboard) Paste(s *Setup, number int) error {
	c.mu.Lock()
	src := c.copied
	c.mu.Unlock()
	if src == nil {
		return ErrNothingCopied
	}
	r, ok := s.Round(number)
	if !ok {
		return fmt.Errorf("pasting round %d: %w", number, ErrUnknownRound)
	}
	r.Name = src.Name
	r.CorrectPoints = src.CorrectPoints
	r.IncorrectPoints = src.IncorrectPoints
	r.TabletRequired = src.TabletRequired
	if src.Avatar != "" {
		r.Avatar = src.Avatar
	}
	return nil
}
