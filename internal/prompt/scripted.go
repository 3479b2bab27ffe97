package prompt

import (
	"context"
	"fmt"
	"sync"
)

// Answer is one scripted response. Select prompts read Index, confirm
// prompts read Yes. Err, when set, is returned instead.
type Answer struct {
	Index int
	Yes   bool
	Err   error
}

// Scripted is a Driver that replays answers in order and records every
// message it was shown.
type Scripted struct {
	mu       sync.Mutex
	answers  []Answer
	Prompts  []string
	Messages []string
}

var _ Driver = (*Scripted)(nil)

// NewScripted returns a driver replaying answers.
func NewScripted(answers ...Answer) *Scripted {
	return &Scripted{answers: answers}
}

func (s *Scripted) next(message string) (Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, message)
	if len(s.answers) == 0 {
		return Answer{}, fmt.Errorf("prompt: no scripted answer for %q", message)
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, answer.Err
}

func (s *Scripted) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	answer, err := s.next(cfg.Message)
	if err != nil {
		return false, err
	}
	return answer.Yes, nil
}

func (s *Scripted) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(cfg.Options) == 0 {
		return 0, ErrNoOptions
	}
	answer, err := s.next(cfg.Message)
	if err != nil {
		return 0, err
	}
	if answer.Index < 0 || answer.Index >= len(cfg.Options) {
		return 0, fmt.Errorf("prompt: scripted index %d out of range for %q", answer.Index, cfg.Message)
	}
	return answer.Index, nil
}

func (s *Scripted) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.Messages = append(s.Messages, msg)
	s.mu.Unlock()
	return nil
}
