// Package questions supplies interview questions picked at random from a fixed pool.
package questions

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNoQuestionsAvailable is returned when the pool is empty or its source is unreadable.
var ErrNoQuestionsAvailable = errors.New("no questions available")

//go:embed questions.yaml
var defaultPool []byte

type Question struct {
	Name     string `yaml:"name" json:"name"`
	Question string `yaml:"question" json:"question"`
}

// Provider hands out one question per call. Selection is memoryless.
type Provider interface {
	Next(ctx context.Context) (Question, error)
}

// Parse decodes a YAML list of {name, question} entries.
func Parse(data []byte) ([]Question, error) {
	var qs []Question
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	for i, q := range qs {
		if strings.TrimSpace(q.Name) == "" || strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("question #%d: name and question are required", i+1)
		}
	}
	return qs, nil
}

// Pool is a Provider over an in-memory set that can be swapped atomically.
type Pool struct {
	mu        sync.RWMutex
	questions []Question
	intn      func(n int) int
}

func NewPool(qs []Question) *Pool {
	p := &Pool{intn: rand.IntN}
	p.Replace(qs)
	return p
}

// Default returns the pool shipped with the binary.
func Default() (*Pool, error) {
	qs, err := Parse(defaultPool)
	if err != nil {
		return nil, err
	}
	return NewPool(qs), nil
}

func (p *Pool) Next(ctx context.Context) (Question, error) {
	if err := ctx.Err(); err != nil {
		return Question{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.questions) == 0 {
		return Question{}, ErrNoQuestionsAvailable
	}
	return p.questions[p.intn(len(p.questions))], nil
}

// Replace swaps the pool contents; a nil or empty slice empties the pool.
func (p *Pool) Replace(qs []Question) {
	cp := append([]Question(nil), qs...)
	p.mu.Lock()
	p.questions = cp
	p.mu.Unlock()
}

func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.questions)
}
