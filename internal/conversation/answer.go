package conversation

import (
	"context"
	"errors"

	"interview-bot/internal/questions"
)

// ErrAnswerCheck means the answer could not be checked, e.g. the grading service was unreachable.
var ErrAnswerCheck = errors.New("answer check failed")

// AnswerChecker validates a user's answer to a question.
// A nil error means the answer was accepted.
type AnswerChecker interface {
	Check(ctx context.Context, q questions.Question, answer string) error
}

// AcceptAll accepts every answer. Grading is not implemented.
type AcceptAll struct{}

func (AcceptAll) Check(context.Context, questions.Question, string) error { return nil }

// AnswerCheckerFunc adapts a function to AnswerChecker.
type AnswerCheckerFunc func(ctx context.Context, q questions.Question, answer string) error

func (f AnswerCheckerFunc) Check(ctx context.Context, q questions.Question, answer string) error {
	return f(ctx, q, answer)
}
