// Package conversation implements the menu → question → answer dialogue.
//
// Each user has one Session. Plain text is read as an answer only while the
// session awaits one; at any other time it is ignored.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"interview-bot/internal/questions"
	"interview-bot/internal/storage"
	"interview-bot/internal/users"
)

// UserToucher records that a user interacted with the bot.
type UserToucher interface {
	Touch(ctx context.Context, id int64) (users.Record, error)
}

type Machine struct {
	users     UserToucher
	questions questions.Provider
	checker   AnswerChecker
	sessions  SessionStore
	gateway   Gateway
	recorder  storage.Recorder
	log       *zap.Logger
}

type Option func(*Machine)

func WithAnswerChecker(c AnswerChecker) Option { return func(m *Machine) { m.checker = c } }

func WithSessionStore(s SessionStore) Option { return func(m *Machine) { m.sessions = s } }

func WithRecorder(r storage.Recorder) Option { return func(m *Machine) { m.recorder = r } }

func WithLogger(l *zap.Logger) Option { return func(m *Machine) { m.log = l } }

// NewMachine defaults to accepting every answer, an in-memory session store
// with a day of TTL, no interaction log and a no-op logger.
func NewMachine(u UserToucher, q questions.Provider, gw Gateway, opts ...Option) *Machine {
	m := &Machine{
		users:     u,
		questions: q,
		gateway:   gw,
		checker:   AcceptAll{},
		sessions:  NewMemoryStore(24 * time.Hour),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// outcome describes what handling an event did.
// session is non-nil when the user's session changed and must be stored.
type outcome struct {
	action   storage.Action
	question string
	session  *Session
}

// Handle processes one inbound event for ev.Identity.
// Storage and delivery failures are returned; an unavailable question pool or a
// failed answer check is reported to the user instead.
func (m *Machine) Handle(ctx context.Context, ev Event) error {
	sess, err := m.sessions.Load(ctx, ev.Identity)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	var out outcome
	switch ev.Command {
	case CmdStart, CmdMenu:
		out, err = m.menu(ctx, ev, sess)
	case CmdUsage:
		out, err = m.static(ctx, ev, storage.ActionUsage, usageText)
	case CmdAbout:
		out, err = m.static(ctx, ev, storage.ActionAbout, aboutText)
	case CmdRandomQuestion:
		out, err = m.randomQuestion(ctx, ev, sess)
	case CmdCancel:
		out, err = m.cancel(ctx, ev, sess)
	case "":
		// only text counts as an answer; media and service messages arrive empty
		if sess.State == StateAwaitingAnswer && ev.Text != "" {
			out, err = m.answer(ctx, ev, sess)
		} else {
			out = outcome{action: storage.ActionIgnored}
		}
	default:
		out = outcome{action: storage.ActionIgnored}
	}
	if err != nil {
		return err
	}

	if out.session != nil {
		if err := m.store(ctx, ev.Identity, *out.session); err != nil {
			return err
		}
		sess = *out.session
	}

	m.log.Debug("event handled",
		zap.Int64("user_id", ev.Identity),
		zap.String("command", ev.Command),
		zap.String("action", string(out.action)),
		zap.String("state", string(sess.State)))
	m.record(ev, out, sess.State)
	return nil
}

func (m *Machine) menu(ctx context.Context, ev Event, sess Session) (outcome, error) {
	if _, err := m.users.Touch(ctx, ev.Identity); err != nil {
		return outcome{}, fmt.Errorf("touch user: %w", err)
	}
	next, err := transition(ctx, sess.State, eventReset)
	if err != nil {
		return outcome{}, err
	}
	if err := m.send(ctx, menuMessage(ev.Identity, menuText)); err != nil {
		return outcome{}, err
	}
	return outcome{action: storage.ActionMenu, session: &Session{State: next}}, nil
}

func (m *Machine) static(ctx context.Context, ev Event, action storage.Action, text string) (outcome, error) {
	if err := m.send(ctx, menuMessage(ev.Identity, text)); err != nil {
		return outcome{}, err
	}
	return outcome{action: action}, nil
}

func (m *Machine) randomQuestion(ctx context.Context, ev Event, sess Session) (outcome, error) {
	if _, err := m.users.Touch(ctx, ev.Identity); err != nil {
		return outcome{}, fmt.Errorf("touch user: %w", err)
	}

	q, err := m.questions.Next(ctx)
	if errors.Is(err, questions.ErrNoQuestionsAvailable) {
		m.log.Warn("no questions available", zap.Int64("user_id", ev.Identity))
		if err := m.send(ctx, textMessage(ev.Identity, noQuestionsText)); err != nil {
			return outcome{}, err
		}
		return outcome{action: storage.ActionNoContent}, nil
	}
	if err != nil {
		return outcome{}, fmt.Errorf("next question: %w", err)
	}

	next, err := transition(ctx, sess.State, eventAsk)
	if err != nil {
		return outcome{}, err
	}
	if err := m.send(ctx, Message{ChatID: ev.Identity, Text: q.Name, Format: FormatBold}); err != nil {
		return outcome{}, err
	}
	if err := m.send(ctx, Message{ChatID: ev.Identity, Text: q.Question, Format: FormatItalic}); err != nil {
		return outcome{}, err
	}
	return outcome{
		action:   storage.ActionQuestion,
		question: q.Name,
		session:  &Session{State: next, Question: &q},
	}, nil
}

func (m *Machine) answer(ctx context.Context, ev Event, sess Session) (outcome, error) {
	var q questions.Question
	if sess.Question != nil {
		q = *sess.Question
	}

	reply := answerAcceptedText
	if err := m.checker.Check(ctx, q, ev.Text); err != nil {
		if !errors.Is(err, ErrAnswerCheck) {
			return outcome{}, fmt.Errorf("check answer: %w", err)
		}
		m.log.Warn("answer not checked", zap.Int64("user_id", ev.Identity), zap.Error(err))
		reply = answerFailedText
	}

	next, err := transition(ctx, sess.State, eventAnswer)
	if err != nil {
		return outcome{}, err
	}
	if err := m.send(ctx, textMessage(ev.Identity, reply)); err != nil {
		return outcome{}, err
	}
	return outcome{action: storage.ActionAnswer, question: q.Name, session: &Session{State: next}}, nil
}

// cancel ends an active question round. Outside a round it is ignored.
func (m *Machine) cancel(ctx context.Context, ev Event, sess Session) (outcome, error) {
	if !can(sess.State, eventCancel) {
		return outcome{action: storage.ActionIgnored}, nil
	}
	next, err := transition(ctx, sess.State, eventCancel)
	if err != nil {
		return outcome{}, err
	}
	out := outcome{action: storage.ActionCancel, session: &Session{State: next}}
	if sess.Question != nil {
		out.question = sess.Question.Name
	}
	if err := m.send(ctx, menuMessage(ev.Identity, menuText)); err != nil {
		return outcome{}, err
	}
	return out, nil
}

func (m *Machine) send(ctx context.Context, msg Message) error {
	if err := m.gateway.Send(ctx, msg); err != nil {
		return fmt.Errorf("send to %d: %w", msg.ChatID, err)
	}
	return nil
}

// store drops idle sessions so only active rounds occupy the session store.
func (m *Machine) store(ctx context.Context, id int64, s Session) error {
	if s.State == StateIdle {
		if err := m.sessions.Delete(ctx, id); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	}
	if err := m.sessions.Save(ctx, id, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (m *Machine) record(ev Event, out outcome, state State) {
	if m.recorder == nil {
		return
	}
	event := storage.Event{
		Timestamp: time.Now().UTC(),
		UserID:    ev.Identity,
		Action:    out.action,
		Question:  out.question,
		State:     string(state),
	}
	if ev.Command == "" {
		event.UserMessage = ev.Text
	} else {
		event.UserMessage = "/" + ev.Command
	}
	if err := m.recorder.AppendInteraction(event); err != nil {
		m.log.Warn("failed to record interaction", zap.Int64("user_id", ev.Identity), zap.Error(err))
	}
}

// State returns the current dialogue state of a user.
func (m *Machine) State(ctx context.Context, id int64) (State, error) {
	sess, err := m.sessions.Load(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return sess.State, nil
}
