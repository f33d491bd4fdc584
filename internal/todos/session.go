package todos

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
)

// ErrNotEditing is returned by SetDraft and Commit while the session is idle.
var ErrNotEditing = errors.New("no todo is being edited")

// State is either Idle or Editing.
type State interface{ isState() }

type Idle struct{}

// Editing holds the target todo and the uncommitted title.
type Editing struct {
	ID    model.ID
	Draft string
}

func (Idle) isState()    {}
func (Editing) isState() {}

// Session tracks the one todo whose title is being edited. It survives
// refreshes, except that it cancels itself when a refresh no longer contains
// the target.
type Session struct {
	ctl *Controller
	log *slog.Logger

	mu sync.Mutex
	st State
}

func NewSession(ctl *Controller, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{ctl: ctl, log: log, st: Idle{}}
	ctl.OnRefresh(s.reconcile)
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Begin starts editing t, seeding the draft with its stored title. Any
// previous edit is dropped.
func (s *Session) Begin(t model.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.st.(Editing); ok && prev.ID != t.ID {
		s.log.Debug("abandoning unsaved edit", "id", prev.ID)
	}
	s.st = Editing{ID: t.ID, Draft: t.Title}
}

// SetDraft replaces the draft. Empty titles are allowed.
func (s *Session) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ed, ok := s.st.(Editing)
	if !ok {
		return ErrNotEditing
	}
	ed.Draft = text
	s.st = ed
	return nil
}

// Cancel drops the draft without touching the server.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = Idle{}
}

// Commit saves the draft as the target's title together with its currently
// stored completed flag. On success the session goes idle, unless it was
// retargeted or the draft changed while the request was in flight. On
// failure the draft is kept and the error returned.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	ed, ok := s.st.(Editing)
	s.mu.Unlock()
	if !ok {
		return ErrNotEditing
	}

	t, found := s.ctl.Find(ed.ID)
	if !found {
		err := &remote.NotFoundError{Op: "commit", ID: ed.ID}
		s.log.Error("commit failed", "id", ed.ID, "err", err)
		return err
	}
	if err := s.ctl.Update(ctx, ed.ID, model.Input{Title: ed.Draft, Completed: t.Completed}); err != nil {
		s.log.Error("commit failed, draft kept", "id", ed.ID, "err", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.st.(Editing); ok && cur == ed {
		s.st = Idle{}
	}
	return nil
}

func (s *Session) reconcile(todos []model.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ed, ok := s.st.(Editing)
	if !ok {
		return
	}
	if !slices.ContainsFunc(todos, func(t model.Todo) bool { return t.ID == ed.ID }) {
		s.log.Info("edit cancelled, todo no longer exists", "id", ed.ID)
		s.st = Idle{}
	}
}
