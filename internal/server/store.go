package server

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

// ErrNoSuchTodo is returned by Replace and Delete for unknown ids.
var ErrNoSuchTodo = errors.New("no such todo")

// Store is the server-side collection. Ids are assigned from an increasing
// counter and never reused. When path is set every write is persisted.
type Store struct {
	mu     sync.Mutex
	todos  []model.Todo
	nextID int64
	path   string
}

// NewMemoryStore returns an empty, unpersisted store.
func NewMemoryStore() *Store {
	return &Store{todos: []model.Todo{}, nextID: 1}
}

// OpenStore loads the JSON file at path, creating it on first write.
func OpenStore(path string) (*Store, error) {
	snap, err := jsonstore.Load(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{todos: snap.Todos, nextID: snap.NextID, path: path}, nil
}

func (s *Store) List() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.todos)
}

func (s *Store) Create(in model.Input) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Todo{ID: model.ID(strconv.FormatInt(s.nextID, 10)), Title: in.Title, Completed: in.Completed}
	next := append(slices.Clone(s.todos), t)
	if err := s.commit(next, s.nextID+1); err != nil {
		return model.Todo{}, err
	}
	return t, nil
}

func (s *Store) Replace(id model.ID, in model.Input) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return model.Todo{}, ErrNoSuchTodo
	}
	next := slices.Clone(s.todos)
	next[i].Title = in.Title
	next[i].Completed = in.Completed
	if err := s.commit(next, s.nextID); err != nil {
		return model.Todo{}, err
	}
	return next[i], nil
}

func (s *Store) Delete(id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNoSuchTodo
	}
	return s.commit(slices.Delete(slices.Clone(s.todos), i, i+1), s.nextID)
}

func (s *Store) index(id model.ID) int {
	return slices.IndexFunc(s.todos, func(t model.Todo) bool { return t.ID == id })
}

// commit persists the new state first so memory and disk never disagree.
func (s *Store) commit(todos []model.Todo, nextID int64) error {
	if s.path != "" {
		if err := jsonstore.Save(s.path, jsonstore.Snapshot{NextID: nextID, Todos: todos}); err != nil {
			return err
		}
	}
	s.todos, s.nextID = todos, nextID
	return nil
}
