// Package todos keeps the client's view of the remote todo collection and
// the single in-progress title edit.
package todos

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
)

// Remote is the server side of the collection. *remote.Client implements it.
type Remote interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, in model.Input) error
	Replace(ctx context.Context, id model.ID, in model.Input) error
	Delete(ctx context.Context, id model.ID) error
}

type snapshot struct {
	todos []model.Todo
	gen   uint64
}

// Controller owns the local copy of the collection. The copy is only ever
// replaced wholesale by a successful List; mutations never patch it, they
// finish with a Refresh instead.
//
// Calls may run concurrently. Nothing orders them: when two refreshes are in
// flight, whichever response arrives last is what Todos returns.
type Controller struct {
	remote Remote
	log    *slog.Logger

	// swap orders replacements by arrival; readers load state lock-free.
	swap  sync.Mutex
	state atomic.Pointer[snapshot]

	mu        sync.Mutex
	listeners []func([]model.Todo)
}

func NewController(r Remote, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{remote: r, log: log}
	c.state.Store(&snapshot{todos: []model.Todo{}})
	return c
}

// Todos returns a copy of the last successfully read collection.
func (c *Controller) Todos() []model.Todo {
	return slices.Clone(c.state.Load().todos)
}

// Generation counts the refreshes applied so far. Zero means the collection
// has never been read.
func (c *Controller) Generation() uint64 { return c.state.Load().gen }

// Find looks id up in the local collection.
func (c *Controller) Find(id model.ID) (model.Todo, bool) {
	todos := c.state.Load().todos
	i := slices.IndexFunc(todos, func(t model.Todo) bool { return t.ID == id })
	if i < 0 {
		return model.Todo{}, false
	}
	return todos[i], true
}

// OnRefresh registers fn to run after every applied refresh, with the new
// collection. Listeners run in the order refreshes were applied and must not
// call Refresh or OnRefresh.
func (c *Controller) OnRefresh(fn func([]model.Todo)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Refresh re-reads the whole collection and replaces the local copy. On
// failure the local copy is left untouched.
func (c *Controller) Refresh(ctx context.Context) error {
	todos, err := c.remote.List(ctx)
	if err != nil {
		c.report("refresh", err)
		return err
	}
	c.replace(todos)
	return nil
}

// Create asks the server to add a todo, then refreshes.
func (c *Controller) Create(ctx context.Context, in model.Input) error {
	if err := c.remote.Create(ctx, in); err != nil {
		c.report("create", err)
		return err
	}
	return c.Refresh(ctx)
}

// Update replaces both mutable fields of id, then refreshes.
func (c *Controller) Update(ctx context.Context, id model.ID, in model.Input) error {
	if err := c.remote.Replace(ctx, id, in); err != nil {
		c.report("update", err, "id", id)
		return err
	}
	return c.Refresh(ctx)
}

func (c *Controller) Delete(ctx context.Context, id model.ID) error {
	if err := c.remote.Delete(ctx, id); err != nil {
		c.report("delete", err, "id", id)
		return err
	}
	return c.Refresh(ctx)
}

// Toggle flips the completed flag of id, keeping its stored title. This is
// the checkbox path; titles change only through a Session.
func (c *Controller) Toggle(ctx context.Context, id model.ID) error {
	t, ok := c.Find(id)
	if !ok {
		err := &remote.NotFoundError{Op: "toggle", ID: id}
		c.report("toggle", err, "id", id)
		return err
	}
	in := t.Input()
	in.Completed = !in.Completed
	return c.Update(ctx, id, in)
}

func (c *Controller) replace(todos []model.Todo) {
	if todos == nil {
		todos = []model.Todo{}
	}
	c.swap.Lock()
	defer c.swap.Unlock()
	snap := &snapshot{todos: slices.Clone(todos), gen: c.state.Load().gen + 1}
	c.state.Store(snap)

	c.mu.Lock()
	fns := slices.Clone(c.listeners)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(slices.Clone(snap.todos))
	}
}

func (c *Controller) report(op string, err error, attrs ...any) {
	c.log.Error("todo operation failed", append([]any{"op", op, "err", err}, attrs...)...)
}
