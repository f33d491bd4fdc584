package todos

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
)

var errNetwork = errors.New("connection refused")

func TestRefreshIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := NewController(newFakeRemote(model.Input{Title: "A"}, model.Input{Title: "B", Completed: true}), quietLogger())

	assert.Equal(t, c.Refresh(ctx), nil)
	first := c.Todos()
	assert.Equal(t, c.Refresh(ctx), nil)
	assert.Equal(t, c.Todos(), first)
	assert.Equal(t, len(first), 2)
	assert.Equal(t, c.Generation(), uint64(2))
}

func TestCreateAddsExactlyOne(t *testing.T) {
	ctx := context.Background()
	c := NewController(newFakeRemote(model.Input{Title: "A"}), quietLogger())
	assert.Equal(t, c.Refresh(ctx), nil)
	before := len(c.Todos())

	assert.Equal(t, c.Create(ctx, model.Input{Title: "new", Completed: false}), nil)
	after := c.Todos()
	assert.Equal(t, len(after), before+1)
	last := after[len(after)-1]
	assert.Equal(t, last.Title, "new")
	assert.Equal(t, last.Completed, false)
	assert.NotEqual(t, last.ID, model.ID(""))
}

func TestUpdateThenDelete(t *testing.T) {
	ctx := context.Background()
	c := NewController(newFakeRemote(model.Input{Title: "A"}), quietLogger())
	assert.Equal(t, c.Refresh(ctx), nil)
	assert.Equal(t, c.Todos(), []model.Todo{{ID: "1", Title: "A", Completed: false}})

	assert.Equal(t, c.Update(ctx, "1", model.Input{Title: "A", Completed: true}), nil)
	assert.Equal(t, c.Todos(), []model.Todo{{ID: "1", Title: "A", Completed: true}})

	assert.Equal(t, c.Delete(ctx, "1"), nil)
	assert.Equal(t, len(c.Todos()), 0)
}

func TestMutationsEndInFullRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote(model.Input{Title: "A"})
	c := NewController(f, quietLogger())

	assert.Equal(t, c.Create(ctx, model.Input{Title: "B"}), nil)
	assert.Equal(t, c.Update(ctx, "1", model.Input{Title: "A2"}), nil)
	assert.Equal(t, c.Delete(ctx, "2"), nil)
	assert.Equal(t, f.Calls(), []string{"create", "list", "replace", "list", "delete", "list"})

	// Local state is exactly what a fresh read yields.
	fresh := NewController(f, quietLogger())
	assert.Equal(t, fresh.Refresh(ctx), nil)
	assert.Equal(t, c.Todos(), fresh.Todos())
}

func TestFailedUpdateLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote(model.Input{Title: "A"})
	c := NewController(f, quietLogger())
	assert.Equal(t, c.Refresh(ctx), nil)
	before, gen := c.Todos(), c.Generation()

	f.failWrites(errNetwork)
	err := c.Update(ctx, "1", model.Input{Title: "changed", Completed: true})
	var te *remote.TransportError
	assert.Equal(t, errors.As(err, &te), true)
	assert.Equal(t, c.Todos(), before)
	assert.Equal(t, c.Generation(), gen)
}

func TestFailedRefreshLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFakeRemote(model.Input{Title: "A"})
	c := NewController(f, quietLogger())
	assert.Equal(t, c.Refresh(ctx), nil)
	before := c.Todos()

	f.failLists(errNetwork)
	assert.NotEqual(t, c.Refresh(ctx), nil)
	assert.Equal(t, c.Todos(), before)
}

func TestMutatingMissingIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	c := NewController(newFakeRemote(), quietLogger())
	assert.Equal(t, errors.Is(c.Update(ctx, "9", model.Input{}), remote.ErrNotFound), true)
	assert.Equal(t, errors.Is(c.Delete(ctx, "9"), remote.ErrNotFound), true)
	assert.Equal(t, errors.Is(c.Toggle(ctx, "9"), remote.ErrNotFound), true)
}

func TestToggleKeepsTitle(t *testing.T) {
	ctx := context.Background()
	c := NewController(newFakeRemote(model.Input{Title: "A"}), quietLogger())
	assert.Equal(t, c.Refresh(ctx), nil)

	assert.Equal(t, c.Toggle(ctx, "1"), nil)
	assert.Equal(t, c.Todos(), []model.Todo{{ID: "1", Title: "A", Completed: true}})
	assert.Equal(t, c.Toggle(ctx, "1"), nil)
	assert.Equal(t, c.Todos(), []model.Todo{{ID: "1", Title: "A", Completed: false}})
}

func TestTodosReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := NewController(newFakeRemote(model.Input{Title: "A"}), quietLogger())
	assert.Equal(t, c.Refresh(ctx), nil)
	got := c.Todos()
	got[0].Title = "mutated"
	assert.Equal(t, c.Todos()[0].Title, "A")
}

// gatedRemote hands every List call to the test, which decides when and with
// what it returns.
type gatedRemote struct {
	*fakeRemote
	calls chan chan []model.Todo
}

func (g *gatedRemote) List(context.Context) ([]model.Todo, error) {
	reply := make(chan []model.Todo)
	g.calls <- reply
	return <-reply, nil
}

func TestLastArrivingRefreshWins(t *testing.T) {
	ctx := context.Background()
	g := &gatedRemote{fakeRemote: newFakeRemote(), calls: make(chan chan []model.Todo)}
	c := NewController(g, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Refresh(ctx)
		}()
	}
	first, second := <-g.calls, <-g.calls

	newer := []model.Todo{{ID: "1", Title: "newer"}}
	older := []model.Todo{{ID: "1", Title: "older"}}
	second <- newer
	for c.Generation() < 1 {
		runtime.Gosched()
	}
	first <- older
	wg.Wait()

	assert.Equal(t, c.Todos(), older)
	assert.Equal(t, c.Generation(), uint64(2))
}
