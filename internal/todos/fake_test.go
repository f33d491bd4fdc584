package todos

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
	"github.com/Makepad-fr/tada/internal/server"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// fakeRemote serves the collection from an in-memory server store and can be
// told to fail.
type fakeRemote struct {
	store *server.Store

	mu       sync.Mutex
	calls    []string
	listErr  error
	writeErr error
}

func newFakeRemote(seed ...model.Input) *fakeRemote {
	f := &fakeRemote{store: server.NewMemoryStore()}
	for _, in := range seed {
		_, _ = f.store.Create(in)
	}
	return f
}

func (f *fakeRemote) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) failWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

func (f *fakeRemote) failLists(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeRemote) errs() (list, write error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listErr, f.writeErr
}

func (f *fakeRemote) List(context.Context) ([]model.Todo, error) {
	f.record("list")
	if err, _ := f.errs(); err != nil {
		return nil, &remote.TransportError{Op: "list", Err: err}
	}
	return f.store.List(), nil
}

func (f *fakeRemote) Create(_ context.Context, in model.Input) error {
	f.record("create")
	if _, err := f.errs(); err != nil {
		return &remote.TransportError{Op: "create", Err: err}
	}
	_, err := f.store.Create(in)
	return err
}

func (f *fakeRemote) Replace(_ context.Context, id model.ID, in model.Input) error {
	f.record("replace")
	if _, err := f.errs(); err != nil {
		return &remote.TransportError{Op: "replace", Err: err}
	}
	if _, err := f.store.Replace(id, in); err != nil {
		return translate("replace", id, err)
	}
	return nil
}

func (f *fakeRemote) Delete(_ context.Context, id model.ID) error {
	f.record("delete")
	if _, err := f.errs(); err != nil {
		return &remote.TransportError{Op: "delete", Err: err}
	}
	return translate("delete", id, f.store.Delete(id))
}

func translate(op string, id model.ID, err error) error {
	if errors.Is(err, server.ErrNoSuchTodo) {
		return &remote.NotFoundError{Op: op, ID: id}
	}
	return err
}
