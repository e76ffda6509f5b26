package directivecmd

import (
	"errors"
	"testing"

	"github.com/goliatone/go-directive/internal/runtimeconfig"
)

type recordingRegistry struct {
	handlers []any
	fail     error
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return r.fail
}

type subscription struct{}

func (subscription) Unsubscribe() {}

type recordingDispatcher struct {
	count int
}

func (d *recordingDispatcher) RegisterCommand(any) (CommandSubscription, error) {
	d.count++
	return subscription{}, nil
}

func TestRegisterHandlers(t *testing.T) {
	ws, _ := newWorkspace(t, runtimeconfig.DefaultConfig())
	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}

	result, err := RegisterHandlers(ws, RegistrationOptions{Registry: registry, Dispatcher: dispatcher})
	if err != nil {
		t.Fatalf("RegisterHandlers: %v", err)
	}
	if len(result.Handlers) != 4 || len(registry.handlers) != 4 {
		t.Fatalf("expected four handlers, got %d registered %d", len(result.Handlers), len(registry.handlers))
	}
	if dispatcher.count != 4 || len(result.Subscriptions) != 4 {
		t.Fatalf("expected four subscriptions, got %d", len(result.Subscriptions))
	}
	if result.Format == nil || result.Check == nil {
		t.Fatal("expected typed handlers")
	}
}

func TestRegisterHandlersJoinsErrors(t *testing.T) {
	ws, _ := newWorkspace(t, runtimeconfig.DefaultConfig())
	boom := errors.New("boom")

	result, err := RegisterHandlers(ws, RegistrationOptions{Registry: &recordingRegistry{fail: boom}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined registry error, got %v", err)
	}
	if len(result.Handlers) != 4 {
		t.Fatalf("expected handlers despite errors, got %d", len(result.Handlers))
	}
}
