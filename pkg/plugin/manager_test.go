package plugin

import (
	"context"
	"errors"
	"testing"
)

type fakePlugin struct {
	id         string
	configured map[string]any
	initErr    error
	calls      []string
	resources  map[string]any
}

func (f *fakePlugin) Info() Info {
	return Info{ID: f.id, Name: "fake", Category: TypeActions}
}

func (f *fakePlugin) Configure(cfg map[string]any) error {
	f.configured = cfg
	f.calls = append(f.calls, "configure")
	return nil
}

func (f *fakePlugin) Init(ctx *ExecutionContext) error {
	f.calls = append(f.calls, "init")
	f.resources = ctx.Resources
	return f.initErr
}

func (f *fakePlugin) Start(*ExecutionContext) error {
	f.calls = append(f.calls, "start")
	return nil
}

func (f *fakePlugin) Stop(*ExecutionContext) error {
	f.calls = append(f.calls, "stop")
	return nil
}

func TestManagerLifecycle(t *testing.T) {
	fake := &fakePlugin{id: "fake"}
	manager := NewManager(WithResource("settings", map[string]string{"k": "v"}))

	if err := manager.Register("fake", fake, map[string]any{"opt": true}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if state, _ := manager.State("fake"); state != StateRegistered {
		t.Fatalf("unexpected state after register: %v", state)
	}

	ctx := context.Background()
	if err := manager.StartAll(ctx); err != nil {
		t.Fatalf("start all: %v", err)
	}
	if state, _ := manager.State("fake"); state != StateStarted {
		t.Fatalf("unexpected state after start: %v", state)
	}
	if _, ok := fake.resources["settings"]; !ok {
		t.Fatal("shared resource not passed to plugin")
	}

	// Starting an already started plugin is a no-op.
	if err := manager.Start(ctx, "fake"); err != nil {
		t.Fatalf("restart: %v", err)
	}

	if err := manager.StopAll(ctx); err != nil {
		t.Fatalf("stop all: %v", err)
	}
	if state, _ := manager.State("fake"); state != StateStopped {
		t.Fatalf("unexpected state after stop: %v", state)
	}

	want := []string{"configure", "init", "start", "stop"}
	if len(fake.calls) != len(want) {
		t.Fatalf("unexpected calls: %v", fake.calls)
	}
	for i, call := range want {
		if fake.calls[i] != call {
			t.Fatalf("unexpected call order: %v", fake.calls)
		}
	}
}

func TestManagerRegisterValidation(t *testing.T) {
	manager := NewManager()

	if err := manager.Register("", &fakePlugin{}, nil); err == nil {
		t.Fatal("expected error for empty id")
	}
	if err := manager.Register("fake", nil, nil); err == nil {
		t.Fatal("expected error for nil plugin")
	}
	if err := manager.Register("other", &fakePlugin{id: "fake"}, nil); err == nil {
		t.Fatal("expected error for id mismatch")
	}

	if err := manager.Register("fake", &fakePlugin{id: "fake"}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := manager.Register("fake", &fakePlugin{id: "fake"}, nil); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestManagerInitFailure(t *testing.T) {
	initErr := errors.New("boom")
	fake := &fakePlugin{id: "fake", initErr: initErr}
	manager := NewManager()

	if err := manager.Register("fake", fake, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := manager.Start(context.Background(), "fake"); !errors.Is(err, initErr) {
		t.Fatalf("expected init error, got %v", err)
	}
	if state, _ := manager.State("fake"); state != StateRegistered {
		t.Fatalf("unexpected state after failed init: %v", state)
	}
}

func TestExecutionContextClone(t *testing.T) {
	original := &ExecutionContext{
		C:         context.Background(),
		Config:    map[string]any{"a": 1},
		Resources: map[string]any{"b": 2},
	}

	clone := original.Clone()
	clone.Config["a"] = 42
	clone.Resources["b"] = 42

	if original.Config["a"] != 1 || original.Resources["b"] != 2 {
		t.Fatal("clone must not share maps with the original")
	}

	var nilCtx *ExecutionContext
	if nilCtx.Clone() != nil {
		t.Fatal("cloning nil must return nil")
	}
}
