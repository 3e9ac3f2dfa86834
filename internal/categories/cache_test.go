package categories

import (
	"context"
	"errors"
	"testing"

	"famfin/internal/api"
)

type fakeRemote struct {
	categories  []api.Category
	nextID      int64
	getCalls    int
	createCalls int
	getErr      error
	createErr   error
}

func (f *fakeRemote) GetAll(ctx context.Context) ([]api.Category, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return append([]api.Category(nil), f.categories...), nil
}

func (f *fakeRemote) Create(ctx context.Context, name string) (api.Category, error) {
	f.createCalls++
	if f.createErr != nil {
		return api.Category{}, f.createErr
	}
	f.nextID++
	cat := api.Category{ID: f.nextID + 100, Name: name}
	f.categories = append(f.categories, cat)
	return cat, nil
}

func TestResolveIDKnownName(t *testing.T) {
	remote := &fakeRemote{categories: []api.Category{{ID: 1, Name: "Salário"}, {ID: 2, Name: "Lazer"}}}
	c := New(remote)
	ctx := context.Background()

	id, err := c.ResolveID(ctx, "Salário")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	if remote.createCalls != 0 {
		t.Errorf("known name must not create, got %d creates", remote.createCalls)
	}
}

func TestResolveIDStableOnceWarm(t *testing.T) {
	remote := &fakeRemote{categories: []api.Category{{ID: 1, Name: "Salário"}}}
	c := New(remote)
	ctx := context.Background()

	first, _ := c.ResolveID(ctx, "Salário")
	second, _ := c.ResolveID(ctx, "Salário")
	if first != second {
		t.Errorf("ids differ: %d vs %d", first, second)
	}
	if remote.getCalls != 1 {
		t.Errorf("cache reloaded, got %d GetAll calls", remote.getCalls)
	}
	if remote.createCalls != 0 {
		t.Errorf("warm cache must not create, got %d creates", remote.createCalls)
	}
}

func TestResolveIDCreatesUnknown(t *testing.T) {
	remote := &fakeRemote{categories: []api.Category{{ID: 1, Name: "Salário"}}}
	c := New(remote)
	ctx := context.Background()

	id, err := c.ResolveID(ctx, "Pets")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if remote.createCalls != 1 {
		t.Fatalf("expected exactly one create, got %d", remote.createCalls)
	}
	if id == 0 || id == 1 {
		t.Errorf("unexpected id %d", id)
	}

	// Second resolution hits the cache, no second create.
	again, _ := c.ResolveID(ctx, "Pets")
	if again != id {
		t.Errorf("cached id differs: %d vs %d", again, id)
	}
	if remote.createCalls != 1 {
		t.Errorf("cached name created again, got %d creates", remote.createCalls)
	}
}

func TestResolveIDCreateFailure(t *testing.T) {
	remote := &fakeRemote{createErr: errors.New("boom")}
	c := New(remote)

	if _, err := c.ResolveID(context.Background(), "Pets"); err == nil {
		t.Fatal("expected error when create fails")
	}
}

func TestResolveNameFallback(t *testing.T) {
	remote := &fakeRemote{categories: []api.Category{{ID: 3, Name: "Moradia"}}}
	c := New(remote)
	ctx := context.Background()

	if got := c.ResolveName(ctx, 3); got != "Moradia" {
		t.Errorf("ResolveName(3) = %q", got)
	}
	if got := c.ResolveName(ctx, 999); got != FallbackName {
		t.Errorf("unknown id should fall back, got %q", got)
	}
}

func TestResolveNameLoadFailureFallsBack(t *testing.T) {
	remote := &fakeRemote{getErr: errors.New("unreachable")}
	c := New(remote)

	if got := c.ResolveName(context.Background(), 1); got != FallbackName {
		t.Errorf("load failure should fall back, got %q", got)
	}
}

func TestAllLoadsOnce(t *testing.T) {
	remote := &fakeRemote{categories: []api.Category{{ID: 1, Name: "Salário"}}}
	c := New(remote)
	ctx := context.Background()

	first, err := c.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	second, _ := c.All(ctx)
	if len(first) != 1 || len(second) != 1 {
		t.Errorf("unexpected listings: %v / %v", first, second)
	}
	if remote.getCalls != 1 {
		t.Errorf("expected single load, got %d", remote.getCalls)
	}
}
