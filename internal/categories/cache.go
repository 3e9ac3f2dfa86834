package categories

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"famfin/internal/api"
)

// FallbackName labels transactions whose category id is unknown to the cache.
const FallbackName = "Outros"

// remote is the slice of the categories API the cache needs.
type remote interface {
	GetAll(ctx context.Context) ([]api.Category, error)
	Create(ctx context.Context, name string) (api.Category, error)
}

// Cache maps between category display names and the integer ids the remote
// API assigns. It is loaded once per session on first use; unknown names are
// created remotely on demand.
type Cache struct {
	remote remote

	mu      sync.Mutex
	loaded  bool
	entries []api.Category
}

func New(remote remote) *Cache {
	return &Cache{remote: remote}
}

// ResolveID returns the id for a category name, creating the category
// remotely when the name is unknown. Two concurrent resolutions of the same
// unknown name may both create it; the API enforces no uniqueness and the
// duplicate is harmless, so the race is left alone.
func (c *Cache) ResolveID(ctx context.Context, name string) (int64, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return 0, err
	}

	c.mu.Lock()
	for _, e := range c.entries {
		if e.Name == name {
			id := e.ID
			c.mu.Unlock()
			return id, nil
		}
	}
	c.mu.Unlock()

	created, err := c.remote.Create(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("create category %q: %w", name, err)
	}
	slog.InfoContext(ctx, "Created remote category", "id", created.ID, "name", created.Name)

	c.mu.Lock()
	c.entries = append(c.entries, created)
	c.mu.Unlock()
	return created.ID, nil
}

// ResolveName returns the display name for a category id, or the fallback
// label when the id is unknown. Lookup failures degrade to the fallback too;
// a name is never worth failing a read for.
func (c *Cache) ResolveName(ctx context.Context, id int64) string {
	if err := c.ensureLoaded(ctx); err != nil {
		slog.WarnContext(ctx, "Category lookup unavailable", "id", id, "error", err)
		return FallbackName
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.ID == id {
			return e.Name
		}
	}
	return FallbackName
}

// All returns the cached category list, loading it if needed.
func (c *Cache) All(ctx context.Context) ([]api.Category, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.Category, len(c.entries))
	copy(out, c.entries)
	return out, nil
}

func (c *Cache) ensureLoaded(ctx context.Context) error {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	entries, err := c.remote.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	c.mu.Lock()
	if !c.loaded {
		c.entries = entries
		c.loaded = true
	}
	c.mu.Unlock()
	return nil
}
