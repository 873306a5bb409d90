// Package assets handles sprite image loading and caching.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/slime-engine/internal/logger"
)

// ErrNotFound is returned when no source has the requested image.
var ErrNotFound = errors.New("asset not found")

// Loader fetches and decodes an image by URL path.
type Loader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

// Manager resolves images through a list of sources and caches the results.
// Sources are searched in reverse order (last added = highest priority).
type Manager struct {
	sources []Loader
	cache   *Cache
	mu      sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager(sources ...Loader) *Manager {
	return &Manager{
		sources: sources,
		cache:   NewCache(),
	}
}

// AddSource adds a source to the manager.
func (m *Manager) AddSource(src Loader) {
	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()
}

// Load implements Loader. A source reporting ErrNotFound falls through to the
// next one; any other error stops the search.
func (m *Manager) Load(ctx context.Context, url string) (image.Image, error) {
	if img, ok := m.cache.Get(url); ok {
		return img, nil
	}

	m.mu.RLock()
	sources := m.sources
	m.mu.RUnlock()

	for i := len(sources) - 1; i >= 0; i-- {
		img, err := sources[i].Load(ctx, url)
		if err == nil {
			m.cache.Set(url, img)
			b := img.Bounds()
			logger.Debug("image loaded",
				zap.String("url", url),
				zap.Int("width", b.Dx()),
				zap.Int("height", b.Dy()),
			)
			return img, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
}

// Cache returns the manager's cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Close drops all sources and clears the cache.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sources = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for decoded images.
type Cache struct {
	data map[string]image.Image
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]image.Image),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return img, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = img
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]image.Image)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
