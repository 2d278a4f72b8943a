package cache

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tsume/config"
)

// The cache holds objects that are expensive to build and that several
// callers may ask for by the same name. The main use is solved puzzles:
// identical positions in a batch (or solved twice from the shell) are only
// searched once. Names are hashed with xxhash so that long SFEN strings
// don't get copied around as map keys.

type entry struct {
	once sync.Once
	// done is set once obj and err are written.
	done atomic.Bool
	obj  any
	err  error
}

type Cache struct {
	sync.Mutex
	objects map[uint64]*entry
	hits    atomic.Uint64
	misses  atomic.Uint64
}

type LoadFunc func(cfg *config.Config, name string) (any, error)

// GlobalObjectCache is shared by the shell and the CLI.
var GlobalObjectCache *Cache

func New() *Cache {
	return &Cache{objects: make(map[uint64]*entry)}
}

// Key is the cache key for name.
func Key(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Get returns the object stored under name, calling loadFunc to build it the
// first time. Concurrent callers asking for the same name wait for a single
// load. Failed loads are not kept.
func (c *Cache) Get(cfg *config.Config, name string, loadFunc LoadFunc) (any, error) {
	key := Key(name)
	c.Lock()
	e, ok := c.objects[key]
	if !ok {
		e = &entry{}
		c.objects[key] = e
	}
	c.Unlock()

	loaded := false
	e.once.Do(func() {
		loaded = true
		log.Debug().Uint64("key", key).Msg("loading-into-cache")
		e.obj, e.err = loadFunc(cfg, name)
		e.done.Store(true)
	})
	if loaded {
		c.misses.Add(1)
		if e.err != nil {
			c.Lock()
			if c.objects[key] == e {
				delete(c.objects, key)
			}
			c.Unlock()
		}
	} else {
		c.hits.Add(1)
		log.Debug().Uint64("key", key).Msg("getting-obj-from-cache")
	}
	return e.obj, e.err
}

// Len is the number of names with a stored (or in-flight) object.
func (c *Cache) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.objects)
}

func (c *Cache) Hits() uint64 {
	return c.hits.Load()
}

func (c *Cache) Misses() uint64 {
	return c.misses.Load()
}

// Forget drops name so that the next Get loads it again, but only while
// name still holds obj: an entry another caller has since reloaded, or one
// still loading, is kept. obj must be comparable. It reports whether the
// entry was dropped.
func (c *Cache) Forget(name string, obj any) bool {
	key := Key(name)
	c.Lock()
	defer c.Unlock()
	e, ok := c.objects[key]
	if !ok || !e.done.Load() || e.obj != obj {
		return false
	}
	delete(c.objects, key)
	return true
}

// Clear forgets every object.
func (c *Cache) Clear() {
	c.Lock()
	defer c.Unlock()
	c.objects = make(map[uint64]*entry)
}

func CreateGlobalObjectCache() {
	GlobalObjectCache = New()
}

// Load fetches name from the global cache.
func Load(cfg *config.Config, name string, loadFunc LoadFunc) (any, error) {
	if GlobalObjectCache == nil {
		CreateGlobalObjectCache()
	}
	return GlobalObjectCache.Get(cfg, name, loadFunc)
}
