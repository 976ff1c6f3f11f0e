package track

import (
	"context"
	"image"
	"sort"
	"sync"
	"time"
)

// ArtworkSource supplies cover thumbnails for tracks. Thumbnail must not
// block: it answers only from already-downloaded images. The host's
// download subsystem signals completions through OnDownloadFinished.
type ArtworkSource interface {
	// Thumbnail returns the cover image for the given cover ID if it is
	// available locally.
	Thumbnail(coverID string) (image.Image, bool)

	// OnDownloadFinished registers a callback invoked whenever any pending
	// artwork download completes. The returned func cancels the registration.
	OnDownloadFinished(cb func()) (cancel func())
}

type artworkItem struct {
	img image.Image
	ttl time.Duration

	// unix time
	expiresAt    int64
	lastAccessed int64
}

// ArtworkCache is an in-memory thumbnail cache implementing ArtworkSource.
// The host's downloader calls Put as covers arrive; Put wakes any
// registered download-finished waiters.
//
// Eviction strategy:
//  1. with fewer than MinSize items, nothing is evicted
//  2. an addition that would exceed MaxSize immediately evicts the LRU
//     expired item, or the LRU item if none has expired
//  3. between MinSize and MaxSize, expired items are swept periodically,
//     least recently used first
type ArtworkCache struct {
	MinSize    int
	MaxSize    int
	DefaultTTL time.Duration

	mu    sync.RWMutex
	cache map[string]artworkItem

	waiterMu   sync.Mutex
	waiters    map[int]func()
	nextWaiter int
}

func (c *ArtworkCache) Init(ctx context.Context, sweepInterval time.Duration) {
	c.cache = make(map[string]artworkItem)
	go c.periodicallySweep(ctx, sweepInterval)
}

// Put stores an image under the given cover ID and notifies any
// download-finished waiters.
func (c *ArtworkCache) Put(coverID string, img image.Image) {
	c.PutWithTTL(coverID, img, c.DefaultTTL)
}

func (c *ArtworkCache) PutWithTTL(coverID string, img image.Image, ttl time.Duration) {
	now := time.Now()
	c.mu.Lock()
	if item, ok := c.cache[coverID]; ok {
		item.img = img
		item.ttl = ttl
		item.expiresAt = now.Add(ttl).Unix()
		item.lastAccessed = now.Unix()
		c.cache[coverID] = item
	} else {
		if len(c.cache) >= c.MaxSize {
			c.evictOne()
		}
		c.cache[coverID] = artworkItem{
			img:          img,
			ttl:          ttl,
			expiresAt:    now.Add(ttl).Unix(),
			lastAccessed: now.Unix(),
		}
	}
	c.mu.Unlock()

	c.notifyDownloadFinished()
}

func (c *ArtworkCache) Thumbnail(coverID string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.cache[coverID]
	if !ok {
		return nil, false
	}
	now := time.Now()
	item.lastAccessed = now.Unix()
	// accessing a thumbnail keeps it alive for another TTL window
	if exp := now.Add(item.ttl).Unix(); item.expiresAt < exp {
		item.expiresAt = exp
	}
	c.cache[coverID] = item
	return item.img, true
}

func (c *ArtworkCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]artworkItem)
}

func (c *ArtworkCache) OnDownloadFinished(cb func()) (cancel func()) {
	c.waiterMu.Lock()
	defer c.waiterMu.Unlock()
	if c.waiters == nil {
		c.waiters = make(map[int]func())
	}
	id := c.nextWaiter
	c.nextWaiter++
	c.waiters[id] = cb
	return func() {
		c.waiterMu.Lock()
		delete(c.waiters, id)
		c.waiterMu.Unlock()
	}
}

func (c *ArtworkCache) notifyDownloadFinished() {
	// snapshot so that waiters may cancel themselves while being invoked
	c.waiterMu.Lock()
	cbs := make([]func(), 0, len(c.waiters))
	for _, cb := range c.waiters {
		cbs = append(cbs, cb)
	}
	c.waiterMu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

// must be called with the write lock held
func (c *ArtworkCache) evictOne() {
	now := time.Now().Unix()
	var lruKey, lruExpiredKey string
	lruTime, lruExpiredTime := now, now
	for k, item := range c.cache {
		if item.expiresAt < now && item.lastAccessed < lruExpiredTime {
			lruExpiredTime = item.lastAccessed
			lruExpiredKey = k
		}
		if item.lastAccessed < lruTime {
			lruTime = item.lastAccessed
			lruKey = k
		}
	}
	if lruExpiredKey != "" {
		delete(c.cache, lruExpiredKey)
	} else if lruKey != "" {
		delete(c.cache, lruKey)
	}
}

// SweepExpired evicts expired items, least recently used first, until none
// remain expired or the cache is down to MinSize elements.
func (c *ArtworkCache) SweepExpired() {
	type expired struct {
		key          string
		lastAccessed int64
	}

	c.mu.RLock()
	count := len(c.cache)
	if count <= c.MinSize {
		c.mu.RUnlock()
		return
	}
	now := time.Now().Unix()
	var candidates []expired
	for k, item := range c.cache {
		if item.expiresAt < now {
			candidates = append(candidates, expired{key: k, lastAccessed: item.lastAccessed})
		}
	}
	c.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].lastAccessed < candidates[j].lastAccessed
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cand := range candidates {
		if len(c.cache) <= c.MinSize {
			return
		}
		// an expired item may have been re-put while the lock was released
		if item, ok := c.cache[cand.key]; ok && item.expiresAt < now {
			delete(c.cache, cand.key)
		}
	}
}

func (c *ArtworkCache) periodicallySweep(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
			c.SweepExpired()
		}
	}
}
