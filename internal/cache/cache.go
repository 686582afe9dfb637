// Package cache maps the ordinal indices shown in a listing to the opaque
// task ids behind them, per conversation.
package cache

import (
	"errors"
	"sync"
)

// ErrOutOfRange reports an index with no cached task behind it. It is an
// expected user error (a stale or mistyped number), not a system fault.
var ErrOutOfRange = errors.New("index out of range")

// Index is the per-conversation listing cache. Listings replace a
// conversation's entry wholesale; entries are never partially updated, so a
// single lock is enough. State is process-local and lost on restart; a fresh
// listing regenerates it.
type Index struct {
	mu     sync.RWMutex
	byChat map[string][]string
}

// New creates an empty index cache.
func New() *Index {
	return &Index{byChat: make(map[string][]string)}
}

// Store replaces the ordered task-id list for a conversation.
func (x *Index) Store(chatID string, ids []string) {
	owned := make([]string, len(ids))
	copy(owned, ids)

	x.mu.Lock()
	defer x.mu.Unlock()
	x.byChat[chatID] = owned
}

// Resolve maps a 1-based display index to the task id it referred to in the
// conversation's last listing.
func (x *Index) Resolve(chatID string, n int) (string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	ids := x.byChat[chatID]
	if n < 1 || n > len(ids) {
		return "", ErrOutOfRange
	}
	return ids[n-1], nil
}

// Len returns the number of entries cached for a conversation.
func (x *Index) Len(chatID string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byChat[chatID])
}
