// Package cache persists raw provider payloads between runs.
//
// A Store maps a logical key such as "all_groups_Live.json" to a JSON snapshot
// scoped to one provider. Stores never fail loudly: I/O problems surface as a
// miss on Load and as false on Save, and are logged.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
)

// Store is a named JSON snapshot store.
type Store interface {
	// Load returns the snapshot for key, or false when it is absent, empty,
	// unparsable or stale.
	Load(ctx context.Context, key string) (json.RawMessage, bool)
	// Save replaces the snapshot for key and reports whether it was written.
	Save(ctx context.Context, key string, data json.RawMessage) bool
}

// GroupsKey returns the cache key for the category list of a stream class.
func GroupsKey(class string) string {
	return "all_groups_" + class + ".json"
}

// StreamsKey returns the cache key for the stream list of a stream class.
func StreamsKey(class string) string {
	return "all_stream_" + class + ".json"
}

// usable reports whether data is a JSON document with content.
// Zero bytes, null, "", [] and {} are all treated as empty.
func usable(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return false
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return false
	}

	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// keyedMutex hands out one mutex per name.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(name string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[name]
	if !ok {
		l = &sync.Mutex{}
		k.locks[name] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
