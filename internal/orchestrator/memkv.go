package orchestrator

import (
	"strings"
	"sync"

	"github.com/sadopc/pixelpomo/internal/store"
)

// MemoryKV is a map-backed KV for runs without a database.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (kv *MemoryKV) Get(key string) (string, bool, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}

// Clear removes every namespaced key.
func (kv *MemoryKV) Clear() (int64, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	var n int64
	for k := range kv.m {
		if strings.HasPrefix(k, store.Namespace) {
			delete(kv.m, k)
			n++
		}
	}
	return n, nil
}
