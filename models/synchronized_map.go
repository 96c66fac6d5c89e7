package models

import (
	"sort"
	"sync"
)

// SynchronizedMap is a string map that can be shared across go
// routines. The deposit worker uses one to track the requests it
// is working on, keyed by request id, with the time it started.
type SynchronizedMap struct {
	data  map[string]string
	mutex *sync.RWMutex
}

// Creates a new empty SynchronizedMap
func NewSynchronizedMap() *SynchronizedMap {
	return &SynchronizedMap{
		data:  make(map[string]string),
		mutex: &sync.RWMutex{},
	}
}

// Returns true if the key exists in the map.
func (syncMap *SynchronizedMap) HasKey(key string) bool {
	syncMap.mutex.RLock()
	defer syncMap.mutex.RUnlock()
	_, hasKey := syncMap.data[key]
	return hasKey
}

// Adds a key/value pair to the map.
func (syncMap *SynchronizedMap) Add(key, value string) {
	syncMap.mutex.Lock()
	syncMap.data[key] = value
	syncMap.mutex.Unlock()
}

// AddIfAbsent adds key only if it is not already in the map. It
// returns the value now stored under key, and true if that value
// was added by this call.
func (syncMap *SynchronizedMap) AddIfAbsent(key, value string) (string, bool) {
	syncMap.mutex.Lock()
	defer syncMap.mutex.Unlock()
	if existing, hasKey := syncMap.data[key]; hasKey {
		return existing, false
	}
	syncMap.data[key] = value
	return value, true
}

// Returns the value of key from the map.
func (syncMap *SynchronizedMap) Get(key string) string {
	syncMap.mutex.RLock()
	defer syncMap.mutex.RUnlock()
	return syncMap.data[key]
}

// Deletes the specified key from the map.
func (syncMap *SynchronizedMap) Delete(key string) {
	syncMap.mutex.Lock()
	delete(syncMap.data, key)
	syncMap.mutex.Unlock()
}

func (syncMap *SynchronizedMap) Len() int {
	syncMap.mutex.RLock()
	defer syncMap.mutex.RUnlock()
	return len(syncMap.data)
}

// Returns the keys of the map, sorted.
func (syncMap *SynchronizedMap) Keys() []string {
	syncMap.mutex.RLock()
	keys := make([]string, 0, len(syncMap.data))
	for key := range syncMap.data {
		keys = append(keys, key)
	}
	syncMap.mutex.RUnlock()
	sort.Strings(keys)
	return keys
}
