package monitor

import (
	"sync"

	"github.com/rs/zerolog"
)

// URLMutexManager tracks which storage keys have a check in flight.
type URLMutexManager struct {
	logger   zerolog.Logger
	mutexes  map[string]*sync.Mutex
	mapMutex sync.Mutex
}

// NewURLMutexManager creates a new URLMutexManager
func NewURLMutexManager(logger zerolog.Logger) *URLMutexManager {
	return &URLMutexManager{
		logger:  logger.With().Str("component", "URLMutexManager").Logger(),
		mutexes: make(map[string]*sync.Mutex),
	}
}

// TryLock claims key without blocking. It returns the release func and true on success,
// or false when another check holds key.
func (umm *URLMutexManager) TryLock(key string) (func(), bool) {
	umm.mapMutex.Lock()
	defer umm.mapMutex.Unlock()

	mutex, exists := umm.mutexes[key]
	if !exists {
		mutex = &sync.Mutex{}
		umm.mutexes[key] = mutex
	}
	if !mutex.TryLock() {
		return nil, false
	}
	return mutex.Unlock, true
}

// CleanupUnusedMutexes forgets idle keys that are no longer monitored.
func (umm *URLMutexManager) CleanupUnusedMutexes(activeKeys []string) {
	active := make(map[string]struct{}, len(activeKeys))
	for _, k := range activeKeys {
		active[k] = struct{}{}
	}

	umm.mapMutex.Lock()
	defer umm.mapMutex.Unlock()

	removed := 0
	for key, mutex := range umm.mutexes {
		if _, ok := active[key]; ok {
			continue
		}
		// A held mutex belongs to a check still running for a removed target.
		if !mutex.TryLock() {
			continue
		}
		mutex.Unlock()
		delete(umm.mutexes, key)
		removed++
	}

	if removed > 0 {
		umm.logger.Debug().
			Int("removed_mutexes", removed).
			Int("remaining_mutexes", len(umm.mutexes)).
			Msg("Cleaned up unused URL check mutexes")
	}
}

// GetMutexCount returns the current number of mutexes
func (umm *URLMutexManager) GetMutexCount() int {
	umm.mapMutex.Lock()
	defer umm.mapMutex.Unlock()
	return len(umm.mutexes)
}
