package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

var (
	// ErrNotFound is returned when no readings are available for a city.
	ErrNotFound = errors.New("no aod readings for city")
)

// readingHistory holds a time-ordered list of readings for one city.
type readingHistory struct {
	Readings []aod.Reading
}

// MemoryStore is a concurrency-safe in-memory history of AOD readings.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized city name, value: history
	data map[string]*readingHistory

	// retention configuration
	maxHistory int           // max number of readings per city
	maxAge     time.Duration // optional max age for readings
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*readingHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// cityKey normalizes a city name for indexing.
func cityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Save appends a new reading for its city and enforces retention.
func (s *MemoryStore) Save(r aod.Reading) {
	key := cityKey(r.City)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &readingHistory{}
		s.data[key] = history
	}

	history.Readings = append(history.Readings, r)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Readings) > s.maxHistory {
		over := len(history.Readings) - s.maxHistory
		history.Readings = history.Readings[over:]
	}

	// Enforce retention by age, using the reading's observation date.
	if s.maxAge > 0 {
		cutoff := time.Now().UTC().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Readings); i++ {
			ts, err := time.Parse("2006-01-02", history.Readings[i].Date)
			if err != nil || !ts.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(history.Readings) {
			history.Readings = history.Readings[i:]
		}
	}
}

// Latest returns the most recent reading for a city.
func (s *MemoryStore) Latest(city string) (aod.Reading, error) {
	key := cityKey(city)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Readings) == 0 {
		return aod.Reading{}, ErrNotFound
	}
	return history.Readings[len(history.Readings)-1], nil
}

// Range returns all readings for a city whose observation date falls between
// from and to (inclusive).
func (s *MemoryStore) Range(city string, from, to time.Time) ([]aod.Reading, error) {
	key := cityKey(city)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Readings) == 0 {
		return nil, ErrNotFound
	}

	var result []aod.Reading
	for _, r := range history.Readings {
		ts, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		if !ts.Before(from) && !ts.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
