package arbitrage

import (
	"sort"
	"strings"
	"sync"
)

// Default market shapes.
const (
	TwoWay   = 2
	ThreeWay = 3
)

// Shapes holds the expected outcome count per sport. Sports without an entry
// fall back to three outcomes for soccer head-to-head markets and two for
// everything else.
type Shapes struct {
	outcomes map[string]int
	mu       sync.RWMutex
}

// NewShapes returns an empty registry. Call Register to add sports.
func NewShapes() *Shapes {
	return &Shapes{outcomes: make(map[string]int)}
}

// Register sets the outcome count for a sport. Counts below 2 clear the entry.
func (s *Shapes) Register(sportKey string, outcomes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if outcomes < 2 {
		delete(s.outcomes, sportKey)
		return
	}
	s.outcomes[sportKey] = outcomes
}

// Outcomes returns the expected outcome count for a sport's market. It
// satisfies ShapeFunc.
func (s *Shapes) Outcomes(sportKey, marketKey string) int {
	// Spreads and totals are two-sided regardless of sport.
	if marketKey != "" && marketKey != "h2h" {
		return TwoWay
	}
	s.mu.RLock()
	n, ok := s.outcomes[sportKey]
	s.mu.RUnlock()
	if ok {
		return n
	}
	if strings.HasPrefix(sportKey, "soccer_") {
		return ThreeWay
	}
	return TwoWay
}

// List returns all registered sport keys, sorted.
func (s *Shapes) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.outcomes))
	for k := range s.outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
