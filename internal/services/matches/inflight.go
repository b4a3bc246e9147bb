package matches

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InFlight guards a match while a decision on it is being written. Acquire
// returns ok=false when another decision already holds the match.
type InFlight interface {
	Acquire(ctx context.Context, matchID uuid.UUID) (release func(), ok bool, err error)
}

// LocalInFlight keeps the guard in process memory.
type LocalInFlight struct {
	mu   sync.Mutex
	busy map[uuid.UUID]struct{}
}

func NewLocalInFlight() *LocalInFlight {
	return &LocalInFlight{busy: make(map[uuid.UUID]struct{})}
}

func (l *LocalInFlight) Acquire(_ context.Context, matchID uuid.UUID) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.busy[matchID]; taken {
		return nil, false, nil
	}
	l.busy[matchID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.busy, matchID)
			l.mu.Unlock()
		})
	}, true, nil
}

// Busy reports whether a decision on the match is currently in flight.
func (l *LocalInFlight) Busy(matchID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, taken := l.busy[matchID]
	return taken
}
