package controller

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Factory builds the controller for a user on first access.
type Factory func(ctx context.Context, userID uuid.UUID) (*Controller, error)

// Registry keeps one live controller per user.
type Registry struct {
	factory Factory

	mu          sync.RWMutex
	controllers map[uuid.UUID]*Controller
	group       singleflight.Group
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:     factory,
		controllers: make(map[uuid.UUID]*Controller),
	}
}

// Get returns the user's controller, building it once even when several
// requests for a new user arrive together.
func (r *Registry) Get(ctx context.Context, userID uuid.UUID) (*Controller, error) {
	r.mu.RLock()
	c, ok := r.controllers[userID]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	v, err, _ := r.group.Do(userID.String(), func() (interface{}, error) {
		r.mu.RLock()
		existing, ok := r.controllers[userID]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}

		built, err := r.factory(ctx, userID)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.controllers[userID] = built
		r.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Controller), nil
}

// Len reports how many users have a live controller.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.controllers)
}
