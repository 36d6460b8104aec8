package worker

import (
	"errors"
	"fmt"
)

type EventHandler func(data []byte) error

// Router fans an event out to every handler registered for it. Events
// without handlers are skipped.
type Router struct {
	handlers map[string][]EventHandler
}

func NewRouter(handlers map[string][]EventHandler) *Router {
	return &Router{
		handlers: handlers,
	}
}

func (r *Router) Handle(event string, data []byte) error {
	var errs []error
	for _, handler := range r.handlers[event] {
		if err := handler(data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", event, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Router) Handles(event string) bool {
	return len(r.handlers[event]) > 0
}
