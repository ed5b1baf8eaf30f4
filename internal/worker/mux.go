// Package worker registers background task handlers for the asynq server.
package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

// Mux routes task types to their handlers. It wraps the asynq ServeMux so
// handler registration stays decoupled from server startup.
type Mux struct{ mux *asynq.ServeMux }

func NewMux() *Mux { return &Mux{mux: asynq.NewServeMux()} }

// HandleFunc binds a task type to its handler.
func (m *Mux) HandleFunc(t string, h func(ctx context.Context, task *asynq.Task) error) {
	m.mux.HandleFunc(t, h)
}

// Mux exposes the underlying ServeMux for the asynq server to consume.
func (m *Mux) Mux() *asynq.ServeMux { return m.mux }
