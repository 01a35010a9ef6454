// Package gateway translates task intents into remote calls and feeds the
// resulting transitions to a state.Container.
//
// Every intent emits exactly one RequestStarted, synchronously, before the
// intent method returns, and then exactly one terminal transition from its
// own goroutine once the remote call completes. Intents are independent:
// concurrent intents interleave in completion order, not start order.
package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"etarefas/internal/service"
	"etarefas/internal/state"
)

// Gateway issues intents against a Service and reports outcomes to a Container.
type Gateway struct {
	svc   service.Service
	store *state.Container
	log   zerolog.Logger
	newID func() state.IntentID
	wg    sync.WaitGroup
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger used for intent lifecycle messages.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// WithIntentIDs overrides intent ID generation (for testing).
func WithIntentIDs(next func() state.IntentID) Option {
	return func(g *Gateway) { g.newID = next }
}

// New creates a Gateway.
func New(svc service.Service, store *state.Container, opts ...Option) *Gateway {
	g := &Gateway{
		svc:   svc,
		store: store,
		log:   zerolog.Nop(),
		newID: newIntentID,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func newIntentID() state.IntentID {
	return state.IntentID(uuid.Must(uuid.NewV7()).String())
}

// Store returns the container the gateway reports to.
func (g *Gateway) Store() *state.Container {
	return g.store
}

// Service returns the remote store the gateway calls.
func (g *Gateway) Service() service.Service {
	return g.svc
}

// FetchAll reloads the whole collection from the remote store. On success the
// collection becomes exactly the server's, discarding any local state.
func (g *Gateway) FetchAll(ctx context.Context) state.IntentID {
	return g.start(ctx, "fetch", func(ctx context.Context, id state.IntentID) (state.Transition, error) {
		tasks, err := g.svc.ListTasks(ctx)
		if err != nil {
			return state.Transition{}, err
		}
		return state.Fetched(id, tasks), nil
	})
}

// Create creates a task from rec. rec is not validated here.
func (g *Gateway) Create(ctx context.Context, rec service.Record) state.IntentID {
	return g.start(ctx, "create", func(ctx context.Context, id state.IntentID) (state.Transition, error) {
		task, err := g.svc.CreateTask(ctx, rec)
		if err != nil {
			return state.Transition{}, err
		}
		return state.Created(id, task), nil
	})
}

// Update replaces the task with the given ID by rec.
func (g *Gateway) Update(ctx context.Context, taskID service.TaskID, rec service.Record) state.IntentID {
	return g.start(ctx, "update", func(ctx context.Context, id state.IntentID) (state.Transition, error) {
		task, err := g.svc.ReplaceTask(ctx, taskID, rec)
		if err != nil {
			return state.Transition{}, err
		}
		return state.Updated(id, task), nil
	})
}

// Delete deletes the task with the given ID.
func (g *Gateway) Delete(ctx context.Context, taskID service.TaskID) state.IntentID {
	return g.start(ctx, "delete", func(ctx context.Context, id state.IntentID) (state.Transition, error) {
		if err := g.svc.DeleteTask(ctx, taskID); err != nil {
			return state.Transition{}, err
		}
		return state.Deleted(id, taskID), nil
	})
}

// Wait blocks until every intent issued so far has emitted its terminal
// transition.
func (g *Gateway) Wait() {
	g.wg.Wait()
}

// Await blocks until the given intent is no longer pending, or ctx is done.
func (g *Gateway) Await(ctx context.Context, id state.IntentID) error {
	for {
		s, changed := g.store.Watch()
		if !s.Pending(id) {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type remoteCall func(ctx context.Context, id state.IntentID) (state.Transition, error)

func (g *Gateway) start(ctx context.Context, op string, call remoteCall) state.IntentID {
	id := g.newID()
	log := g.log.With().Str("intent", string(id)).Str("op", op).Logger()

	g.wg.Add(1)
	g.store.Emit(state.Started(id))
	log.Debug().Msg("intent started")

	go func() {
		defer g.wg.Done()

		t, err := invoke(ctx, id, call)
		if err != nil {
			serr := service.AsError(err)
			log.Warn().Err(serr).Str("kind", service.KindName(serr)).Msg("intent failed")
			g.store.Emit(state.Failed(id, serr))
			return
		}
		log.Debug().Str("transition", string(t.Kind)).Msg("intent succeeded")
		g.store.Emit(t)
	}()

	return id
}

// invoke runs call, turning a panic into a transport error so that the
// intent still gets its terminal transition.
func invoke(ctx context.Context, id state.IntentID, call remoteCall) (t state.Transition, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = service.Transportf(nil, "remote call panicked: %v", r)
		}
	}()
	t, err = call(ctx, id)
	if err == nil && !state.IsTerminal(t.Kind) {
		err = fmt.Errorf("remote call returned non-terminal transition %q", t.Kind)
	}
	return t, err
}
