// Package engine is the single authority over session state. Every
// operation runs to completion on one goroutine in arrival order, applies
// its change through the policy and merge rules, and publishes the change
// to the other connections in the session.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcoot/cardboard/internal/dependencies/clock"
	"github.com/mcoot/cardboard/internal/metrics"
	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/protocol"
	"github.com/mcoot/cardboard/internal/services/policy"
	"github.com/mcoot/cardboard/internal/services/registry"
	"github.com/mcoot/cardboard/internal/services/turn"
	"github.com/mcoot/cardboard/internal/storage"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_publisher.go github.com/mcoot/cardboard/internal/services/engine Publisher

// ErrStopped is returned for operations submitted after Run has returned
var ErrStopped = errors.New("engine stopped")

// Publisher fans messages out to connections. Implementations must not block.
type Publisher interface {
	// Subscribe moves the connection into the session's audience
	Subscribe(conn protocol.ConnID, sessionID model.SessionID)
	// Unsubscribe removes the connection from whatever session it was in
	Unsubscribe(conn protocol.ConnID)
	// Publish sends msg to every connection in the session except exclude
	Publish(sessionID model.SessionID, exclude protocol.ConnID, msg protocol.OutMsg)
}

// Deps holds the collaborators of an Engine
type Deps struct {
	Registry  *registry.Controller
	Turns     *turn.Controller
	Policy    *policy.Service
	Archive   storage.CardArchive
	Publisher Publisher
	Clock     clock.Clock
	Recorder  metrics.Recorder
	Logger    *slog.Logger
}

// connState is what the engine knows about one connection
type connState struct {
	participantID model.ParticipantID
	sessionID     model.SessionID
}

type job struct {
	ctx  context.Context
	op   string
	fn   func(ctx context.Context) error
	done chan error
}

// Engine serializes all session mutations
type Engine struct {
	registry  *registry.Controller
	turns     *turn.Controller
	policy    *policy.Service
	archive   storage.CardArchive
	publisher Publisher
	clock     clock.Clock
	recorder  metrics.Recorder
	tracer    trace.Tracer
	logger    *slog.Logger

	jobs    chan job
	stopped chan struct{}

	// owned by the Run goroutine
	conns map[protocol.ConnID]*connState
}

// New creates an Engine. Call Run to start processing.
func New(deps Deps) *Engine {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Engine{
		registry:  deps.Registry,
		turns:     deps.Turns,
		policy:    deps.Policy,
		archive:   deps.Archive,
		publisher: deps.Publisher,
		clock:     deps.Clock,
		recorder:  recorder,
		tracer:    otel.Tracer("github.com/mcoot/cardboard/internal/services/engine"),
		logger:    deps.Logger.With(slog.String("component", "engine")),
		jobs:      make(chan job),
		stopped:   make(chan struct{}),
		conns:     make(map[protocol.ConnID]*connState),
	}
}

// Run processes operations until ctx is cancelled
func (e *Engine) Run(ctx context.Context) {
	defer close(e.stopped)

	e.logger.Info("engine started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped")
			return
		case j := <-e.jobs:
			start := time.Now()
			err := j.fn(j.ctx)
			e.recorder.ObserveOperation(j.op, time.Since(start), err)
			j.done <- err
		}
	}
}

// exec runs fn on the engine goroutine and waits for it to finish
func (e *Engine) exec(ctx context.Context, op string, conn protocol.ConnID, fn func(ctx context.Context) error) error {
	ctx, span := e.tracer.Start(ctx, "engine."+op,
		trace.WithAttributes(attribute.String("cardboard.conn_id", string(conn))),
	)
	defer span.End()

	j := job{ctx: ctx, op: op, fn: fn, done: make(chan error, 1)}

	select {
	case e.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrStopped
	}

	// A queued job always runs to completion and writes its results
	err := <-j.done
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// member resolves a connection to its participant and current session.
// Must be called on the engine goroutine.
func (e *Engine) member(ctx context.Context, conn protocol.ConnID) (*connState, *model.Session, error) {
	state, ok := e.conns[conn]
	if !ok || state.sessionID == "" {
		return nil, nil, model.ErrNotInSession
	}
	session, err := e.registry.GetSession(ctx, state.sessionID)
	if err != nil {
		return nil, nil, err
	}
	return state, session, nil
}

// reject records a mutation the policy refused
func (e *Engine) reject(op string, session *model.Session, participantID model.ParticipantID, err error) error {
	e.recorder.MutationRejected(op, rejectReason(err))
	e.sessionLogger(session.ID).Debug("mutation rejected",
		slog.String("op", op),
		slog.String("participant_id", string(participantID)),
		slog.Any("error", err),
	)
	return err
}

func (e *Engine) sessionLogger(id model.SessionID) *slog.Logger {
	return e.logger.With(slog.String("session_id", string(id)))
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, model.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, model.ErrNotHost):
		return "not_host"
	case errors.Is(err, model.ErrNotInSession):
		return "not_in_session"
	default:
		return "invalid"
	}
}

// IsUnauthorized reports whether err is a policy refusal that the client
// should only notice as nothing having happened
func IsUnauthorized(err error) bool {
	return errors.Is(err, model.ErrNotYourTurn) || errors.Is(err, model.ErrNotHost)
}
